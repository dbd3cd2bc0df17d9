package router

import (
	"time"

	tg "github.com/m3rciful/planpicker/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// TextRoute handles free text: a command typed with arguments or an alias is
// resolved through the registry, anything else goes to the text fallback.
func TextRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if key, cmd, ok := reg.LookupCommand(firstWord(c.Text())); ok {
			return handleWithSummary(c, handlerName("", key), start, func() error { return cmd.Handler(c) })
		}
		if fb := reg.TextFallback(); fb != nil {
			return handleWithSummary(c, "fallback", start, func() error { return fb(c) })
		}
		logSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}
	return tg.Route{Endpoint: tele.OnText, Handler: handler}
}

func firstWord(s string) string {
	for i, r := range s {
		if r == ' ' || r == '\n' || r == '@' {
			return s[:i]
		}
	}
	return s
}
