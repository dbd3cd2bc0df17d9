package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/planpicker/core/telegram"
	"github.com/m3rciful/planpicker/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute dispatches every inline button press through the registry.
// Handlers answer the callback themselves.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}
		key := callbacks.Key(c)
		name := handlerName("callback.", key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		h, ok := reg.Callback(key)
		if !ok {
			h = reg.CallbackNotFound()
			extras = append(extras, slog.String("reason", "not_found"))
		}
		if h == nil {
			_ = c.Respond()
			logSummary(c, name, start, "skip", nil, extras...)
			return nil
		}
		return handleWithSummary(c, name, start, func() error { return h(c) }, extras...)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
