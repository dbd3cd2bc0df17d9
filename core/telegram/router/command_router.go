package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/planpicker/core/logger"
	tg "github.com/m3rciful/planpicker/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// CommandRoutes binds each registered command, aliases included.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for name, cmd := range cmds {
		h := cmd.Handler
		handlerID := handlerName("", name)
		wrapped := func(c tele.Context) error {
			return handleWithSummary(c, handlerID, time.Now(), func() error { return h(c) })
		}
		routes = append(routes, tg.Route{Endpoint: name, Handler: wrapped})
		for _, alias := range cmd.Aliases {
			routes = append(routes, tg.Route{Endpoint: "/" + trimSlash(alias), Handler: wrapped})
		}
	}
	logger.LogEvent(context.Background(), logger.TWire, slog.LevelInfo, "wire.complete",
		slog.Int("commands", len(cmds)),
		slog.Int("callbacks", len(reg.CallbackKeys())),
	)
	return routes
}

func trimSlash(s string) string {
	for len(s) > 0 && s[0] == '/' {
		s = s[1:]
	}
	return s
}
