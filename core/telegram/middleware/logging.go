// Package middleware holds the global update middlewares.
package middleware

import (
	"log/slog"
	"time"

	"github.com/m3rciful/planpicker/core/logger"
	"github.com/m3rciful/planpicker/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/planpicker/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const startKey = "update_start"

// Logger builds the update logging context and writes one receipt line.
func Logger(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(startKey, time.Now())
		ctx := tghelpers.BuildContext(c)

		attrs := []slog.Attr{
			slog.String("status", "ok"),
			slog.String("kind", UpdateKind(c.Update())),
		}
		if chat := c.Chat(); chat != nil {
			attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
		}
		if u := c.Sender(); u != nil {
			if u.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
			}
			if u.LanguageCode != "" {
				attrs = append(attrs, slog.String("lang", u.LanguageCode))
			}
		}
		switch upd := c.Update(); {
		case upd.Callback != nil:
			key, payload := callbacks.Parse(upd.Callback)
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
			if payload != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
			}
		case upd.Message != nil:
			if t := c.Text(); t != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
			}
		}
		logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "update.received", attrs...)
		return next(c)
	}
}

// StartedAt returns when Logger saw the update, or the zero time.
func StartedAt(c tele.Context) time.Time {
	t, _ := c.Get(startKey).(time.Time)
	return t
}

// UpdateKind classifies an update for rate limiting and metrics.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}
