package middleware

import (
	"github.com/m3rciful/planpicker/core/metrics"

	tele "gopkg.in/telebot.v4"
)

const (
	messagesKey = "messages"
	keyboardKey = "kb"
)

// counting wraps tele.Context to count replies and keyboard use per update.
type counting struct{ tele.Context }

func (m counting) inc(opts []any) {
	n, _ := m.Get(messagesKey).(int)
	m.Set(messagesKey, n+1)
	if hasKeyboard(opts) {
		m.Set(keyboardKey, true)
	}
}

func hasKeyboard(opts []any) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (m counting) Send(what any, opts ...any) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.inc(opts)
	}
	return err
}

func (m counting) Reply(what any, opts ...any) error {
	err := m.Context.Reply(what, opts...)
	if err == nil {
		m.inc(opts)
	}
	return err
}

func (m counting) Edit(what any, opts ...any) error {
	err := m.Context.Edit(what, opts...)
	if err == nil {
		m.inc(opts)
	}
	return err
}

func (m counting) EditOrSend(what any, opts ...any) error {
	err := m.Context.EditOrSend(what, opts...)
	if err == nil {
		m.inc(opts)
	}
	return err
}

// Metrics counts the update by kind and wraps the context so handlers'
// replies can be summarised by the router.
func Metrics(m *metrics.Metrics) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			m.IncUpdate(UpdateKind(c.Update()))
			c.Set(messagesKey, 0)
			c.Set(keyboardKey, false)
			return next(counting{Context: c})
		}
	}
}

// Counters returns the replies sent for the update and whether any carried a keyboard.
func Counters(c tele.Context) (messages int, keyboard bool) {
	messages, _ = c.Get(messagesKey).(int)
	keyboard, _ = c.Get(keyboardKey).(bool)
	return messages, keyboard
}
