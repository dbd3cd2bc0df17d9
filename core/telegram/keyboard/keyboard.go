// Package keyboard builds inline keyboards.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes one callback button.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// Row groups buttons on one line.
func Row(buttons ...InlineBtn) []InlineBtn {
	return buttons
}

// Inline builds an inline keyboard from rows; empty rows are dropped.
func Inline(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			btn := markup.Data(b.Text, b.Unique, b.Data)
			r = append(r, *btn.Inline())
		}
		inline = append(inline, r)
	}
	markup.InlineKeyboard = inline
	return markup
}
