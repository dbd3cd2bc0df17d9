package screens

import (
	"fmt"
	"strings"

	"github.com/m3rciful/planpicker/app/carousel"
	"github.com/m3rciful/planpicker/app/plans"
	"github.com/m3rciful/planpicker/core/telegram/format"
	"github.com/m3rciful/planpicker/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Screen names, also used as the log "screen" field.
const (
	ScreenLoading       = "loading"
	ScreenError         = "error"
	ScreenSubscription  = "subscription"
	ScreenWorkingFields = "working-fields"
)

const (
	keyPrev   = "prev"
	keyNext   = "next"
	keyChoose = "choose"
)

// Frame is one rendered screen.
type Frame struct {
	Text   string
	Markup *tele.ReplyMarkup
}

// Key identifies the frame content so identical edits can be skipped.
func (f Frame) Key() string {
	var b strings.Builder
	b.WriteString(f.Text)
	if f.Markup != nil {
		for _, row := range f.Markup.InlineKeyboard {
			b.WriteString("\n|")
			for _, btn := range row {
				b.WriteString(btn.Text + "/" + btn.Unique + "/" + btn.Data + "|")
			}
		}
	}
	return b.String()
}

func loadingFrame() Frame {
	return Frame{Text: format.EscapeMarkdownV2("⏳ Loading...")}
}

func errorFrame(message string) Frame {
	return Frame{Text: format.Bold("Error") + "\n" + format.EscapeMarkdownV2(message)}
}

func workingFieldsFrame(planID string) Frame {
	name := planID
	if p, err := plans.Lookup(plans.Catalog(), planID); err == nil {
		name = p.Name
	}
	return Frame{Text: format.Bold("Working fields") + "\n" +
		format.EscapeMarkdownV2("Your plan: ") + format.Bold(name)}
}

func subscriptionFrame(v carousel.View, confirmRow []keyboard.InlineBtn) Frame {
	p := v.Plan
	var b strings.Builder
	b.WriteString(format.Bold(p.Name))
	b.WriteString(format.EscapeMarkdownV2(" · " + p.PriceLabel()))
	b.WriteString("\n")
	b.WriteString(format.EscapeMarkdownV2(p.Description))
	if v.Selected == p.ID {
		b.WriteString("\n" + format.EscapeMarkdownV2("✓ Selected"))
	}
	b.WriteString("\n\n")
	b.WriteString(format.Italic(fmt.Sprintf("%d/%d", v.Index+1, v.Count)))

	nav := keyboard.Row(
		keyboard.InlineBtn{Text: "◀", Unique: keyPrev},
		keyboard.InlineBtn{Text: "Choose", Unique: keyChoose, Data: p.ID},
		keyboard.InlineBtn{Text: "▶", Unique: keyNext},
	)
	return Frame{Text: b.String(), Markup: keyboard.Inline(nav, confirmRow)}
}
