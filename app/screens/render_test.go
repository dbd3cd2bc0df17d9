package screens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/planpicker/app/carousel"
	"github.com/m3rciful/planpicker/app/plans"

	tele "gopkg.in/telebot.v4"
)

func TestMainButtonLifecycle(t *testing.T) {
	b := NewMainButton(true)
	assert.Nil(t, b.Row())
	assert.False(t, b.Click())

	clicks := 0
	b.Mount()
	b.Configure(carousel.Params{Text: "Subscribe to Base ($5)", Visible: true, Enabled: true})
	off := b.OnClick(func() { clicks++ })

	row := b.Row()
	require.Len(t, row, 2)
	assert.Equal(t, keyConfirm, row[0].Unique)
	assert.Equal(t, keyClear, row[1].Unique)
	assert.True(t, b.Click())
	assert.Equal(t, 1, clicks)

	off()
	off()
	assert.Zero(t, b.Handlers())
	assert.False(t, b.Click())

	b.Unmount()
	assert.False(t, b.IsMounted())
	assert.Nil(t, b.Row())
}

func TestMainButtonDisabled(t *testing.T) {
	b := NewMainButton(false)
	assert.False(t, b.MountAvailable())
	assert.False(t, b.ConfigureAvailable())

	b.Mount()
	b.Configure(carousel.Params{Text: "Subscribe", Visible: true})
	row := b.Row()
	require.Len(t, row, 2)
	assert.Equal(t, "… Subscribe", row[0].Text)
}

func TestSubscriptionFrame(t *testing.T) {
	catalog := plans.Catalog()
	v := carousel.View{Index: 2, Plan: catalog[2], Count: 3, Selected: "pro"}

	f := subscriptionFrame(v, nil)
	assert.Contains(t, f.Text, "*Pro*")
	assert.Contains(t, f.Text, `\$10`)
	assert.Contains(t, f.Text, "✓ Selected")
	assert.Contains(t, f.Text, "_3/3_")
	require.NotNil(t, f.Markup)
	require.Len(t, f.Markup.InlineKeyboard, 1)
	assert.Equal(t, "pro", f.Markup.InlineKeyboard[0][1].Data)

	other := subscriptionFrame(carousel.View{Index: 0, Plan: catalog[0], Count: 3}, nil)
	assert.NotEqual(t, f.Key(), other.Key())
	assert.NotContains(t, other.Text, "Selected")
}

func TestFrames(t *testing.T) {
	assert.Contains(t, errorFrame("Oops.").Text, `Oops\.`)
	assert.Contains(t, workingFieldsFrame("base").Text, "*Base*")
	assert.Contains(t, workingFieldsFrame("legacy").Text, "legacy")
	assert.Equal(t, loadingFrame().Key(), loadingFrame().Key())
}

func TestInitDataFrom(t *testing.T) {
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	now := time.Unix(1700000500, 0)

	c := b.NewContext(tele.Update{Message: &tele.Message{
		Sender:   &tele.User{ID: 7, FirstName: "Ada", LastName: "L", LanguageCode: "en", IsPremium: true},
		Chat:     &tele.Chat{ID: 7, Type: tele.ChatPrivate},
		Unixtime: 1700000000,
	}})
	d := InitDataFrom(c, now)
	require.True(t, d.HasUser())
	assert.Equal(t, int64(7), d.User.ID)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), d.AuthDate)
	assert.Equal(t, "private", d.ChatType)
	assert.Equal(t, "7", d.ChatInstance)
	require.NotNil(t, d.User.IsPremium)
	assert.True(t, *d.User.IsPremium)
	require.NotNil(t, d.User.AllowsWriteToPM)

	group := b.NewContext(tele.Update{Message: &tele.Message{
		Sender: &tele.User{ID: 7},
		Chat:   &tele.Chat{ID: -100, Type: tele.ChatGroup},
	}})
	d = InitDataFrom(group, now)
	assert.Nil(t, d.User.AllowsWriteToPM)
	assert.Equal(t, now.UTC(), d.AuthDate)

	anonymous := b.NewContext(tele.Update{Message: &tele.Message{
		Chat: &tele.Chat{ID: -200, Type: tele.ChatChannel},
	}})
	assert.False(t, InitDataFrom(anonymous, now).HasUser())
}
