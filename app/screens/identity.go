package screens

import (
	"strconv"
	"time"

	"github.com/m3rciful/planpicker/app/identity"

	tele "gopkg.in/telebot.v4"
)

// InitDataFrom builds the identity snapshot a Mini App would receive from
// the update that opened the screen. Updates without a sender yield a
// snapshot without a user.
func InitDataFrom(c tele.Context, now time.Time) *identity.InitData {
	d := &identity.InitData{AuthDate: now.UTC()}
	if m := c.Message(); m != nil && m.Unixtime > 0 {
		d.AuthDate = m.Time().UTC()
	}
	chat := c.Chat()
	if chat != nil {
		d.ChatType = string(chat.Type)
		d.ChatInstance = strconv.FormatInt(chat.ID, 10)
	}
	u := c.Sender()
	if u == nil || u.ID == 0 {
		return d
	}
	premium := u.IsPremium
	d.User = &identity.User{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Username:     u.Username,
		LanguageCode: u.LanguageCode,
		IsPremium:    &premium,
	}
	if chat != nil && chat.Type == tele.ChatPrivate {
		allows := true
		d.User.AllowsWriteToPM = &allows
	}
	return d
}
