package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	tele "gopkg.in/telebot.v4"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		cb      *tele.Callback
		key     string
		payload string
	}{
		{name: "nil", cb: nil},
		{name: "encoded", cb: &tele.Callback{Data: "\fchoose|pro"}, key: "choose", payload: "pro"},
		{name: "no payload", cb: &tele.Callback{Data: "\fnext"}, key: "next"},
		{name: "pipe in payload", cb: &tele.Callback{Data: "\fx|a|b"}, key: "x", payload: "a|b"},
		{name: "already split", cb: &tele.Callback{Unique: "confirm", Data: "base"}, key: "confirm", payload: "base"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, payload := Parse(tc.cb)
			assert.Equal(t, tc.key, key)
			assert.Equal(t, tc.payload, payload)
		})
	}
}
