package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInline(t *testing.T) {
	m := Inline(
		Row(InlineBtn{Text: "◀", Unique: "prev"}, InlineBtn{Text: "Choose", Unique: "choose", Data: "base"}),
		Row(),
		Row(InlineBtn{Text: "Subscribe to Base ($5)", Unique: "confirm"}),
	)
	require.Len(t, m.InlineKeyboard, 2)
	require.Len(t, m.InlineKeyboard[0], 2)
	assert.Equal(t, "choose", m.InlineKeyboard[0][1].Unique)
	assert.Equal(t, "base", m.InlineKeyboard[0][1].Data)
	assert.Equal(t, "Subscribe to Base ($5)", m.InlineKeyboard[1][0].Text)
}
