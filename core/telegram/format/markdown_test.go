package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdownV2(t *testing.T) {
	assert.Equal(t, `Subscribe to Pro \($10\)`, EscapeMarkdownV2("Subscribe to Pro ($10)"))
	assert.Equal(t, `Basic features for free users\.`, EscapeMarkdownV2("Basic features for free users."))
	assert.Equal(t, `a\\b\_c`, EscapeMarkdownV2(`a\b_c`))
	assert.Equal(t, `*Pro*`, Bold("Pro"))
	assert.Equal(t, `_1/3 \- base_`, Italic("1/3 - base"))
}
