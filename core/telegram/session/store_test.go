package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type screen struct{ closed int }

func (s *screen) Close() { s.closed++ }

func TestStoreClosesReplacedValues(t *testing.T) {
	st := NewStore[*screen]()
	first, second := &screen{}, &screen{}

	st.Put(1, first)
	got, ok := st.Get(1)
	assert.True(t, ok)
	assert.Same(t, first, got)

	st.Put(1, second)
	assert.Equal(t, 1, first.closed)
	assert.Zero(t, second.closed)

	st.Delete(1)
	assert.Equal(t, 1, second.closed)
	_, ok = st.Get(1)
	assert.False(t, ok)

	st.Delete(1)
	assert.Equal(t, 1, second.closed)
}

func TestStoreCloseAll(t *testing.T) {
	st := NewStore[*screen]()
	a, b := &screen{}, &screen{}
	st.Put(1, a)
	st.Put(2, b)
	assert.Equal(t, 2, st.Len())

	st.CloseAll()
	assert.Zero(t, st.Len())
	assert.Equal(t, 1, a.closed)
	assert.Equal(t, 1, b.closed)
}

func TestStorePlainValues(t *testing.T) {
	st := NewStore[string]()
	st.Put(7, "subscription")
	st.Put(7, "working-fields")
	v, _ := st.Get(7)
	assert.Equal(t, "working-fields", v)
}
