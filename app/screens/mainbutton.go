package screens

import (
	"sync"

	"github.com/m3rciful/planpicker/app/carousel"
	"github.com/m3rciful/planpicker/core/telegram/keyboard"
)

const (
	keyConfirm = "confirm"
	keyClear   = "clear"
)

// MainButton renders the confirm affordance as the bottom row of the plan
// keyboard. Chats without inline keyboards can disable it.
type MainButton struct {
	mu        sync.Mutex
	available bool
	mounted   bool
	params    carousel.Params
	handlers  map[int]func()
	next      int
}

// NewMainButton returns an unmounted button.
func NewMainButton(available bool) *MainButton {
	return &MainButton{available: available, handlers: make(map[int]func())}
}

func (b *MainButton) MountAvailable() bool { return b.available }

func (b *MainButton) ConfigureAvailable() bool { return b.available }

func (b *MainButton) Mount() {
	b.mu.Lock()
	b.mounted = true
	b.mu.Unlock()
}

func (b *MainButton) IsMounted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mounted
}

func (b *MainButton) Configure(p carousel.Params) {
	b.mu.Lock()
	b.params = p
	b.mu.Unlock()
}

func (b *MainButton) OnClick(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.handlers[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

func (b *MainButton) Unmount() {
	b.mu.Lock()
	b.mounted = false
	b.params = carousel.Params{}
	b.mu.Unlock()
}

// Click runs the registered handlers. It reports false when the button is
// not clickable.
func (b *MainButton) Click() bool {
	b.mu.Lock()
	if !b.mounted || !b.params.Enabled || len(b.handlers) == 0 {
		b.mu.Unlock()
		return false
	}
	fns := make([]func(), 0, len(b.handlers))
	for _, fn := range b.handlers {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return true
}

// Handlers returns how many click handlers are registered.
func (b *MainButton) Handlers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

// Row is the keyboard row for the current state, nil when hidden.
func (b *MainButton) Row() []keyboard.InlineBtn {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.mounted || !b.params.Visible || b.params.Text == "" {
		return nil
	}
	confirm := keyboard.InlineBtn{Text: b.params.Text, Unique: keyConfirm}
	if !b.params.Enabled {
		confirm.Text = "… " + confirm.Text
	}
	return keyboard.Row(confirm, keyboard.InlineBtn{Text: "✕", Unique: keyClear})
}
