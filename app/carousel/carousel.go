// Package carousel holds the subscription screen state: the focused plan, the
// drag flag, the edge bounce offset and the confirm affordance wiring.
package carousel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/m3rciful/planpicker/app/plans"
	"github.com/m3rciful/planpicker/core/logger"
	"github.com/m3rciful/planpicker/core/metrics"
)

const (
	// InitialIndex focuses the middle plan on mount.
	InitialIndex = 1
	// DefaultResetDelay is how long a bounce offset is held before it snaps back.
	DefaultResetDelay = 100 * time.Millisecond
)

// ErrUnknownPlan is returned by Select for an id outside the catalog.
var ErrUnknownPlan = plans.ErrUnknownPlan

// Scheduler runs fn once after d and returns a func that cancels it.
type Scheduler func(d time.Duration, fn func()) (cancel func())

func afterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// View is a snapshot of the carousel for rendering.
type View struct {
	Index    int
	Plan     plans.Plan
	Count    int
	Selected string
	Dragging bool
	Offset   float64
	Bouncing bool
	Animated bool
}

// Translate is the horizontal transform of the card strip.
func (v View) Translate() string {
	return fmt.Sprintf("translateX(calc(-%d%% - %dpx + %spx))",
		v.Index*62, v.Index*16, strconv.FormatFloat(v.Offset, 'f', -1, 64))
}

// AtFirst reports whether the first plan is focused.
func (v View) AtFirst() bool { return v.Index == 0 }

// AtLast reports whether the last plan is focused.
func (v View) AtLast() bool { return v.Index == v.Count-1 }

// Options wires a Controller. Plans must not be empty.
type Options struct {
	Plans      []plans.Plan
	Confirm    ConfirmButton
	Scheduler  Scheduler
	ResetDelay time.Duration
	// OnCommit runs when the confirm affordance is clicked.
	OnCommit func(plans.Plan)
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Controller owns the state of one subscription screen.
type Controller struct {
	plans    []plans.Plan
	confirm  ConfirmButton
	schedule Scheduler
	delay    time.Duration
	onCommit func(plans.Plan)
	metrics  *metrics.Metrics
	log      *slog.Logger

	mu        sync.Mutex
	index     int
	selected  string
	dragging  bool
	offset    float64
	gen       uint64
	cancel    func()
	offClick  func()
	closed    bool
	listeners map[int]func(View)
	nextID    int
}

// New builds a controller focused on InitialIndex.
func New(opts Options) (*Controller, error) {
	if len(opts.Plans) == 0 {
		return nil, errors.New("carousel: empty plan list")
	}
	c := &Controller{
		plans:     append([]plans.Plan(nil), opts.Plans...),
		confirm:   opts.Confirm,
		schedule:  opts.Scheduler,
		delay:     opts.ResetDelay,
		onCommit:  opts.OnCommit,
		metrics:   opts.Metrics,
		log:       opts.Logger,
		index:     InitialIndex,
		listeners: make(map[int]func(View)),
	}
	if c.schedule == nil {
		c.schedule = afterFunc
	}
	if c.delay <= 0 {
		c.delay = DefaultResetDelay
	}
	if c.log == nil {
		c.log = logger.CAR
	}
	if c.index >= len(c.plans) {
		c.index = len(c.plans) - 1
	}
	return c, nil
}

// OnChange registers fn to receive a View after every state change.
func (c *Controller) OnChange(fn func(View)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// View returns the current snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	return View{
		Index:    c.index,
		Plan:     c.plans[c.index],
		Count:    len(c.plans),
		Selected: c.selected,
		Dragging: c.dragging,
		Offset:   c.offset,
		Bouncing: c.offset != 0,
		Animated: !c.dragging,
	}
}

// Swiping marks a gesture as in progress. The index never moves here.
func (c *Controller) Swiping() {
	c.mu.Lock()
	if c.closed || c.dragging {
		c.mu.Unlock()
		return
	}
	c.dragging = true
	v, fns := c.snapshotLocked()
	c.mu.Unlock()
	notify(fns, v)
}

// Swiped completes a gesture: Left advances, Right retreats, and a move past
// either end sets a bounce offset instead.
func (c *Controller) Swiped(s Swipe) Outcome {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Ignored
	}
	c.dragging = false
	out := Ignored
	last := len(c.plans) - 1
	switch s.Direction {
	case Left:
		if c.index < last {
			c.index++
			out = Moved
		} else {
			c.bounceLocked(-BounceMagnitude(s.Velocity))
			out = Bounced
		}
	case Right:
		if c.index > 0 {
			c.index--
			out = Moved
		} else {
			c.bounceLocked(BounceMagnitude(s.Velocity))
			out = Bounced
		}
	}
	v, fns := c.snapshotLocked()
	c.mu.Unlock()

	c.metrics.IncSwipe(s.Direction.String(), string(out))
	logger.LogEvent(context.Background(), c.log, slog.LevelDebug, "swipe",
		slog.String("direction", s.Direction.String()),
		slog.Float64("velocity", s.Velocity),
		slog.String("result", string(out)),
		slog.Int("index", v.Index),
		slog.Float64("offset", v.Offset),
	)
	notify(fns, v)
	return out
}

// bounceLocked replaces any pending reset with a fresh one.
func (c *Controller) bounceLocked(offset float64) {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	if offset == 0 {
		c.offset = 0
		return
	}
	c.offset = offset
	gen := c.gen
	c.cancel = c.schedule(c.delay, func() { c.resetOffset(gen) })
}

func (c *Controller) resetOffset(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		return
	}
	c.cancel = nil
	c.offset = 0
	v, fns := c.snapshotLocked()
	c.mu.Unlock()
	notify(fns, v)
}

// Select chooses a plan and arms the confirm affordance for it. Choosing the
// selected plan again does nothing.
func (c *Controller) Select(id string) error {
	plan, err := plans.Lookup(c.plans, id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed || c.selected == id {
		c.mu.Unlock()
		return nil
	}
	c.selected = id
	c.releaseLocked()
	c.armLocked(plan)
	v, fns := c.snapshotLocked()
	c.mu.Unlock()

	c.metrics.IncSelection(plan.ID)
	logger.LogEvent(context.Background(), c.log, slog.LevelInfo, "plan.chosen",
		slog.String("plan", plan.ID),
		slog.String("label", plan.SubscribeLabel()),
	)
	notify(fns, v)
	return nil
}

// ClearSelection drops the selected plan and unmounts the affordance.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	if c.closed || c.selected == "" {
		c.mu.Unlock()
		return
	}
	c.selected = ""
	c.releaseLocked()
	v, fns := c.snapshotLocked()
	c.mu.Unlock()
	notify(fns, v)
}

// Close tears the screen down: the reset timer is cancelled, the click
// handler removed and the affordance unmounted. Later events are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.offset = 0
	c.releaseLocked()
	c.listeners = map[int]func(View){}
}

func (c *Controller) armLocked(plan plans.Plan) {
	if c.confirm == nil {
		return
	}
	if c.confirm.MountAvailable() && !c.confirm.IsMounted() {
		c.confirm.Mount()
	}
	if c.confirm.ConfigureAvailable() {
		c.confirm.Configure(Params{Text: plan.SubscribeLabel(), Visible: true, Enabled: true})
	}
	c.offClick = c.confirm.OnClick(func() { c.commit(plan) })
}

func (c *Controller) releaseLocked() {
	if c.confirm == nil {
		return
	}
	if c.offClick != nil {
		c.offClick()
		c.offClick = nil
	}
	c.confirm.Unmount()
}

func (c *Controller) commit(plan plans.Plan) {
	c.metrics.IncCommit(plan.ID)
	logger.LogEvent(context.Background(), c.log, slog.LevelInfo, "plan.subscribed",
		slog.String("plan", plan.ID),
		slog.Float64("price", plan.Price),
	)
	if c.onCommit != nil {
		c.onCommit(plan)
	}
}

func (c *Controller) snapshotLocked() (View, []func(View)) {
	fns := make([]func(View), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	return c.viewLocked(), fns
}

func notify(fns []func(View), v View) {
	for _, fn := range fns {
		fn(v)
	}
}
