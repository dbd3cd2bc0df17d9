// Package registration runs the loading screen flow: send the host identity to
// the backend once and route to the next screen based on the answer.
package registration

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/m3rciful/planpicker/app/identity"
	"github.com/m3rciful/planpicker/app/navigation"
	"github.com/m3rciful/planpicker/app/plans"
	"github.com/m3rciful/planpicker/core/logger"
	"github.com/m3rciful/planpicker/core/metrics"
)

// StateReporter renders the loading screen.
type StateReporter interface {
	SetLoading(loading bool)
	ShowError(message string)
}

// Options wires a Controller.
type Options struct {
	Registrar Registrar
	Navigator navigation.Navigator
	Reporter  StateReporter
	Metrics   *metrics.Metrics
}

// Controller drives one loading screen. It is safe for concurrent use, but
// only one request is ever in flight.
type Controller struct {
	registrar Registrar
	navigator navigation.Navigator
	reporter  StateReporter
	metrics   *metrics.Metrics
	validate  *validator.Validate

	mu          sync.Mutex
	inFlight    bool
	defaultPlan string

	runs sync.WaitGroup
}

// New builds a controller. Navigator and Reporter may be nil.
func New(opts Options) *Controller {
	return &Controller{
		registrar:   opts.Registrar,
		navigator:   opts.Navigator,
		reporter:    opts.Reporter,
		metrics:     opts.Metrics,
		validate:    validator.New(),
		defaultPlan: plans.Default,
	}
}

// DefaultPlan is the plan recorded for an unregistered user.
func (c *Controller) DefaultPlan() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.defaultPlan
}

// Run executes the flow for one identity snapshot. On success the navigator
// receives the target; on failure the reporter shows the error message.
func (c *Controller) Run(ctx context.Context, d *identity.InitData) (navigation.Target, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		logger.LogEvent(ctx, logger.REG, slog.LevelDebug, "run.skip",
			slog.String("status", "skip"),
			slog.String("reason", "in_flight"),
		)
		return "", ErrRunInProgress
	}
	c.inFlight = true
	c.mu.Unlock()

	runID := uuid.NewString()
	start := time.Now()
	c.setLoading(true)

	target, err := c.decide(ctx, d, runID)

	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
	c.setLoading(false)
	c.metrics.IncRegistration(outcome(err))

	if err != nil {
		attrs := []slog.Attr{
			slog.String("status", "fail"),
			slog.String("run_id", runID),
			slog.Duration("duration", time.Since(start)),
			logger.Err(err),
		}
		var regErr *Error
		if errors.As(err, &regErr) {
			attrs = append(attrs, slog.String("err_code", regErr.Code()))
			if regErr.Status != 0 {
				attrs = append(attrs, slog.Int("http_code", regErr.Status))
			}
		}
		logger.LogEvent(ctx, logger.REG, slog.LevelWarn, "run.failed", attrs...)
		if c.reporter != nil {
			c.reporter.ShowError(Message(err))
		}
		return "", err
	}

	logger.LogEvent(ctx, logger.REG, slog.LevelInfo, "run.done",
		slog.String("status", "ok"),
		slog.String("run_id", runID),
		slog.String("target", target.String()),
		slog.Duration("duration", time.Since(start)),
	)
	if c.navigator != nil {
		c.navigator.Navigate(target)
	}
	return target, nil
}

func (c *Controller) decide(ctx context.Context, d *identity.InitData, runID string) (navigation.Target, error) {
	if !d.HasUser() {
		return "", newError(ErrMissingIdentity, 0, nil)
	}
	req := NewRequest(d)
	if err := c.validate.Struct(req); err != nil {
		return "", newError(ErrMissingIdentity, 0, err)
	}
	if c.registrar == nil {
		return "", newError(ErrBackendUnreachable, 0, errors.New("no registrar configured"))
	}

	logger.LogEvent(ctx, logger.REG, slog.LevelDebug, "request.send",
		slog.String("run_id", runID),
		slog.Int64("user_id", req.UserID),
	)
	res, err := c.registrar.Register(ctx, req)
	if err != nil {
		return "", err
	}

	plan := res.UserSubscriptionPlan
	if plan == "" {
		plan = plans.Default
	}
	if res.UserRegistered {
		return navigation.WorkingFields(plan), nil
	}

	c.mu.Lock()
	c.defaultPlan = plan
	c.mu.Unlock()
	logger.LogEvent(ctx, logger.REG, slog.LevelDebug, "default_plan.recorded",
		slog.String("run_id", runID),
		slog.String("plan", plan),
	)
	return navigation.Subscription(), nil
}

// Watch runs the flow with the signal's current snapshot and again on every
// new snapshot. Runs happen on their own goroutines; a snapshot arriving while
// a request is pending is dropped. The returned func stops watching.
func (c *Controller) Watch(ctx context.Context, s *identity.Signal) func() {
	launch := func(d *identity.InitData) {
		c.runs.Add(1)
		go func() {
			defer c.runs.Done()
			_, _ = c.Run(ctx, d)
		}()
	}
	stop := s.Subscribe(launch)
	launch(s.Get())
	return stop
}

// Wait blocks until runs started by Watch have finished.
func (c *Controller) Wait() {
	c.runs.Wait()
}

func (c *Controller) setLoading(v bool) {
	if c.reporter != nil {
		c.reporter.SetLoading(v)
	}
}
