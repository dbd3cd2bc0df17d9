package screens

import (
	"context"
	"log/slog"
	"sync"

	"github.com/m3rciful/planpicker/app/carousel"
	"github.com/m3rciful/planpicker/app/identity"
	"github.com/m3rciful/planpicker/app/navigation"
	"github.com/m3rciful/planpicker/app/plans"
	"github.com/m3rciful/planpicker/app/registration"
	"github.com/m3rciful/planpicker/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Session is one user's open Mini App: the screen message plus the
// controller of the screen currently shown.
type Session struct {
	app    *App
	userID int64
	chat   tele.Recipient
	ctx    context.Context
	cancel context.CancelFunc

	identity *identity.Signal
	reg      *registration.Controller
	button   *MainButton

	mu        sync.Mutex
	msg       tele.Editable
	screen    string
	errMsg    string
	plan      string
	carousel  *carousel.Controller
	stopWatch func()
	lastFrame string
	closed    bool
}

func newSession(app *App, userID int64, chat tele.Recipient, msg tele.Editable, data *identity.InitData) *Session {
	ctx := logger.WithUser(context.Background(), userID)
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		app:      app,
		userID:   userID,
		chat:     chat,
		ctx:      ctx,
		cancel:   cancel,
		identity: identity.NewSignal(data),
		button:   NewMainButton(app.opts.ConfirmAvailable),
		msg:      msg,
		screen:   ScreenLoading,
	}
	s.reg = registration.New(registration.Options{
		Registrar: app.opts.Registrar,
		Navigator: s,
		Reporter:  s,
		Metrics:   app.opts.Metrics,
	})
	return s
}

func (s *Session) start() {
	stop := s.reg.Watch(logger.WithScreen(s.ctx, ScreenLoading), s.identity)
	s.mu.Lock()
	s.stopWatch = stop
	s.mu.Unlock()
}

// Identity is the signal the registration flow watches.
func (s *Session) Identity() *identity.Signal { return s.identity }

// Screen returns the screen being shown.
func (s *Session) Screen() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// Carousel returns the plan carousel, nil outside the subscription screen.
func (s *Session) Carousel() *carousel.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carousel
}

// SetLoading shows the spinner while a registration request is pending.
func (s *Session) SetLoading(loading bool) {
	if !loading {
		return
	}
	s.mu.Lock()
	s.screen = ScreenLoading
	s.mu.Unlock()
	s.render()
}

// ShowError replaces the spinner with message.
func (s *Session) ShowError(message string) {
	s.mu.Lock()
	s.screen = ScreenError
	s.errMsg = message
	s.mu.Unlock()
	s.render()
}

// Navigate switches to the screen named by t.
func (s *Session) Navigate(t navigation.Target) {
	switch t.Path() {
	case navigation.SubscriptionPath:
		s.openSubscription()
	case navigation.WorkingFieldsPath:
		s.mu.Lock()
		s.screen = ScreenWorkingFields
		s.plan = t.Plan()
		old := s.carousel
		s.carousel = nil
		s.mu.Unlock()
		if old != nil {
			old.Close()
		}
	default:
		logger.LogEvent(s.ctx, logger.TG, slog.LevelWarn, "navigate.unknown",
			slog.String("target", t.String()),
		)
		return
	}
	logger.LogEvent(logger.WithScreen(s.ctx, s.Screen()), logger.TG, slog.LevelInfo, "navigate",
		slog.String("target", t.String()),
	)
	s.render()
}

func (s *Session) openSubscription() {
	c, err := carousel.New(carousel.Options{
		Plans:      plans.Catalog(),
		Confirm:    s.button,
		ResetDelay: s.app.opts.BounceReset,
		Scheduler:  s.app.opts.Scheduler,
		OnCommit:   s.commit,
		Metrics:    s.app.opts.Metrics,
		Logger:     logger.Component("carousel").With("user_id", s.userID),
	})
	if err != nil {
		logger.LogEvent(s.ctx, logger.CAR, slog.LevelError, "carousel.init", logger.Err(err))
		return
	}
	c.OnChange(func(carousel.View) { s.render() })

	s.mu.Lock()
	old := s.carousel
	s.carousel = c
	s.screen = ScreenSubscription
	closed := s.closed
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}
	if closed {
		c.Close()
	}
}

func (s *Session) commit(p plans.Plan) {
	text := "You chose the " + p.Name + " plan (" + p.PriceLabel() + "). Payments are not enabled yet."
	s.app.enqueue(s.ctx, "send.commit", func() error {
		_, err := s.app.opts.Messenger.Send(s.chat, text)
		return err
	})
}

// Frame renders the current screen.
func (s *Session) Frame() Frame {
	s.mu.Lock()
	screen, errMsg, plan, c := s.screen, s.errMsg, s.plan, s.carousel
	s.mu.Unlock()

	switch screen {
	case ScreenError:
		return errorFrame(errMsg)
	case ScreenWorkingFields:
		return workingFieldsFrame(plan)
	case ScreenSubscription:
		if c != nil {
			return subscriptionFrame(c.View(), s.button.Row())
		}
	}
	return loadingFrame()
}

// render edits the screen message unless the frame is unchanged.
func (s *Session) render() {
	f := s.Frame()
	key := f.Key()
	s.mu.Lock()
	if s.closed || s.msg == nil || key == s.lastFrame {
		s.mu.Unlock()
		return
	}
	s.lastFrame = key
	msg := s.msg
	s.mu.Unlock()

	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdownV2, ReplyMarkup: f.Markup}
	s.app.enqueue(s.ctx, "edit.screen", func() error {
		_, err := s.app.opts.Messenger.Edit(msg, f.Text, opts)
		return err
	})
}

// Close stops the registration watcher and tears down the carousel.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	stop, c := s.stopWatch, s.carousel
	s.mu.Unlock()

	s.cancel()
	if stop != nil {
		stop()
	}
	if c != nil {
		c.Close()
	}
}

// Wait blocks until pending registration runs have finished.
func (s *Session) Wait() { s.reg.Wait() }
