// Package screens hosts the Mini App screens inside a Telegram chat: the
// loading screen runs registration, the subscription screen shows the plan
// carousel and the working fields screen is the landing page for members.
package screens

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/planpicker/app/carousel"
	"github.com/m3rciful/planpicker/app/registration"
	"github.com/m3rciful/planpicker/core/logger"
	"github.com/m3rciful/planpicker/core/metrics"
	tg "github.com/m3rciful/planpicker/core/telegram"
	"github.com/m3rciful/planpicker/core/telegram/callbacks"
	"github.com/m3rciful/planpicker/core/telegram/helpers"
	"github.com/m3rciful/planpicker/core/telegram/session"

	tele "gopkg.in/telebot.v4"
)

// ButtonVelocity is the swipe velocity reported for the ◀ and ▶ buttons.
const ButtonVelocity = 0.5

var errNoMessenger = errors.New("screens: no messenger")

const (
	hintText    = "Use the buttons above, or send /start to open the app again."
	expiredText = "Session expired. Send /start."
)

// Messenger is the part of *tele.Bot the screens use.
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Enqueuer runs outbound calls off the update goroutine.
type Enqueuer interface {
	Enqueue(ctx context.Context, action string, run func() error) error
}

// Options wires an App.
type Options struct {
	Messenger Messenger
	// Queue is optional; without it edits run inline.
	Queue     Enqueuer
	Registrar registration.Registrar
	Metrics   *metrics.Metrics

	BounceReset time.Duration
	Scheduler   carousel.Scheduler
	// ConfirmAvailable disables the confirm row when false.
	ConfirmAvailable bool
	Now              func() time.Time
}

// App keeps one Session per user.
type App struct {
	opts     Options
	sessions *session.Store[*Session]
	respond  func(c tele.Context, text string) error
}

// New builds an App. Messenger and Queue may be set later with SetTransport
// once the bot exists.
func New(opts Options) *App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &App{
		opts:     opts,
		sessions: session.NewStore[*Session](),
		respond: func(c tele.Context, text string) error {
			if text == "" {
				return c.Respond()
			}
			return c.Respond(&tele.CallbackResponse{Text: text})
		},
	}
}

// SetTransport attaches the bot and its outbound queue.
func (a *App) SetTransport(m Messenger, q Enqueuer) {
	a.opts.Messenger = m
	a.opts.Queue = q
}

// Session returns the open session of userID.
func (a *App) Session(userID int64) (*Session, bool) {
	return a.sessions.Get(userID)
}

// Close tears down every session.
func (a *App) Close() {
	a.sessions.CloseAll()
}

// Register adds the commands and buttons to reg.
func (a *App) Register(reg *tg.Registry) error {
	err := errors.Join(
		reg.RegisterCommand("/start", tg.Command{
			Handler:     a.handleStart,
			Description: "Open the app",
			Aliases:     []string{"/open"},
		}),
		reg.RegisterCommand("/refresh", tg.Command{
			Handler:     a.handleRefresh,
			Description: "Reload your account",
		}),
		reg.RegisterCallback(keyPrev, a.handleSwipe(carousel.Right)),
		reg.RegisterCallback(keyNext, a.handleSwipe(carousel.Left)),
		reg.RegisterCallback(keyChoose, a.handleChoose),
		reg.RegisterCallback(keyConfirm, a.handleConfirm),
		reg.RegisterCallback(keyClear, a.handleClear),
	)
	reg.SetTextFallback(a.handleText)
	return err
}

func sessionKey(c tele.Context) int64 {
	userID, chatID := helpers.IDs(c)
	if userID != 0 {
		return userID
	}
	return chatID
}

// handleStart opens the loading screen and starts registration.
func (a *App) handleStart(c tele.Context) error {
	if a.opts.Messenger == nil {
		return errNoMessenger
	}
	ctx := helpers.BuildContext(c)
	key := sessionKey(c)
	data := InitDataFrom(c, a.opts.Now())

	f := loadingFrame()
	msg, err := a.opts.Messenger.Send(c.Recipient(), f.Text, &tele.SendOptions{ParseMode: tele.ModeMarkdownV2})
	if err != nil {
		return err
	}

	s := newSession(a, key, c.Recipient(), msg, data)
	s.lastFrame = f.Key()
	a.sessions.Put(key, s)
	logger.LogEvent(ctx, logger.TG, slog.LevelInfo, "session.open",
		slog.Int("sessions", a.sessions.Len()),
		slog.Bool("has_user", data.HasUser()),
	)
	s.start()
	return nil
}

// handleRefresh pushes a fresh identity snapshot, which reruns registration.
func (a *App) handleRefresh(c tele.Context) error {
	s, ok := a.sessions.Get(sessionKey(c))
	if !ok {
		return a.handleStart(c)
	}
	s.Identity().Set(InitDataFrom(c, a.opts.Now()))
	return nil
}

func (a *App) handleText(c tele.Context) error {
	if _, ok := a.sessions.Get(sessionKey(c)); !ok {
		return a.handleStart(c)
	}
	if a.opts.Messenger == nil {
		return nil
	}
	_, err := a.opts.Messenger.Send(c.Recipient(), hintText)
	return err
}

func (a *App) carouselOf(c tele.Context) (*carousel.Controller, *Session) {
	s, ok := a.sessions.Get(sessionKey(c))
	if !ok {
		return nil, nil
	}
	return s.Carousel(), s
}

func (a *App) handleSwipe(dir carousel.Direction) tele.HandlerFunc {
	return func(c tele.Context) error {
		car, _ := a.carouselOf(c)
		if car == nil {
			return a.respond(c, expiredText)
		}
		car.Swiping()
		if car.Swiped(carousel.Swipe{Direction: dir, Velocity: ButtonVelocity}) == carousel.Bounced {
			if dir == carousel.Right {
				return a.respond(c, "This is the first plan.")
			}
			return a.respond(c, "This is the last plan.")
		}
		return a.respond(c, "")
	}
}

func (a *App) handleChoose(c tele.Context) error {
	car, _ := a.carouselOf(c)
	if car == nil {
		return a.respond(c, expiredText)
	}
	if err := car.Select(callbacks.Payload(c)); err != nil {
		_ = a.respond(c, "This plan is no longer offered.")
		return err
	}
	return a.respond(c, "")
}

func (a *App) handleConfirm(c tele.Context) error {
	_, s := a.carouselOf(c)
	if s == nil {
		return a.respond(c, expiredText)
	}
	if !s.button.Click() {
		return a.respond(c, "Choose a plan first.")
	}
	return a.respond(c, "")
}

func (a *App) handleClear(c tele.Context) error {
	car, _ := a.carouselOf(c)
	if car == nil {
		return a.respond(c, expiredText)
	}
	car.ClearSelection()
	return a.respond(c, "")
}

// enqueue runs an outbound call through the queue, or inline without one.
func (a *App) enqueue(ctx context.Context, action string, run func() error) {
	if a.opts.Messenger == nil {
		return
	}
	if a.opts.Queue == nil {
		if err := run(); err != nil {
			logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "send.failed",
				slog.String("action", action),
				logger.Err(err),
			)
		}
		return
	}
	if err := a.opts.Queue.Enqueue(ctx, action, run); err != nil {
		logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "send.enqueue_failed",
			slog.String("action", action),
			logger.Err(err),
		)
	}
}
