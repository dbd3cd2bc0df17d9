// Package bootstrap assembles planpicker from its configuration: the core
// infrastructure, the registration client, the screens and the HTTP server.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	appconfig "github.com/m3rciful/planpicker/app/config"
	"github.com/m3rciful/planpicker/app/registration"
	"github.com/m3rciful/planpicker/app/screens"
	"github.com/m3rciful/planpicker/app/webserver"
	corebootstrap "github.com/m3rciful/planpicker/core/bootstrap"
	"github.com/m3rciful/planpicker/core/logger"
	tg "github.com/m3rciful/planpicker/core/telegram"
	"github.com/m3rciful/planpicker/core/telegram/router"
	"github.com/m3rciful/planpicker/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Options allow tests to replace the core bootstrap.
type Options struct {
	Core corebootstrap.Options
}

// App is the assembled application.
type App struct {
	cfg      *appconfig.Config
	core     *corebootstrap.Result
	registry *tg.Registry
	screens  *screens.App
	server   *webserver.Server
}

// New wires every component from cfg.
func New(cfg *appconfig.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}
	coreOpts := opts.Core
	coreOpts.Config = cfg.CoreConfig()
	core, err := corebootstrap.Run(coreOpts)
	if err != nil {
		return nil, err
	}

	client := registration.NewClient(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.BackendTimeout()})
	scr := screens.New(screens.Options{
		Registrar:        client,
		Metrics:          core.Metrics,
		BounceReset:      cfg.BounceReset(),
		ConfirmAvailable: true,
	})

	reg := tg.NewRegistry()
	if err := scr.Register(reg); err != nil {
		return nil, fmt.Errorf("bootstrap: register screens: %w", err)
	}

	var upstream *url.URL
	if cfg.Server.UpstreamURL != "" {
		upstream, err = url.Parse(cfg.Server.UpstreamURL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: upstream url: %w", err)
		}
	}
	srv := webserver.New(webserver.Options{
		Listen:         cfg.Server.Listen,
		Upstream:       upstream,
		BotToken:       cfg.Telegram.Token,
		InitDataMaxAge: cfg.InitDataMaxAge(),
		Metrics:        core.Metrics,
	})

	return &App{cfg: cfg, core: core, registry: reg, screens: scr, server: srv}, nil
}

// Screens returns the Telegram host.
func (a *App) Screens() *screens.App { return a.screens }

// Server returns the HTTP server.
func (a *App) Server() *webserver.Server { return a.server }

// Registry returns the command and callback registry.
func (a *App) Registry() *tg.Registry { return a.registry }

// TelegramRunOptions builds the bot run options.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	return tg.RunOptions{
		Config:   core,
		Registry: a.registry,
		// One worker keeps a user's screen edits in order.
		QueueOptions: sender.Options{Workers: 1},
		Middlewares:  tg.DefaultMiddlewares(core, a.core.Metrics, onLimited),
		Routes: func(rt tg.Runtime) []tg.Route {
			a.screens.SetTransport(rt.Bot, rt.Queue)
			routes := router.CommandRoutes(rt.Registry)
			return append(routes, router.CallbackRoute(rt.Registry), router.TextRoute(rt.Registry))
		},
		OnStart: func(ctx context.Context, _ tg.Runtime) error {
			return a.server.Start(ctx)
		},
		OnStop: func(ctx context.Context, _ tg.Runtime) error {
			a.screens.Close()
			err := a.server.Shutdown(ctx)
			logger.LogEvent(ctx, logger.L, slog.LevelInfo, "app.stopped",
				slog.String("status", logger.Status(err)),
			)
			return err
		},
	}, nil
}

func onLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Slow down a little."})
	}
	return nil
}
