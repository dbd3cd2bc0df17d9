// Package webserver serves the Mini App origin: the /api proxy to the user
// backend, init data verification, health and metrics.
package webserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/m3rciful/planpicker/core/logger"
	"github.com/m3rciful/planpicker/core/metrics"
)

// Options wires a Server.
type Options struct {
	Listen string
	// Upstream receives /api/* with the prefix stripped. Nil disables the proxy.
	Upstream *url.URL
	BotToken string
	// InitDataMaxAge rejects older init data when positive.
	InitDataMaxAge time.Duration
	Metrics        *metrics.Metrics
	Now            func() time.Time
}

// Server is the HTTP side of the app.
type Server struct {
	opts     Options
	router   chi.Router
	validate *validator.Validate

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
}

// New builds the router. Nothing listens until Start.
func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{opts: opts, validate: validator.New()}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger,
		middleware.Recoverer,
	)

	r.Get("/healthz", s.handleHealth)
	r.Post("/initdata/verify", s.handleVerify)
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics.Handler())
	}
	if s.opts.Upstream != nil {
		r.Handle("/api/*", newProxy(s.opts.Upstream, s.opts.Metrics))
	}
	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Addr is the bound address after Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start listens on Options.Listen and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return fmt.Errorf("webserver: listen %s: %w", s.opts.Listen, err)
	}
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.mu.Lock()
	s.srv = srv
	s.listener = ln
	s.mu.Unlock()

	logger.LogEvent(ctx, logger.HTTP, slog.LevelInfo, "server.start",
		slog.String("addr", ln.Addr().String()),
		slog.Bool("proxy", s.opts.Upstream != nil),
	)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogEvent(ctx, logger.HTTP, slog.LevelError, "server.failed", logger.Err(err))
		}
	}()
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	err := srv.Shutdown(ctx)
	logger.LogEvent(ctx, logger.HTTP, slog.LevelInfo, "server.stop",
		slog.String("status", logger.Status(err)),
	)
	return err
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := logger.WithRID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(ctx))

		level := slog.LevelDebug
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.LogEvent(ctx, logger.HTTP, level, "http.request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("http_code", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
	})
}
