// Package server serves the browser front-end of the stack builder.
//
// Every browser gets its own session, identified by a cookie, holding an
// independent [stack.Store]. The page shows one button per action and the
// rendered column; after each mutation the page reloads the SVG and scrolls
// to the bottom so the newest layer is visible.
//
// # Routes
//
//	GET  /                  HTML page
//	GET  /state             JSON state of the caller's stack
//	GET  /stack.{format}    column render (svg, png, pdf, json); ?type=nodelink for the chain view
//	POST /actions/{action}  dispatch one action
//	POST /undo, /redo, /reset
//	GET  /healthz
//	GET  /metrics           Prometheus metrics, when enabled
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stackbuilder/internal/metrics"
	"github.com/matzehuels/stackbuilder/pkg/pipeline"
	"github.com/matzehuels/stackbuilder/pkg/session"
	"github.com/matzehuels/stackbuilder/pkg/stack"
)

// CookieName is the name of the session cookie.
const CookieName = "stackbuilder_session"

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRunner sets the render runner. The default runner does not cache.
func WithRunner(r *pipeline.Runner) Option {
	return func(s *Server) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithRenderOptions sets the style, width and margin used for renders.
// Formats and viz type are chosen per request.
func WithRenderOptions(o pipeline.Options) Option {
	return func(s *Server) { s.render = o }
}

// WithMetrics mounts the Prometheus endpoint at /metrics.
func WithMetrics() Option {
	return func(s *Server) { s.metrics = true }
}

// Server handles HTTP requests for all sessions.
type Server struct {
	sessions *session.Manager
	runner   *pipeline.Runner
	logger   *log.Logger
	render   pipeline.Options
	metrics  bool
}

// New creates a server backed by the given session registry.
func New(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions: sessions,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/state", s.handleState)
	r.Get("/stack.{format}", s.handleRender)
	r.Post("/actions/{action}", s.handleAction)
	r.Post("/undo", s.handleHistory(historyUndo))
	r.Post("/redo", s.handleHistory(historyRedo))
	r.Post("/reset", s.handleHistory(historyReset))

	if s.metrics {
		r.Handle("/metrics", metrics.Handler())
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. A background loop sweeps expired sessions meanwhile.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sessions.Run(sweepCtx, session.DefaultCleanupInterval, func(n int) {
		metrics.SessionsExpired.Add(float64(n))
		metrics.SessionsActive.Set(float64(s.sessions.Len()))
		if n > 0 {
			s.logger.Debug("expired sessions", "removed", n, "active", s.sessions.Len())
		}
	})

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// session returns the caller's session, creating one and setting the cookie
// when the request carries none or a stale one.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	var id string
	if c, err := r.Cookie(CookieName); err == nil {
		id = c.Value
	}

	sess, created, err := s.sessions.GetOrCreate(id)
	if err != nil {
		return nil, err
	}
	if created {
		metrics.SessionsCreated.Inc()
		metrics.SessionsActive.Set(float64(s.sessions.Len()))
		s.watch(sess)
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   int(s.sessions.TTL().Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess, nil
}

// watch logs every change of a new session's stack at debug level.
func (s *Server) watch(sess *session.Session) {
	short := sess.ID
	if len(short) > 8 {
		short = short[:8]
	}
	sess.Do(func(st *stack.Store) {
		st.Subscribe(func(c stack.Change) {
			s.logger.Debug("stack changed",
				"session", short,
				"cause", c.Cause,
				"layers", c.Current.Len())
		})
	})
}
