// Package server serves care form pages over HTTP: server-rendered HTML under
// /pages, a JSON API under /api and live refresh over websockets.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	careforms "github.com/goliatone/go-careforms"
	"github.com/goliatone/go-careforms/pkg/choices"
	"github.com/goliatone/go-careforms/pkg/render"
	"github.com/goliatone/go-careforms/pkg/renderers/tui"
	"github.com/goliatone/go-careforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-careforms/pkg/session"
)

type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBasePath mounts every route under prefix, e.g. "/admin".
func WithBasePath(prefix string) Option {
	return func(s *Server) {
		s.base = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

func WithRenderer(r *vanilla.Renderer) Option {
	return func(s *Server) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithAuth puts pages and the API behind a login.
func WithAuth(manager *session.Manager, auth *session.Authenticator, secureCookie bool) Option {
	return func(s *Server) {
		s.manager = manager
		s.auth = auth
		s.secureCookie = secureCookie
	}
}

// WithTheme resolves the renderer theme through selector. The "variant"
// query parameter picks a variant per request.
func WithTheme(selector theme.ThemeSelector, name, variant string) Option {
	return func(s *Server) {
		s.themes = selector
		s.themeName = name
		s.themeVariant = variant
	}
}

// WithChoiceLimits bounds option searches.
func WithChoiceLimits(defaultLimit, maxLimit int) Option {
	return func(s *Server) {
		s.choices = choices.NewOptions(choices.WithLimits(defaultLimit, maxLimit))
	}
}

// WithHub shares a live-refresh hub, letting callers publish changes made
// outside the server.
func WithHub(h *Hub) Option {
	return func(s *Server) {
		if h != nil {
			s.hub = h
		}
	}
}

type Server struct {
	app       *careforms.App
	renderer  *vanilla.Renderer
	renderers *render.Registry
	hub      *Hub
	logger   *zap.Logger
	base     string

	manager      *session.Manager
	auth         *session.Authenticator
	gate         *session.Gate
	secureCookie bool

	themes       theme.ThemeSelector
	themeName    string
	themeVariant string

	choices choices.Options
}

func New(app *careforms.App, opts ...Option) (*Server, error) {
	s := &Server{app: app, logger: zap.NewNop(), choices: choices.NewOptions()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.renderer == nil {
		r, err := vanilla.New()
		if err != nil {
			return nil, fmt.Errorf("server: renderer: %w", err)
		}
		s.renderer = r
	}
	text, err := tui.New(tui.WithOutput(io.Discard))
	if err != nil {
		return nil, fmt.Errorf("server: renderer: %w", err)
	}
	if s.renderers, err = render.NewRegistry(s.renderer, text); err != nil {
		return nil, err
	}
	if s.hub == nil {
		s.hub = NewHub(s.logger)
	}
	if s.manager != nil {
		s.gate = session.NewGate(s.manager, s.path("/login"),
			session.WithSecureCookie(s.secureCookie),
			session.WithGateLogger(s.logger),
		)
	}
	app.OnChange(s.hub.Publish)
	return s, nil
}

func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) path(p string) string {
	if s.base == "" {
		return p
	}
	return s.base + p
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mount := func(r chi.Router) {
		r.Handle("/assets/*", http.StripPrefix(s.path("/assets/"), http.FileServerFS(vanilla.AssetsFS())))
		if s.gate != nil {
			r.Get("/login", s.handleLoginPage)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
		}

		r.Group(func(r chi.Router) {
			if s.gate != nil {
				r.Use(s.gate.Middleware)
			}
			r.Get("/", s.handleIndex)
			r.Get("/live", s.hub.ServeHTTP)
			r.Route("/pages", func(r chi.Router) {
				r.Get("/", s.handleIndex)
				r.Get("/{page}", s.handleList)
				r.Post("/{page}", s.handleCreate)
				r.Get("/{page}/new", s.handleNew)
				r.Get("/{page}/{id}", s.handleDetail)
				r.Post("/{page}/{id}", s.handleUpdate)
				r.Get("/{page}/{id}/edit", s.handleEdit)
				r.Get("/{page}/{id}/delete", s.handleConfirmDelete)
				r.Post("/{page}/{id}/delete", s.handleDelete)
			})
			r.Route("/api", s.apiRoutes)
		})
	}
	if s.base == "" {
		mount(r)
	} else {
		r.Route(s.base, mount)
	}
	return r
}

// requestLogger logs method, path, status and duration of each request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// renderOptions assembles the page chrome for a request.
func (s *Server) renderOptions(r *http.Request, active string) render.RenderOptions {
	opts := render.RenderOptions{
		Pages:    s.app.Nav(active),
		BasePath: s.base,
	}
	if claims, ok := session.ClaimsFromContext(r.Context()); ok {
		opts.User = claims.Name
		if opts.User == "" {
			opts.User = claims.Username()
		}
	}
	if s.themes != nil {
		variant := s.themeVariant
		if v := r.URL.Query().Get("variant"); v != "" {
			variant = v
		}
		sel, err := s.themes.Select(s.themeName, variant)
		if err != nil && variant != s.themeVariant {
			sel, err = s.themes.Select(s.themeName, s.themeVariant)
		}
		if err != nil {
			s.logger.Warn("theme selection failed", zap.String("theme", s.themeName), zap.Error(err))
		} else {
			opts.Theme = rendererConfig(sel)
		}
	}
	return opts
}

// Run serves on addr until ctx is cancelled, then shuts down within grace.
func (s *Server) Run(ctx context.Context, addr string, grace time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr), zap.String("base", s.base))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
