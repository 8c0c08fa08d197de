package session

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	CookieName     = "access_token"
	ExpiredMessage = "Your session has expired. Please log in again."
)

type contextKey struct{}

// WithClaims stores claims on ctx.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ClaimsFromContext returns the claims set by the gate.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(contextKey{}).(Claims)
	return c, ok
}

// Gate admits requests carrying a valid token. Nothing behind it is mounted
// for a request until Allow succeeds.
type Gate struct {
	manager   *Manager
	loginPath string
	secure    bool
	logger    *zap.Logger
}

type GateOption func(*Gate)

func WithSecureCookie(secure bool) GateOption {
	return func(g *Gate) { g.secure = secure }
}

func WithGateLogger(logger *zap.Logger) GateOption {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func NewGate(manager *Manager, loginPath string, opts ...GateOption) *Gate {
	g := &Gate{manager: manager, loginPath: loginPath, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Allow reports whether r carries a valid session. The Authorization bearer
// header wins over the cookie.
func (g *Gate) Allow(r *http.Request) (Claims, error) {
	return g.manager.Verify(requestToken(r))
}

func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
		return h[7:]
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Middleware redirects browsers to the login page and answers 401 to API
// clients when the session is missing or expired.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := g.Allow(r)
		if err == nil {
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
			return
		}
		if !errors.Is(err, ErrNoToken) {
			g.logger.Debug("session rejected", zap.String("path", r.URL.Path), zap.Error(err))
		}

		if r.Header.Get("Authorization") != "" || r.Header.Get("Accept") == "application/json" {
			msg := "unauthorized"
			if errors.Is(err, ErrExpired) {
				msg = ExpiredMessage
			}
			http.Error(w, msg, http.StatusUnauthorized)
			return
		}

		q := url.Values{}
		if r.Method == http.MethodGet {
			q.Set("next", r.URL.RequestURI())
		}
		if errors.Is(err, ErrExpired) {
			g.ClearCookie(w)
			q.Set("expired", "1")
		}
		target := g.loginPath
		if len(q) > 0 {
			target += "?" + q.Encode()
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}

// SetCookie stores token for the whole site until expires.
func (g *Gate) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (g *Gate) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
