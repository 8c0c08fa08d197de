package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-careforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-careforms/pkg/session"
)

const invalidLogin = "Invalid username or password"

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	view := vanilla.LoginView{Next: r.URL.Query().Get("next")}
	if r.URL.Query().Get("expired") != "" {
		view.Message = session.ExpiredMessage
	}
	s.renderLogin(w, r, view, http.StatusOK)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	username := r.PostForm.Get("username")
	next := r.PostForm.Get("next")

	user, err := s.auth.Authenticate(username, r.PostForm.Get("password"))
	if err != nil {
		if !errors.Is(err, session.ErrBadCredentials) {
			s.logger.Error("authenticate", zap.Error(err))
		}
		s.logger.Info("login rejected", zap.String("username", username))
		s.renderLogin(w, r, vanilla.LoginView{Message: invalidLogin, Username: username, Next: next}, http.StatusUnauthorized)
		return
	}

	token, expires, err := s.manager.Issue(user)
	if err != nil {
		s.logger.Error("issue token", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.gate.SetCookie(w, token, expires)
	s.logger.Info("login", zap.String("username", user.Username))
	http.Redirect(w, r, safeNext(next, s.path("/pages")), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.gate.ClearCookie(w)
	http.Redirect(w, r, s.path("/login"), http.StatusSeeOther)
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, view vanilla.LoginView, status int) {
	opts := s.renderOptions(r, "")
	opts.Pages = nil
	out, err := s.renderer.RenderLogin(r.Context(), view, opts)
	if err != nil {
		s.htmlError(w, err)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(out)
}
