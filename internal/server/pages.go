package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	careforms "github.com/goliatone/go-careforms"
	"github.com/goliatone/go-careforms/pkg/form"
	"github.com/goliatone/go-careforms/pkg/render"
	"github.com/goliatone/go-careforms/pkg/table"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	pages := s.app.Pages()
	if len(pages) == 0 {
		http.Error(w, "no pages configured", http.StatusNotFound)
		return
	}
	http.Redirect(w, r, s.pageURL(pages[0].Name), http.StatusSeeOther)
}

func (s *Server) pageURL(page string) string {
	return s.path("/pages/" + url.PathEscape(page))
}

// open loads the page session named by the route, answering the request
// itself on failure.
func (s *Server) open(w http.ResponseWriter, r *http.Request, opts ...careforms.SessionOption) (*careforms.Session, bool) {
	sess, err := s.app.Open(r.Context(), chi.URLParam(r, "page"), opts...)
	if err != nil {
		s.htmlError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) htmlError(w http.ResponseWriter, err error) {
	status, _ := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("page request failed", zap.Error(err))
		http.Error(w, http.StatusText(status), status)
		return
	}
	http.Error(w, err.Error(), status)
}

// renderScreen writes the session screen plus any flash carried over from
// a redirect.
func (s *Server) renderScreen(w http.ResponseWriter, r *http.Request, sess *careforms.Session, status int, mutate func(*render.Screen)) {
	screen := sess.Screen()
	screen.Notices = append(s.takeFlash(w, r), screen.Notices...)
	if mutate != nil {
		mutate(&screen)
	}
	rd := s.negotiate(r)
	out, err := rd.Render(r.Context(), screen, s.renderOptions(r, sess.Page.Name))
	if err != nil {
		s.htmlError(w, err)
		return
	}
	w.Header().Set("Content-Type", rd.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

// negotiate picks the renderer for the first media type in Accept, falling
// back to HTML.
func (s *Server) negotiate(r *http.Request) render.Renderer {
	accept, _, _ := strings.Cut(r.Header.Get("Accept"), ",")
	if rd, ok := s.renderers.ForMediaType(accept); ok {
		return rd
	}
	return s.renderer
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	if err := parseListQuery(r).apply(sess.Table); err != nil {
		s.htmlError(w, err)
		return
	}
	s.renderScreen(w, r, sess, http.StatusOK, nil)
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	if _, err := sess.Table.Add(); err != nil {
		s.htmlError(w, err)
		return
	}
	s.renderScreen(w, r, sess, http.StatusOK, nil)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	if _, err := sess.Table.View(chi.URLParam(r, "id")); err != nil {
		s.htmlError(w, err)
		return
	}
	s.renderScreen(w, r, sess, http.StatusOK, nil)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	if _, err := sess.Table.Edit(chi.URLParam(r, "id")); err != nil {
		s.htmlError(w, err)
		return
	}
	s.renderScreen(w, r, sess, http.StatusOK, nil)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	f, err := sess.Table.Add()
	if err != nil {
		s.htmlError(w, err)
		return
	}
	s.submit(w, r, sess, f)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	f, err := sess.Table.Edit(chi.URLParam(r, "id"))
	if err != nil {
		s.htmlError(w, err)
		return
	}
	s.submit(w, r, sess, f)
}

// submit applies the posted controls and saves. Invalid input re-renders
// the form with errors; otherwise the browser is sent back to the list.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, sess *careforms.Session, f *form.Form) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	for _, ctrl := range f.Controls() {
		if err := f.SetInput(ctrl.Key, r.PostForm.Get(ctrl.Key)); err != nil {
			s.htmlError(w, err)
			return
		}
	}
	if !f.Submit() {
		if err := f.HiddenErrors(); err != nil {
			s.htmlError(w, err)
			return
		}
		s.renderScreen(w, r, sess, http.StatusUnprocessableEntity, nil)
		return
	}
	s.setFlash(w, sess.Flash.Drain())
	http.Redirect(w, r, s.pageURL(sess.Page.Name), http.StatusSeeOther)
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var asked string
	confirmer := table.ConfirmFunc(func(_ context.Context, message string) (bool, error) {
		asked = message
		return false, nil
	})
	sess, ok := s.open(w, r, careforms.WithConfirmer(confirmer))
	if !ok {
		return
	}
	if _, err := sess.Table.Delete(r.Context(), id); err != nil {
		s.htmlError(w, err)
		return
	}
	s.renderScreen(w, r, sess, http.StatusOK, func(screen *render.Screen) {
		screen.Confirm = &render.Confirmation{RecordID: id, Message: asked}
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	page := chi.URLParam(r, "page")
	if r.PostForm.Get("confirm") != "yes" {
		http.Redirect(w, r, s.pageURL(page), http.StatusSeeOther)
		return
	}
	sess, ok := s.open(w, r, careforms.WithConfirmer(table.Answer(true)))
	if !ok {
		return
	}
	if _, err := sess.Table.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.htmlError(w, err)
		return
	}
	s.setFlash(w, sess.Flash.Drain())
	http.Redirect(w, r, s.pageURL(page), http.StatusSeeOther)
}
