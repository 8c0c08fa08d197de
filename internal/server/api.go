package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	careforms "github.com/goliatone/go-careforms"
	"github.com/goliatone/go-careforms/pkg/choices"
	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/form"
	"github.com/goliatone/go-careforms/pkg/render"
	"github.com/goliatone/go-careforms/pkg/table"
)

func (s *Server) apiRoutes(r chi.Router) {
	r.Get("/pages", s.apiPages)
	r.Get("/pages/{page}/records", s.apiList)
	r.Post("/pages/{page}/records", s.apiCreate)
	r.Get("/pages/{page}/records/{id}", s.apiGet)
	r.Put("/pages/{page}/records/{id}", s.apiUpdate)
	r.Delete("/pages/{page}/records/{id}", s.apiDelete)
	r.Get("/pages/{page}/options/{field}", s.apiOptions)
}

type pageInfo struct {
	Name    string          `json:"name"`
	Title   string          `json:"title"`
	IDField string          `json:"id_field"`
	Actions render.Actions  `json:"actions"`
	Columns []render.Column `json:"columns"`
}

// validationError is the 422 body listing messages per field.
type validationError struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields"`
}

func (s *Server) apiPages(w http.ResponseWriter, _ *http.Request) {
	pages := s.app.Pages()
	out := make([]pageInfo, 0, len(pages))
	for _, p := range pages {
		t := table.New(p.Fields, table.WithActions(p.Actions))
		out = append(out, pageInfo{
			Name:    p.Name,
			Title:   p.Title,
			IDField: p.IDField,
			Actions: p.Actions,
			Columns: t.Columns(),
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) apiOpen(w http.ResponseWriter, r *http.Request, opts ...careforms.SessionOption) (*careforms.Session, bool) {
	sess, err := s.app.Open(r.Context(), chi.URLParam(r, "page"), opts...)
	if err != nil {
		s.apiError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) apiError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	s.writeError(w, status, code, msg)
}

func (s *Server) apiList(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.apiOpen(w, r)
	if !ok {
		return
	}
	if err := parseListQuery(r).apply(sess.Table); err != nil {
		s.apiError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Screen())
}

func (s *Server) apiGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.apiOpen(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	for _, rec := range sess.Table.Records() {
		if rec.ID(sess.Table.IDField()) == id {
			s.writeJSON(w, http.StatusOK, rec.Map())
			return
		}
	}
	s.apiError(w, table.ErrRecordNotFound)
}

func (s *Server) apiCreate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.apiOpen(w, r)
	if !ok {
		return
	}
	f, err := sess.Table.Add()
	if err != nil {
		s.apiError(w, err)
		return
	}
	s.apiSubmit(w, r, sess, f, http.StatusCreated)
}

func (s *Server) apiUpdate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.apiOpen(w, r)
	if !ok {
		return
	}
	f, err := sess.Table.Edit(chi.URLParam(r, "id"))
	if err != nil {
		s.apiError(w, err)
		return
	}
	s.apiSubmit(w, r, sess, f, http.StatusOK)
}

// apiSubmit applies the keys present in the JSON body. Keys the page does
// not describe are rejected.
func (s *Server) apiSubmit(w http.ResponseWriter, r *http.Request, sess *careforms.Session, f *form.Form, status int) {
	var body map[string]any
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return
	}
	for key, value := range body {
		if key == sess.Table.IDField() {
			continue
		}
		if err := f.SetInput(key, inputText(value)); err != nil {
			s.writeError(w, http.StatusBadRequest, "UNKNOWN_FIELD", err.Error())
			return
		}
	}
	if !f.Submit() {
		fields := make(map[string][]string)
		for _, ctrl := range f.AllControls() {
			if len(ctrl.Errors) > 0 {
				fields[ctrl.Key] = ctrl.Errors
			}
		}
		s.writeJSON(w, http.StatusUnprocessableEntity, validationError{Error: form.NoticeInvalid, Code: "VALIDATION_ERROR", Fields: fields})
		return
	}
	if err := sess.Coordinator.Err(); err != nil {
		s.writeError(w, http.StatusBadGateway, "STORE_ERROR", sess.Coordinator.Texts().SaveFailed)
		return
	}
	s.writeJSON(w, status, sess.Coordinator.LastSaved().Map())
}

func (s *Server) apiDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.apiOpen(w, r, careforms.WithConfirmer(table.Answer(true)))
	if !ok {
		return
	}
	if _, err := sess.Table.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.apiError(w, err)
		return
	}
	if err := sess.Coordinator.Err(); err != nil {
		s.writeError(w, http.StatusBadGateway, "STORE_ERROR", sess.Coordinator.Texts().DeleteFailed)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// inputText renders a decoded JSON value as control input.
func inputText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

type optionsResponse struct {
	Data []field.Option `json:"data"`
}

// apiOptions searches the options of a select or radio field with the q and
// limit parameters.
func (s *Server) apiOptions(w http.ResponseWriter, r *http.Request) {
	page, ok := s.app.Catalog().Page(chi.URLParam(r, "page"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown page")
		return
	}
	d, ok := page.Fields.Lookup(chi.URLParam(r, "field"))
	if !ok || len(d.Options) == 0 {
		s.writeError(w, http.StatusNotFound, "NOT_FOUND", "field has no options")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results := choices.Search(d.Options, r.URL.Query().Get("q"), limit, s.choices)
	if results == nil {
		results = []field.Option{}
	}
	s.writeJSON(w, http.StatusOK, optionsResponse{Data: results})
}
