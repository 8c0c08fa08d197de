package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	careforms "github.com/goliatone/go-careforms"
	"github.com/goliatone/go-careforms/pkg/form"
	"github.com/goliatone/go-careforms/pkg/table"
)

// writeJSON marshals v as JSON and writes it with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write json", zap.Error(err))
	}
}

// writeError writes a structured JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

// decodeJSON decodes the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}

// statusFor maps page and table errors onto HTTP responses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, careforms.ErrUnknownPage), errors.Is(err, table.ErrRecordNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, table.ErrActionDisabled):
		return http.StatusForbidden, "ACTION_DISABLED"
	case errors.Is(err, table.ErrUnknownColumn):
		return http.StatusBadRequest, "UNKNOWN_COLUMN"
	case errors.Is(err, form.ErrHiddenInvalid):
		return http.StatusUnprocessableEntity, "HIDDEN_FIELD_INVALID"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// listQuery is the search, sort and page state of a table URL.
type listQuery struct {
	Query string
	Sort  string
	Desc  bool
	Page  int
}

func parseListQuery(r *http.Request) listQuery {
	q := r.URL.Query()
	lq := listQuery{
		Query: strings.TrimSpace(q.Get("q")),
		Sort:  q.Get("sort"),
		Page:  1,
	}
	lq.Desc, _ = strconv.ParseBool(q.Get("desc"))
	if n, err := strconv.Atoi(q.Get("p")); err == nil && n > 0 {
		lq.Page = n
	}
	return lq
}

func (lq listQuery) apply(t *table.Table) error {
	t.Filter(lq.Query)
	if lq.Sort != "" {
		if err := t.Sort(lq.Sort, lq.Desc); err != nil {
			return err
		}
	}
	t.SetPage(lq.Page)
	return nil
}

// safeNext keeps post-login redirects on this site.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	if u, err := url.Parse(next); err != nil || u.Host != "" {
		return fallback
	}
	return next
}
