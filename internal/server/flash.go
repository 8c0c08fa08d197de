package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-careforms/pkg/notify"
	"github.com/goliatone/go-careforms/pkg/render"
)

const flashCookie = "careforms_flash"

// setFlash carries notices across a redirect.
func (s *Server) setFlash(w http.ResponseWriter, notices []notify.Notice) {
	if len(notices) == 0 {
		return
	}
	values := url.Values{}
	for _, n := range notices {
		values.Add(n.Kind, n.Message)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    values.Encode(),
		Path:     s.path("/"),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash reads and clears pending notices.
func (s *Server) takeFlash(w http.ResponseWriter, r *http.Request) []render.Notice {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: s.path("/"), MaxAge: -1, HttpOnly: true})

	values, err := url.ParseQuery(c.Value)
	if err != nil {
		return nil
	}
	var out []render.Notice
	for _, kind := range []string{notify.KindSuccess, notify.KindError} {
		for _, msg := range values[kind] {
			if msg = strings.TrimSpace(msg); msg != "" {
				out = append(out, render.Notice{Kind: kind, Message: msg})
			}
		}
	}
	return out
}
