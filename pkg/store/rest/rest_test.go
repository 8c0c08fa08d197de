package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/record"
	"github.com/goliatone/go-careforms/pkg/store"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

func newTestServer(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := recordedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &req.Body)
		}
		seen = append(seen, req)
		handle(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestStore_FetchAllSendsBearer(t *testing.T) {
	srv, seen := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"r1","firstName":"Ada"},{"id":"r2","firstName":"Alan"}]`)
	})
	backend, err := New(srv.URL+"/api/", WithTokenSource(StaticToken("secret")))
	require.NoError(t, err)

	s, err := backend.Open(context.Background(), store.Collection{Name: "residents", Endpoint: "/resident"})
	require.NoError(t, err)

	all, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alan", all[1]["firstName"].String())

	require.Len(t, *seen, 1)
	assert.Equal(t, "/api/resident", (*seen)[0].Path)
	assert.Equal(t, "Bearer secret", (*seen)[0].Auth)
}

func TestStore_SaveCreatesAndUpdates(t *testing.T) {
	srv, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = io.WriteString(w, `{"id":"new-1","firstName":"Grace"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	backend, err := New(srv.URL)
	require.NoError(t, err)
	s, err := backend.Open(context.Background(), store.Collection{Name: "residents"})
	require.NoError(t, err)

	created, err := s.Save(context.Background(), record.Record{"firstName": field.Text("Grace")})
	require.NoError(t, err)
	assert.Equal(t, "new-1", created.ID("id"))

	updated, err := s.Save(context.Background(), record.Record{"id": field.Text("r1"), "firstName": field.Text("Ada")})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated["firstName"].String())

	require.Len(t, *seen, 2)
	assert.Equal(t, http.MethodPost, (*seen)[0].Method)
	assert.Equal(t, "/residents", (*seen)[0].Path)
	assert.Empty(t, (*seen)[0].Auth)
	assert.Equal(t, http.MethodPut, (*seen)[1].Method)
	assert.Equal(t, "/residents/r1", (*seen)[1].Path)
	assert.Equal(t, "Ada", (*seen)[1].Body["firstName"])
}

func TestStore_Errors(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"database unavailable"}`)
	})
	backend, err := New(srv.URL)
	require.NoError(t, err)
	s, err := backend.Open(context.Background(), store.Collection{Name: "vitals"})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(context.Background(), "v1"), store.ErrNotFound)

	_, err = s.FetchAll(context.Background())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusInternalServerError))
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("/api")
	assert.Error(t, err)
}
