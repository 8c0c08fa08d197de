// Package rest persists records through a JSON HTTP API: GET lists a
// collection, POST creates, PUT /{id} updates and DELETE /{id} removes.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-careforms/pkg/record"
	"github.com/goliatone/go-careforms/pkg/store"
)

// TokenSource returns the bearer token sent with each request. An empty
// token sends no Authorization header.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken always returns token.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

type Option func(*Backend)

func WithHTTPClient(client *http.Client) Option {
	return func(b *Backend) {
		if client != nil {
			b.client = client
		}
	}
}

func WithTokenSource(src TokenSource) Option {
	return func(b *Backend) {
		b.token = src
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("rest: %s %s: status %d", e.Method, e.URL, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

type Backend struct {
	base   *url.URL
	client *http.Client
	token  TokenSource
	logger *zap.Logger
}

var _ store.Backend = (*Backend)(nil)

// New returns a backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Backend, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("rest: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("rest: base url %q must be absolute", baseURL)
	}
	if base.Path == "" {
		base.Path = "/"
	}
	b := &Backend{
		base:   base,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

// Open maps the collection to its endpoint, falling back to "/{name}".
func (b *Backend) Open(_ context.Context, c store.Collection) (store.Store, error) {
	endpoint := strings.Trim(c.Endpoint, "/")
	if endpoint == "" {
		endpoint = c.Name
	}
	idField := c.IDField
	if idField == "" {
		idField = record.DefaultIDField
	}
	return &Store{backend: b, endpoint: b.base.JoinPath(endpoint), idField: idField}, nil
}

func (b *Backend) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

type Store struct {
	backend  *Backend
	endpoint *url.URL
	idField  string
}

var _ store.Store = (*Store)(nil)

func (s *Store) FetchAll(ctx context.Context) ([]record.Record, error) {
	body, err := s.do(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, err
	}
	return record.DecodeList(body)
}

// Save POSTs records without an identifier and PUTs the rest. The server's
// response body is the stored record; an empty body echoes rec.
func (s *Store) Save(ctx context.Context, rec record.Record) (record.Record, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("rest: encode record: %w", err)
	}
	method, target := http.MethodPost, s.endpoint
	if id := rec.ID(s.idField); id != "" {
		method, target = http.MethodPut, s.endpoint.JoinPath(id)
	}
	body, err := s.do(ctx, method, target, payload)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return rec.Clone(), nil
	}
	return record.Decode(body)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.do(ctx, http.MethodDelete, s.endpoint.JoinPath(id), nil)
	return err
}

func (s *Store) do(ctx context.Context, method string, target *url.URL, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("rest: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if src := s.backend.token; src != nil {
		token, err := src(ctx)
		if err != nil {
			return nil, fmt.Errorf("rest: token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := s.backend.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rest: %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("rest: read %s %s: %w", method, target, err)
	}
	s.backend.logger.Debug("rest request",
		zap.String("method", method),
		zap.String("url", target.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound && method == http.MethodDelete:
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, target)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Method: method, URL: target.String(), Status: resp.StatusCode, Body: errorMessage(body)}
	}
	return body, nil
}

// errorMessage pulls "error" or "message" out of a JSON error body.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}

// IsStatus reports whether err is a StatusError carrying code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == code
}
