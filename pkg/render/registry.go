package render

import (
	"errors"
	"fmt"
	"mime"
	"strings"
	"sync"
)

var (
	ErrUnknownRenderer   = errors.New("render: unknown renderer")
	ErrDuplicateRenderer = errors.New("render: renderer already registered")
)

// Registry holds page renderers by name, in registration order. Front-ends
// pick one by name or by the media type a client asked for.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Renderer
	order  []string
}

func NewRegistry(renderers ...Renderer) (*Registry, error) {
	r := &Registry{byName: make(map[string]Renderer, len(renderers))}
	for _, rd := range renderers {
		if err := r.Register(rd); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(rd Renderer) error {
	if rd == nil || strings.TrimSpace(rd.Name()) == "" {
		return errors.New("render: renderer needs a name")
	}
	name := rd.Name()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateRenderer, name)
	}
	r.byName[name] = rd
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) Lookup(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rd, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownRenderer, name, strings.Join(r.order, ", "))
	}
	return rd, nil
}

// Names lists renderers in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// ForMediaType returns the first renderer whose content type has the given
// media type. Parameters such as charset are ignored on both sides.
func (r *Registry) ForMediaType(mediaType string) (Renderer, bool) {
	want := baseMediaType(mediaType)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		rd := r.byName[name]
		if baseMediaType(rd.ContentType()) == want {
			return rd, true
		}
	}
	return nil, false
}

func baseMediaType(v string) string {
	if mt, _, err := mime.ParseMediaType(v); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(v))
}
