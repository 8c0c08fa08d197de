package render

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type namedRenderer struct {
	name, contentType string
}

func (n namedRenderer) Name() string        { return n.name }
func (n namedRenderer) ContentType() string { return n.contentType }
func (n namedRenderer) Render(context.Context, Screen, RenderOptions) ([]byte, error) {
	return []byte(n.name), nil
}

var (
	htmlRenderer = namedRenderer{"vanilla", "text/html; charset=utf-8"}
	textRenderer = namedRenderer{"tui", "text/plain; charset=utf-8"}
)

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry(htmlRenderer, textRenderer)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if err := reg.Register(namedRenderer{name: "tui"}); !errors.Is(err, ErrDuplicateRenderer) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := reg.Register(namedRenderer{}); err == nil {
		t.Fatalf("expected error for unnamed renderer")
	}
	if _, err := reg.Lookup("preact"); !errors.Is(err, ErrUnknownRenderer) {
		t.Fatalf("expected unknown renderer error, got %v", err)
	}
	if diff := cmp.Diff([]string{"vanilla", "tui"}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	got, err := reg.Lookup("tui")
	if err != nil || got.Name() != "tui" {
		t.Fatalf("lookup tui: %v %v", got, err)
	}
}

func TestRegistry_ForMediaType(t *testing.T) {
	reg, err := NewRegistry(htmlRenderer, textRenderer)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	tests := []struct {
		in   string
		want string
	}{
		{"text/plain", "tui"},
		{"TEXT/HTML; charset=utf-8", "vanilla"},
		{"application/json", ""},
	}
	for _, tt := range tests {
		rd, ok := reg.ForMediaType(tt.in)
		got := ""
		if ok {
			got = rd.Name()
		}
		if got != tt.want {
			t.Fatalf("ForMediaType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
