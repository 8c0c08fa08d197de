package render

import (
	"context"

	theme "github.com/goliatone/go-theme"
)

// Renderer turns a Screen into a byte representation (HTML, terminal text).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, screen Screen, options RenderOptions) ([]byte, error)
}

// RenderOptions carry per-request data that is not part of the page state.
type RenderOptions struct {
	// Pages lists the navigation entries, keyed by page name.
	Pages []NavEntry
	// User is the display name of the signed-in user.
	User string
	// Theme is the resolved theme configuration, if any.
	Theme *theme.RendererConfig
	// BasePath prefixes every generated link.
	BasePath string
}

// NavEntry is one item of the page navigation.
type NavEntry struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}
