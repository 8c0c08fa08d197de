package components

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/goliatone/go-careforms/pkg/render"
	rendertemplate "github.com/goliatone/go-careforms/pkg/render/template"
)

// Renderer writes the markup of one control into buf.
type Renderer func(buf *bytes.Buffer, ctrl render.Control, data ComponentData) error

// ComponentData carries helpers available to component renderers.
type ComponentData struct {
	Template rendertemplate.TemplateRenderer
	// ThemePartials maps partial keys (for example "forms.select") to
	// replacement template names.
	ThemePartials map[string]string
	// Sanitize cleans description markup before it is emitted unescaped.
	Sanitize func(string) string
}

// Descriptor pairs a component renderer with the stylesheets it needs.
type Descriptor struct {
	Renderer    Renderer
	Stylesheets []string
}

// Registry maps widgets to components. It is never modified after
// construction; With returns an extended copy, so a registry can be shared
// between renderers.
type Registry struct {
	byWidget map[render.Widget]Descriptor
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byWidget: map[render.Widget]Descriptor{}}
}

// With returns a copy of r where w renders through d.
func (r *Registry) With(w render.Widget, d Descriptor) (*Registry, error) {
	if w == "" {
		return nil, errors.New("components: widget is required")
	}
	if d.Renderer == nil {
		return nil, fmt.Errorf("components: renderer for %q is nil", w)
	}
	next := &Registry{byWidget: maps.Clone(r.byWidget)}
	if next.byWidget == nil {
		next.byWidget = map[render.Widget]Descriptor{}
	}
	d.Stylesheets = slices.Clone(d.Stylesheets)
	next.byWidget[w] = d
	return next, nil
}

// Lookup returns the component registered for w.
func (r *Registry) Lookup(w render.Widget) (Descriptor, bool) {
	d, ok := r.byWidget[w]
	return d, ok
}

// Widgets lists the registered widgets in name order.
func (r *Registry) Widgets() []render.Widget {
	return slices.Sorted(maps.Keys(r.byWidget))
}

// Stylesheets collects the stylesheets of the given widgets, first use
// first, without repeats.
func (r *Registry) Stylesheets(used []render.Widget) []string {
	var out []string
	for _, w := range used {
		for _, href := range r.byWidget[w].Stylesheets {
			if href != "" && !slices.Contains(out, href) {
				out = append(out, href)
			}
		}
	}
	return out
}
