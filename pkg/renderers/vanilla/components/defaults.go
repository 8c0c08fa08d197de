package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-careforms/pkg/render"
)

// NewDefaultRegistry returns a registry with one template-backed component
// per widget family. Templates live at templates/components/<widget>.html
// and a theme can swap them through the "forms.<widget>" partial.
func NewDefaultRegistry() *Registry {
	byWidget := make(map[render.Widget]Descriptor, 4)
	for _, w := range []render.Widget{render.WidgetInput, render.WidgetTextarea, render.WidgetSelect, render.WidgetRadio} {
		byWidget[w] = Descriptor{Renderer: fromTemplate(w)}
	}
	return &Registry{byWidget: byWidget}
}

func fromTemplate(w render.Widget) Renderer {
	partial := "forms." + string(w)
	fallback := "templates/components/" + string(w) + ".html"

	return func(buf *bytes.Buffer, ctrl render.Control, data ComponentData) error {
		name := fallback
		if override := strings.TrimSpace(data.ThemePartials[partial]); override != "" {
			name = override
		}
		if data.Template == nil {
			return fmt.Errorf("components: no template renderer for %q", name)
		}
		description := ctrl.Description
		if data.Sanitize != nil {
			description = data.Sanitize(description)
		}
		out, err := data.Template.RenderTemplate(name, map[string]any{
			"control":     ctrl,
			"description": description,
		})
		if err != nil {
			return fmt.Errorf("components: %s: %w", name, err)
		}
		buf.WriteString(out)
		return nil
	}
}
