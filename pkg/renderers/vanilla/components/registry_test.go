package components_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/render"
	"github.com/goliatone/go-careforms/pkg/render/template/pongo"
	"github.com/goliatone/go-careforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-careforms/pkg/renderers/vanilla/components"
)

func TestDefaultRegistry_Widgets(t *testing.T) {
	want := []render.Widget{render.WidgetInput, render.WidgetRadio, render.WidgetSelect, render.WidgetTextarea}
	if diff := cmp.Diff(want, components.NewDefaultRegistry().Widgets()); diff != "" {
		t.Fatalf("widgets mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_WithCopies(t *testing.T) {
	base := components.New()
	if _, err := base.With("", components.Descriptor{}); err == nil {
		t.Fatalf("expected error for empty widget")
	}
	if _, err := base.With("stars", components.Descriptor{}); err == nil {
		t.Fatalf("expected error for nil renderer")
	}

	noop := func(*bytes.Buffer, render.Control, components.ComponentData) error { return nil }
	stars, err := base.With("stars", components.Descriptor{Renderer: noop, Stylesheets: []string{"/stars.css"}})
	if err != nil {
		t.Fatalf("with stars: %v", err)
	}
	both, err := stars.With("other", components.Descriptor{Renderer: noop, Stylesheets: []string{"/stars.css", "/other.css"}})
	if err != nil {
		t.Fatalf("with other: %v", err)
	}

	if _, ok := stars.Lookup("other"); ok {
		t.Fatalf("extending a registry changed its parent")
	}
	if len(base.Widgets()) != 0 {
		t.Fatalf("base registry should stay empty: %v", base.Widgets())
	}
	if diff := cmp.Diff([]string{"/stars.css", "/other.css"}, both.Stylesheets([]render.Widget{"stars", "other"})); diff != "" {
		t.Fatalf("stylesheets mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateComponent_ThemePartialOverride(t *testing.T) {
	engine, err := pongo.New(pongo.WithFS(vanilla.TemplatesFS()))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	desc := field.Descriptor{Key: "severity", Label: "Severity", DataType: field.DataTypeRadio,
		Options: []field.Option{{Value: "Mild", Label: "Mild"}, {Value: "Severe", Label: "Severe"}}}
	ctrl := render.Field(desc, field.OptionValue("Severe"))

	descriptor, _ := components.NewDefaultRegistry().Lookup(render.WidgetRadio)
	var buf bytes.Buffer
	err = descriptor.Renderer(&buf, ctrl, components.ComponentData{Template: engine})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), `value="Severe" checked`) {
		t.Fatalf("selected radio not checked:\n%s", buf.String())
	}

	buf.Reset()
	err = descriptor.Renderer(&buf, ctrl, components.ComponentData{
		Template:      engine,
		ThemePartials: map[string]string{"forms.radio": "templates/components/select.html"},
	})
	if err != nil {
		t.Fatalf("render override: %v", err)
	}
	if !strings.Contains(buf.String(), "<select") {
		t.Fatalf("theme partial not applied:\n%s", buf.String())
	}
}
