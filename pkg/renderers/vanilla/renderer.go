// Package vanilla renders page screens as server-side HTML using pongo2
// templates and no client framework.
package vanilla

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-careforms/pkg/render"
	rendertemplate "github.com/goliatone/go-careforms/pkg/render/template"
	"github.com/goliatone/go-careforms/pkg/render/template/pongo"
	"github.com/goliatone/go-careforms/pkg/renderers/vanilla/components"
)

const (
	Name        = "vanilla"
	contentType = "text/html; charset=utf-8"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templatesDir     string
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	classes          map[string]string
	assetPrefix      string
	live             bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir layers templates from a directory on disk over the
// embedded bundle. The directory mirrors the bundle layout, for example
// templates/components/select.html.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		if _, err := os.Stat(path); err == nil {
			cfg.templatesDir = path
		}
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithClasses overrides chrome class slots such as "table" or "form".
func WithClasses(classes map[string]string) Option {
	return func(cfg *config) {
		for slot, class := range classes {
			if strings.TrimSpace(class) != "" {
				cfg.classes[slot] = strings.TrimSpace(class)
			}
		}
	}
}

// WithAssetURLPrefix sets where the embedded stylesheet is served, relative
// to the request base path. Defaults to "/assets".
func WithAssetURLPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.assetPrefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

// WithLiveRefresh emits the websocket snippet that reloads a table page when
// its records change.
func WithLiveRefresh(enabled bool) Option {
	return func(cfg *config) {
		cfg.live = enabled
	}
}

type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	registry    *components.Registry
	classes     map[string]string
	assetPrefix string
	live        bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:  TemplatesFS(),
		classes:     defaultClasses(),
		assetPrefix: "/assets",
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engineOpts := []pongo.Option{pongo.WithFS(cfg.templateFS)}
		if cfg.templatesDir != "" {
			engineOpts = append(engineOpts, pongo.WithBaseDir(cfg.templatesDir))
		}
		engine, err := pongo.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:   renderer,
		registry:    cfg.registry,
		classes:     cfg.classes,
		assetPrefix: cfg.assetPrefix,
		live:        cfg.live,
	}, nil
}

func (r *Renderer) Name() string        { return Name }
func (r *Renderer) ContentType() string { return contentType }

// Render draws a table page, its open form or its delete confirmation.
func (r *Renderer) Render(ctx context.Context, screen render.Screen, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	data := r.chrome(options)
	data["screen"] = screen
	data["has_actions"] = hasActionsColumn(screen.Columns)
	data["pages"] = pageNumbers(screen.Pagination.PageCount)
	if r.live && screen.Form == nil && screen.Confirm == nil {
		data["live"] = screen.Page
	}

	if screen.Form != nil {
		controls, used, err := r.controls(screen.Form.Controls, options.Theme)
		if err != nil {
			return nil, err
		}
		data["controls"] = controls
		data["hidden"] = screen.Form.Hidden
		data["stylesheets"] = append(data["stylesheets"].([]string), r.registry.Stylesheets(used)...)
	}

	out, err := r.templates.RenderTemplate("templates/page", data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render page: %w", err)
	}
	return []byte(out), nil
}

// LoginView is the state of the login page.
type LoginView struct {
	Message  string
	Username string
	Next     string
}

// RenderLogin draws the login page.
func (r *Renderer) RenderLogin(ctx context.Context, view LoginView, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := r.chrome(options)
	data["message"] = view.Message
	data["username"] = view.Username
	data["next"] = view.Next

	out, err := r.templates.RenderTemplate("templates/login", data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render login: %w", err)
	}
	return []byte(out), nil
}

func (r *Renderer) chrome(options render.RenderOptions) map[string]any {
	base := strings.TrimRight(options.BasePath, "/")
	return map[string]any{
		"base":        base,
		"nav":         options.Pages,
		"user":        options.User,
		"classes":     r.classes,
		"theme":       buildThemeContext(options.Theme),
		"stylesheets": []string{r.stylesheetURL(base, options.Theme)},
	}
}

func (r *Renderer) controls(controls []render.Control, cfg *theme.RendererConfig) ([]string, []render.Widget, error) {
	data := components.ComponentData{
		Template: r.templates,
		Sanitize: SanitizeDescription,
	}
	if cfg != nil {
		data.ThemePartials = cfg.Partials
	}

	out := make([]string, 0, len(controls))
	var used []render.Widget
	for _, ctrl := range controls {
		if ctrl.Hidden {
			continue
		}
		component, ok := r.registry.Lookup(ctrl.Widget)
		if !ok {
			return nil, nil, fmt.Errorf("vanilla renderer: no component for widget %q (field %q)", ctrl.Widget, ctrl.Key)
		}
		var buf bytes.Buffer
		if err := component.Renderer(&buf, ctrl, data); err != nil {
			return nil, nil, fmt.Errorf("vanilla renderer: field %q: %w", ctrl.Key, err)
		}
		out = append(out, buf.String())
		if !slices.Contains(used, ctrl.Widget) {
			used = append(used, ctrl.Widget)
		}
	}
	return out, used, nil
}

func (r *Renderer) stylesheetURL(base string, cfg *theme.RendererConfig) string {
	if cfg != nil && cfg.AssetURL != nil {
		if url := cfg.AssetURL(StylesheetName); url != "" {
			return url
		}
	}
	return base + r.assetPrefix + "/" + StylesheetName
}

type themeContext struct {
	Name         string `json:"name,omitempty"`
	Variant      string `json:"variant,omitempty"`
	CSSVarsStyle string `json:"css_vars_style,omitempty"`
}

func buildThemeContext(cfg *theme.RendererConfig) themeContext {
	if cfg == nil {
		return themeContext{}
	}
	return themeContext{
		Name:         cfg.Theme,
		Variant:      cfg.Variant,
		CSSVarsStyle: cssVarsStyle(cfg.CSSVars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

func hasActionsColumn(cols []render.Column) bool {
	for _, col := range cols {
		if col.Actions {
			return true
		}
	}
	return false
}

func pageNumbers(count int) []int {
	out := make([]int, count)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
