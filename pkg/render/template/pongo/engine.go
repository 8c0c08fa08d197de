// Package pongo implements template.TemplateRenderer on top of pongo2.
package pongo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-careforms/pkg/render"
	"github.com/goliatone/go-careforms/pkg/render/template"
)

var errNilEngine = errors.New("pongo: engine is nil")

// Option configures the engine before construction.
type Option func(*Engine)

// WithBaseDir loads templates from a directory on disk. It is consulted
// before the WithFS files, so single templates can be overridden in place.
func WithBaseDir(dir string) Option {
	return func(e *Engine) { e.dir = strings.TrimSpace(dir) }
}

func WithFS(files fs.FS) Option {
	return func(e *Engine) { e.files = files }
}

// WithGlobals seeds values visible to every template.
func WithGlobals(data map[string]any) Option {
	return func(e *Engine) { e.seed = data }
}

// Engine is a pongo2 template set. Parsed files are cached by name.
type Engine struct {
	dir   string
	files fs.FS
	seed  map[string]any

	set    *pongo2.TemplateSet
	parsed sync.Map // string -> *pongo2.Template
	// guards set.Globals
	mu sync.RWMutex
}

var _ template.TemplateRenderer = (*Engine)(nil)

func New(options ...Option) (*Engine, error) {
	e := &Engine{}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}

	loaders := make([]pongo2.TemplateLoader, 0, 2)
	if e.dir != "" {
		if info, err := os.Stat(e.dir); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("pongo: templates dir %q is not a directory", e.dir)
		}
		loaders = append(loaders, rootLoader{files: os.DirFS(e.dir)})
	}
	if e.files != nil {
		loaders = append(loaders, rootLoader{files: e.files})
	}
	if len(loaders) == 0 {
		return nil, errors.New("pongo: need a base dir or an fs.FS")
	}

	e.set = pongo2.NewSet("careforms", loaders...)
	builtinFilters.Do(registerBuiltinFilters)
	if err := e.GlobalContext(e.seed); err != nil {
		return nil, err
	}
	return e, nil
}

// RenderTemplate executes the named template. ".html" is appended when the
// name has no extension.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errNilEngine
	}
	if !strings.Contains(name, ".") {
		name += ".html"
	}
	tmpl, err := e.load(name)
	if err != nil {
		return "", err
	}
	return e.run(tmpl, name, data, out)
}

func (e *Engine) RenderString(content string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errNilEngine
	}
	tmpl, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("pongo: parse inline template: %w", err)
	}
	return e.run(tmpl, "inline", data, out)
}

// GlobalContext merges data into the values every template sees.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errNilEngine
	}
	if data == nil {
		return nil
	}
	ctx, err := contextOf(data)
	if err != nil {
		return fmt.Errorf("pongo: globals: %w", err)
	}
	e.mu.Lock()
	if e.set.Globals == nil {
		e.set.Globals = pongo2.Context{}
	}
	e.set.Globals.Update(ctx)
	e.mu.Unlock()
	return nil
}

// RegisterFilter adds a filter. pongo2 keeps filters process-wide, so each
// name can be registered once.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "" || fn == nil:
		return errors.New("pongo: filter name and function required")
	case pongo2.FilterExists(name):
		return fmt.Errorf("pongo: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		v, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(v), nil
	})
}

func (e *Engine) load(name string) (*pongo2.Template, error) {
	if cached, ok := e.parsed.Load(name); ok {
		return cached.(*pongo2.Template), nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("pongo: load %q: %w", name, err)
	}
	actual, _ := e.parsed.LoadOrStore(name, tmpl)
	return actual.(*pongo2.Template), nil
}

func (e *Engine) run(tmpl *pongo2.Template, name string, data any, out []io.Writer) (string, error) {
	ctx, err := contextOf(data)
	if err != nil {
		return "", fmt.Errorf("pongo: %s data: %w", name, err)
	}
	e.mu.RLock()
	rendered, err := tmpl.Execute(ctx)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("pongo: execute %q: %w", name, err)
	}
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// contextOf turns template data into a pongo2 context. Data goes through its
// JSON form, so struct fields are addressed by their json tags at any depth.
func contextOf(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("data must encode to a JSON object: %w", err)
	}

	ctx := make(pongo2.Context, len(fields))
	for key, value := range fields {
		if key = strings.TrimSpace(key); key != "" {
			ctx[key] = plain(value)
		}
	}
	return ctx, nil
}

// plain rewrites freshly decoded JSON in place so whole numbers print
// without a fraction.
func plain(value any) any {
	switch v := value.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int(v)
		}
	case map[string]any:
		for key, item := range v {
			v[key] = plain(item)
		}
	case []any:
		for i, item := range v {
			v[i] = plain(item)
		}
	}
	return value
}

// rootLoader reads templates from an fs.FS and resolves every name from its
// root, including the names used by extends and include. pongo2's loaders
// resolve those relative to the including template, and only through the
// first loader, which breaks the dir-then-embedded fallback.
type rootLoader struct {
	files fs.FS
}

func (l rootLoader) Abs(_, name string) string {
	return path.Clean(strings.TrimPrefix(name, "/"))
}

func (l rootLoader) Get(name string) (io.Reader, error) {
	data, err := fs.ReadFile(l.files, name)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

var builtinFilters sync.Once

func registerBuiltinFilters() {
	builtins := map[string]pongo2.FilterFunction{
		"trim": func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(strings.TrimSpace(in.String())), nil
		},
		"mask_ssn": func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(render.MaskSSN(in.String())), nil
		},
	}
	for name, fn := range builtins {
		if !pongo2.FilterExists(name) {
			_ = pongo2.RegisterFilter(name, fn)
		}
	}
}
