package server

import (
	"fmt"
	"path"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// manifestSelector serves one manifest and its variants.
type manifestSelector struct {
	manifest *theme.Manifest
}

// NewManifestSelector returns a selector over a single manifest.
func NewManifestSelector(m *theme.Manifest) theme.ThemeSelector {
	return manifestSelector{manifest: m}
}

func (s manifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if s.manifest == nil {
		return nil, fmt.Errorf("server: no theme configured")
	}
	if name != "" && name != s.manifest.Name {
		return nil, fmt.Errorf("server: unknown theme %q", name)
	}
	if variant != "" {
		if _, ok := s.manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("server: theme %q has no variant %q", s.manifest.Name, variant)
		}
	}
	return &theme.Selection{Theme: s.manifest.Name, Variant: variant, Manifest: s.manifest}, nil
}

// rendererConfig flattens a selection into renderer settings. Variant
// tokens, partials and asset files override the base manifest; every token
// also becomes a "--<token>" CSS variable.
func rendererConfig(sel *theme.Selection) *theme.RendererConfig {
	if sel == nil || sel.Manifest == nil {
		return nil
	}
	m := sel.Manifest
	tokens := merge(m.Tokens)
	partials := merge(m.Templates)
	files := merge(m.Assets.Files)
	prefix := m.Assets.Prefix

	if v, ok := m.Variants[sel.Variant]; ok {
		tokens = merge(tokens, v.Tokens)
		partials = merge(partials, v.Templates)
		files = merge(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return &theme.RendererConfig{
		Theme:    sel.Theme,
		Variant:  sel.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(name string) string {
			file, ok := files[name]
			if !ok {
				return ""
			}
			if strings.Contains(file, "://") || strings.HasPrefix(file, "/") || prefix == "" {
				return file
			}
			return path.Join(prefix, file)
		},
	}
}

func merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
