// Package fieldset loads page configurations (field descriptors plus table
// settings) from JSON or YAML files and OpenAPI documents.
package fieldset

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/record"
)

// Catalog holds the parsed pages. It is safe for concurrent readers when
// treated as immutable after construction.
type Catalog struct {
	pages map[string]Page
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{pages: make(map[string]Page)}
}

// LoadFS walks fsys and parses every JSON/YAML page file. A nil fsys yields
// an empty catalog.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	catalog := NewCatalog()
	if fsys == nil {
		return catalog, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isConfigFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("fieldset: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for name, raw := range doc.Pages {
			page, err := normalisePage(strings.TrimSpace(name), raw, path)
			if err != nil {
				return err
			}
			if err := catalog.Add(page); err != nil {
				return fmt.Errorf("%w (file %s)", err, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// Add registers a page. Names must be unique.
func (c *Catalog) Add(page Page) error {
	if page.Name == "" {
		return fmt.Errorf("fieldset: page name is required")
	}
	if _, exists := c.pages[page.Name]; exists {
		return fmt.Errorf("fieldset: duplicate page %q", page.Name)
	}
	c.pages[page.Name] = page
	return nil
}

// Page returns the configuration for a page name.
func (c *Catalog) Page(name string) (Page, bool) {
	if c == nil {
		return Page{}, false
	}
	page, ok := c.pages[name]
	return page, ok
}

// Pages lists pages by Order, then name.
func (c *Catalog) Pages() []Page {
	if c == nil {
		return nil
	}
	out := make([]Page, 0, len(c.pages))
	for _, p := range c.pages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Names lists page names in navigation order.
func (c *Catalog) Names() []string {
	pages := c.Pages()
	names := make([]string, len(pages))
	for i, p := range pages {
		names[i] = p.Name
	}
	return names
}

func (c *Catalog) Empty() bool {
	return c == nil || len(c.pages) == 0
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("fieldset: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("fieldset: parse %s: %w", source, err)
	}
	return doc, nil
}

func normalisePage(name string, raw pageFile, source string) (Page, error) {
	if name == "" {
		return Page{}, fmt.Errorf("fieldset: file %s defines an empty page name", source)
	}
	descriptors := make([]field.Descriptor, 0, len(raw.Fields))
	for i, cfg := range raw.Fields {
		desc, err := cfg.Descriptor()
		if err != nil {
			return Page{}, fmt.Errorf("fieldset: page %q (file %s) field %d: %w", name, source, i, err)
		}
		descriptors = append(descriptors, desc)
	}
	set, err := field.NewSet(descriptors...)
	if err != nil {
		return Page{}, fmt.Errorf("fieldset: page %q (file %s): %w", name, source, err)
	}

	page := Page{
		Name:     name,
		Title:    strings.TrimSpace(raw.Title),
		IDField:  strings.TrimSpace(raw.IDField),
		Endpoint: strings.TrimSpace(raw.Endpoint),
		PageSize: raw.PageSize,
		Order:    raw.Order,
		Actions:  raw.Actions.resolve(),
		Messages: raw.Messages,
		Fields:   set,
		Source:   source,
	}
	if page.Title == "" {
		page.Title = field.DefaultLabeler(name)
	}
	if page.IDField == "" {
		page.IDField = record.DefaultIDField
	}
	if page.Endpoint == "" {
		page.Endpoint = "/" + name
	}
	return page, nil
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
