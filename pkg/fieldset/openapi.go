package fieldset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/record"
)

// Extension keys read from component schemas and their properties.
const (
	extensionType     = "x-careforms-type"
	extensionHidden   = "x-careforms-hidden"
	extensionOrder    = "x-careforms-order"
	extensionEndpoint = "x-careforms-endpoint"
	extensionIDField  = "x-careforms-id-field"
)

// ImportOpenAPI converts every object schema under components.schemas into a
// page. Property order follows x-careforms-order, then the property name.
func ImportOpenAPI(ctx context.Context, data []byte, source string) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("fieldset: openapi document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("fieldset: load openapi %s: %w", source, err)
	}

	catalog := NewCatalog()
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return catalog, nil
	}

	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		ref := doc.Components.Schemas[name]
		if ref == nil || ref.Value == nil || !isObject(ref.Value) {
			continue
		}
		page, err := pageFromSchema(name, ref.Value, source)
		if err != nil {
			return nil, err
		}
		if page.Order == 0 {
			page.Order = 100 + i
		}
		if err := catalog.Add(page); err != nil {
			return nil, fmt.Errorf("%w (file %s)", err, source)
		}
	}
	return catalog, nil
}

func pageFromSchema(name string, schema *openapi3.Schema, source string) (Page, error) {
	pageName := strings.ToLower(strings.TrimSpace(name))
	required := make(map[string]bool, len(schema.Required))
	for _, key := range schema.Required {
		required[key] = true
	}

	type entry struct {
		key   string
		order int
		cfg   FieldConfig
	}
	entries := make([]entry, 0, len(schema.Properties))
	for key, prop := range schema.Properties {
		if prop == nil || prop.Value == nil {
			continue
		}
		cfg := fieldFromProperty(key, prop.Value)
		// the server assigns readOnly properties
		cfg.Required = required[key] && !prop.Value.ReadOnly
		order, ok := intExtension(prop.Value.Extensions, extensionOrder)
		if !ok {
			order = 1 << 20
		}
		entries = append(entries, entry{key: key, order: order, cfg: cfg})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].order != entries[j].order {
			return entries[i].order < entries[j].order
		}
		return entries[i].key < entries[j].key
	})

	raw := pageFile{
		Title:    schema.Title,
		Endpoint: stringExtension(schema.Extensions, extensionEndpoint),
		IDField:  stringExtension(schema.Extensions, extensionIDField),
		Fields:   make([]FieldConfig, len(entries)),
	}
	if order, ok := intExtension(schema.Extensions, extensionOrder); ok {
		raw.Order = order
	}
	for i, e := range entries {
		raw.Fields[i] = e.cfg
	}
	if raw.IDField == "" {
		raw.IDField = record.DefaultIDField
	}
	return normalisePage(pageName, raw, source)
}

func fieldFromProperty(key string, prop *openapi3.Schema) FieldConfig {
	cfg := FieldConfig{
		Key:         key,
		Label:       prop.Title,
		Description: prop.Description,
		Default:     prop.Default,
		Pattern:     strings.TrimSuffix(strings.TrimPrefix(prop.Pattern, "^"), "$"),
		Hidden:      prop.ReadOnly || boolExtension(prop.Extensions, extensionHidden),
	}

	kind := ""
	if prop.Type != nil && len(prop.Type.Slice()) > 0 {
		kind = prop.Type.Slice()[0]
	}
	switch kind {
	case openapi3.TypeInteger, openapi3.TypeNumber:
		cfg.Type = string(field.DataTypeNumber)
		if prop.Min != nil {
			v := *prop.Min
			cfg.Min = &v
		}
		if prop.Max != nil {
			v := *prop.Max
			cfg.Max = &v
		}
	case openapi3.TypeBoolean:
		cfg.Type = string(field.DataTypeRadio)
		cfg.Options = []field.Option{{Value: "true", Label: "Yes"}, {Value: "false", Label: "No"}}
	default:
		switch prop.Format {
		case "date":
			cfg.Type = string(field.DataTypeDate)
		case "time":
			cfg.Type = string(field.DataTypeTime)
		case "email":
			cfg.Type = string(field.DataTypeEmail)
		default:
			cfg.Type = string(field.DataTypeText)
		}
		if prop.MinLength > 0 {
			v := int(prop.MinLength)
			cfg.MinLength = &v
		}
		if prop.MaxLength != nil {
			v := int(*prop.MaxLength)
			cfg.MaxLength = &v
		}
	}

	if len(prop.Enum) > 0 {
		cfg.Type = string(field.DataTypeSelect)
		cfg.Options = make([]field.Option, 0, len(prop.Enum))
		for _, v := range prop.Enum {
			text := field.FromAny(v).String()
			cfg.Options = append(cfg.Options, field.Option{Value: text, Label: text})
		}
	}
	if override := stringExtension(prop.Extensions, extensionType); override != "" {
		cfg.Type = override
	}
	return cfg
}

func isObject(schema *openapi3.Schema) bool {
	if schema.Type != nil && schema.Type.Is(openapi3.TypeObject) {
		return true
	}
	return schema.Type == nil && len(schema.Properties) > 0
}

func stringExtension(ext map[string]any, key string) string {
	switch v := ext[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.RawMessage:
		var s string
		if json.Unmarshal(v, &s) == nil {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func intExtension(ext map[string]any, key string) (int, bool) {
	switch v := ext[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case json.RawMessage:
		n, err := strconv.Atoi(strings.TrimSpace(string(v)))
		return n, err == nil
	}
	return 0, false
}

func boolExtension(ext map[string]any, key string) bool {
	switch v := ext[key].(type) {
	case bool:
		return v
	case json.RawMessage:
		b, _ := strconv.ParseBool(strings.TrimSpace(string(v)))
		return b
	}
	return false
}

// Merge adds every page of other. Pages already present are kept.
func (c *Catalog) Merge(other *Catalog) []string {
	if other == nil {
		return nil
	}
	var skipped []string
	for _, page := range other.Pages() {
		if _, exists := c.pages[page.Name]; exists {
			skipped = append(skipped, page.Name)
			continue
		}
		c.pages[page.Name] = page
	}
	return skipped
}
