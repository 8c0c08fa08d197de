package fieldset

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-careforms/pkg/field"
)

// Encode writes the catalog in the YAML layout LoadFS reads.
func Encode(c *Catalog) ([]byte, error) {
	doc := documentFile{Pages: make(map[string]pageFile)}
	for _, page := range c.Pages() {
		doc.Pages[page.Name] = exportPage(page)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("fieldset: encode: %w", err)
	}
	return out, nil
}

func exportPage(page Page) pageFile {
	add, edit, del, view := page.Actions.Add, page.Actions.Edit, page.Actions.Delete, page.Actions.View
	out := pageFile{
		Title:    page.Title,
		IDField:  page.IDField,
		Endpoint: page.Endpoint,
		PageSize: page.PageSize,
		Order:    page.Order,
		Actions:  &actionsFile{Add: &add, Edit: &edit, Delete: &del, View: &view},
		Messages: page.Messages,
	}
	for _, d := range page.Fields.Descriptors() {
		out.Fields = append(out.Fields, exportField(d))
	}
	return out
}

func exportField(d field.Descriptor) FieldConfig {
	cfg := FieldConfig{
		Key:         d.Key,
		Label:       d.Label,
		Type:        string(d.DataType),
		Required:    d.Required,
		Hidden:      d.Hidden,
		Placeholder: d.Placeholder,
		Description: d.Description,
		Options:     d.Options,
		Rules:       d.Rules,
		Messages:    d.Messages,
	}
	if !d.Default.IsNull() {
		cfg.Default = d.Default.String()
	}
	return cfg
}
