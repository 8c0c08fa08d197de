package fieldset

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/render"
)

// Page is the static configuration of one table/form page.
type Page struct {
	Name     string
	Title    string
	IDField  string
	Endpoint string
	PageSize int
	Order    int
	Actions  render.Actions
	Messages map[string]string
	Fields   field.Set
	Source   string
}

type documentFile struct {
	Pages map[string]pageFile `json:"pages" yaml:"pages"`
}

type pageFile struct {
	Title    string            `json:"title" yaml:"title"`
	IDField  string            `json:"id_field,omitempty" yaml:"id_field,omitempty"`
	Endpoint string            `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	PageSize int               `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	Order    int               `json:"order,omitempty" yaml:"order,omitempty"`
	Actions  *actionsFile      `json:"actions,omitempty" yaml:"actions,omitempty"`
	Messages map[string]string `json:"messages,omitempty" yaml:"messages,omitempty"`
	Fields   []FieldConfig     `json:"fields" yaml:"fields"`
}

type actionsFile struct {
	Add    *bool `json:"add,omitempty" yaml:"add,omitempty"`
	Edit   *bool `json:"edit,omitempty" yaml:"edit,omitempty"`
	Delete *bool `json:"delete,omitempty" yaml:"delete,omitempty"`
	View   *bool `json:"view,omitempty" yaml:"view,omitempty"`
}

// FieldConfig is the serialised form of a descriptor. The min/max/length/
// pattern shorthands expand into rules.
type FieldConfig struct {
	Key         string            `json:"key,omitempty" yaml:"key,omitempty"`
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	Type        string            `json:"type,omitempty" yaml:"type,omitempty"`
	Required    bool              `json:"required,omitempty" yaml:"required,omitempty"`
	Hidden      bool              `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Default     any               `json:"default,omitempty" yaml:"default,omitempty"`
	Placeholder string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Options     []field.Option    `json:"options,omitempty" yaml:"options,omitempty"`
	Min         *float64          `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64          `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength   *int              `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength   *int              `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Pattern     string            `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Rules       []field.Rule      `json:"rules,omitempty" yaml:"rules,omitempty"`
	Messages    map[string]string `json:"messages,omitempty" yaml:"messages,omitempty"`
}

func (a *actionsFile) resolve() render.Actions {
	out := render.Actions{Add: true, Edit: true, Delete: true, View: true}
	if a == nil {
		return out
	}
	pick := func(v *bool, def bool) bool {
		if v == nil {
			return def
		}
		return *v
	}
	out.Add = pick(a.Add, out.Add)
	out.Edit = pick(a.Edit, out.Edit)
	out.Delete = pick(a.Delete, out.Delete)
	out.View = pick(a.View, out.View)
	return out
}

// ErrHiddenRequired rejects a required field that users can never fill in.
var ErrHiddenRequired = errors.New("fieldset: hidden required field needs a default")

// Descriptor converts the configuration into a field descriptor.
func (c FieldConfig) Descriptor() (field.Descriptor, error) {
	dataType, err := field.ParseDataType(c.Type)
	if err != nil {
		return field.Descriptor{}, err
	}
	if c.Hidden && c.Required && c.Default == nil {
		return field.Descriptor{}, fmt.Errorf("%w: %q", ErrHiddenRequired, c.Key)
	}
	desc := field.Descriptor{
		Key:         c.Key,
		Label:       c.Label,
		DataType:    dataType,
		Options:     append([]field.Option(nil), c.Options...),
		Required:    c.Required,
		Hidden:      c.Hidden,
		Placeholder: c.Placeholder,
		Description: c.Description,
		Messages:    c.Messages,
	}
	for i := range desc.Options {
		if desc.Options[i].Label == "" {
			desc.Options[i].Label = desc.Options[i].Value
		}
	}
	if c.Min != nil {
		desc.Rules = append(desc.Rules, field.Min(*c.Min))
	}
	if c.Max != nil {
		desc.Rules = append(desc.Rules, field.Max(*c.Max))
	}
	if c.MinLength != nil {
		desc.Rules = append(desc.Rules, field.MinLength(*c.MinLength))
	}
	if c.MaxLength != nil {
		desc.Rules = append(desc.Rules, field.MaxLength(*c.MaxLength))
	}
	if c.Pattern != "" {
		desc.Rules = append(desc.Rules, field.Pattern(c.Pattern))
	}
	desc.Rules = append(desc.Rules, c.Rules...)
	if c.Default != nil {
		desc.Default = field.Conform(desc, field.FromAny(c.Default))
	}
	return desc, nil
}
