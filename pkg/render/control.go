package render

import (
	"strings"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/validation"
)

// SSNMask is the fixed input mask applied to ssn fields.
const SSNMask = "000-00-0000"

// Widget names the control family a descriptor renders as.
type Widget string

const (
	WidgetInput    Widget = "input"
	WidgetTextarea Widget = "textarea"
	WidgetSelect   Widget = "select"
	WidgetRadio    Widget = "radio"
)

// OptionState is one select/radio entry with its selection flag.
type OptionState struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Control is the renderer-neutral description of one input.
type Control struct {
	Key         string            `json:"key"`
	ID          string            `json:"id"`
	Label       string            `json:"label"`
	Widget      Widget            `json:"widget"`
	InputType   string            `json:"input_type"`
	Value       string            `json:"value"`
	Options     []OptionState     `json:"options,omitempty"`
	Mask        string            `json:"mask,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Required    bool              `json:"required"`
	ReadOnly    bool              `json:"read_only"`
	Hidden      bool              `json:"hidden"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Failures    []field.Failure   `json:"-"`
	Errors      []string          `json:"errors,omitempty"`
}

// Invalid reports whether any failure is active, visible or not.
func (c Control) Invalid() bool { return len(c.Failures) > 0 }

// FieldOption tweaks a single Field call.
type FieldOption func(*fieldConfig)

type fieldConfig struct {
	messages validation.Messages
	visible  bool
	readOnly bool
	parse    *field.Failure
}

// WithMessages sets the page-level message overrides. Descriptor overrides
// still take precedence.
func WithMessages(messages validation.Messages) FieldOption {
	return func(cfg *fieldConfig) { cfg.messages = messages }
}

// WithErrorsVisible controls whether failures are resolved into Errors. Forms
// pass the control's touched flag.
func WithErrorsVisible(visible bool) FieldOption {
	return func(cfg *fieldConfig) { cfg.visible = visible }
}

func WithReadOnly(readOnly bool) FieldOption {
	return func(cfg *fieldConfig) { cfg.readOnly = readOnly }
}

// WithParseFailure reports a failed input conversion from Change.
func WithParseFailure(failure *field.Failure) FieldOption {
	return func(cfg *fieldConfig) { cfg.parse = failure }
}

// Field renders a descriptor and value into a Control. It is a pure function
// of its arguments.
func Field(d field.Descriptor, v field.Value, opts ...FieldOption) Control {
	cfg := fieldConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	ctrl := Control{
		Key:         d.Key,
		ID:          ControlID(d.Key),
		Label:       d.Label,
		Widget:      widgetFor(d.DataType),
		InputType:   inputTypeFor(d.DataType),
		Value:       field.Format(d, v),
		Placeholder: d.Placeholder,
		Description: d.Description,
		Required:    d.Required,
		ReadOnly:    cfg.readOnly,
		Hidden:      d.Hidden,
		Attributes:  attributesFor(d),
	}

	switch d.DataType {
	case field.DataTypeSelect, field.DataTypeRadio:
		current, _ := v.Text()
		if !d.HasOption(current) {
			current = ""
			ctrl.Value = ""
		}
		ctrl.Options = make([]OptionState, len(d.Options))
		for i, opt := range d.Options {
			label := opt.Label
			if label == "" {
				label = opt.Value
			}
			ctrl.Options[i] = OptionState{Value: opt.Value, Label: label, Selected: current != "" && opt.Value == current}
		}
	case field.DataTypeSSN:
		ctrl.Mask = SSNMask
		ctrl.Value = MaskSSN(ctrl.Value)
	}

	if cfg.parse != nil {
		ctrl.Failures = append(ctrl.Failures, *cfg.parse)
	}
	ctrl.Failures = append(ctrl.Failures, validation.Validate(d, v)...)
	if cfg.visible && len(ctrl.Failures) > 0 {
		ctrl.Errors = cfg.messages.With(d.Messages).ResolveAll(ctrl.Failures)
	}
	return ctrl
}

// Change converts raw control input into a value. Select and radio input
// outside the option list is treated as an empty selection. Textarea line
// endings are normalised to \n, as browsers post CRLF.
func Change(d field.Descriptor, raw string) (field.Value, *field.Failure) {
	if d.DataType == field.DataTypeTextarea {
		raw = strings.ReplaceAll(raw, "\r\n", "\n")
	}
	if d.DataType.HasOptions() {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || !d.HasOption(trimmed) {
			return field.Text(""), nil
		}
		return field.OptionValue(trimmed), nil
	}
	return field.ParseInput(d, raw)
}

// Display returns the read-only text for a table cell or detail view.
func Display(d field.Descriptor, v field.Value) string {
	switch d.DataType {
	case field.DataTypeSelect, field.DataTypeRadio:
		current, _ := v.Text()
		if current == "" {
			current = v.String()
		}
		label, ok := d.OptionLabel(current)
		if !ok {
			return ""
		}
		if label == "" {
			return current
		}
		return label
	case field.DataTypeSSN:
		return MaskSSN(v.String())
	default:
		if v.Kind() == field.KindRaw {
			return ""
		}
		return field.Format(d, v)
	}
}

// MaskSSN formats nine digits as 000-00-0000. Anything else is returned as
// given.
func MaskSSN(s string) string {
	digits := make([]byte, 0, 9)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, c)
		case c == '-' || c == ' ':
		default:
			return s
		}
	}
	if len(digits) != 9 {
		return s
	}
	return string(digits[:3]) + "-" + string(digits[3:5]) + "-" + string(digits[5:])
}

// ControlID builds the DOM id for a field key.
func ControlID(key string) string {
	var b strings.Builder
	b.WriteString("cf-")
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

func widgetFor(t field.DataType) Widget {
	switch t {
	case field.DataTypeSelect:
		return WidgetSelect
	case field.DataTypeRadio:
		return WidgetRadio
	case field.DataTypeTextarea:
		return WidgetTextarea
	default:
		return WidgetInput
	}
}

func inputTypeFor(t field.DataType) string {
	switch t {
	case field.DataTypeNumber, field.DataTypeDate, field.DataTypeTime, field.DataTypeEmail, field.DataTypeTel:
		return string(t)
	default:
		return "text"
	}
}

var ruleAttributes = map[string]string{
	field.RuleMin:       "min",
	field.RuleMax:       "max",
	field.RuleMinLength: "minlength",
	field.RuleMaxLength: "maxlength",
	field.RulePattern:   "pattern",
}

func attributesFor(d field.Descriptor) map[string]string {
	attrs := make(map[string]string)
	for _, rule := range d.Rules {
		name, ok := ruleAttributes[rule.Kind]
		if !ok {
			continue
		}
		if param := rule.Param(); param != "" {
			attrs[name] = param
		}
	}
	if d.DataType == field.DataTypeSSN {
		attrs["inputmode"] = "numeric"
		attrs["data-mask"] = SSNMask
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
