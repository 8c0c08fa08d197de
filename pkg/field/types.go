package field

import (
	"fmt"
	"strconv"
	"strings"
)

// DataType selects the control and the default validation for a descriptor.
type DataType string

const (
	DataTypeText     DataType = "text"
	DataTypeNumber   DataType = "number"
	DataTypeDate     DataType = "date"
	DataTypeTime     DataType = "time"
	DataTypeEmail    DataType = "email"
	DataTypeTel      DataType = "tel"
	DataTypeSSN      DataType = "ssn"
	DataTypeSelect   DataType = "select"
	DataTypeRadio    DataType = "radio"
	DataTypeTextarea DataType = "textarea"
	DataTypeCustom   DataType = "custom"
)

var knownDataTypes = map[DataType]struct{}{
	DataTypeText:     {},
	DataTypeNumber:   {},
	DataTypeDate:     {},
	DataTypeTime:     {},
	DataTypeEmail:    {},
	DataTypeTel:      {},
	DataTypeSSN:      {},
	DataTypeSelect:   {},
	DataTypeRadio:    {},
	DataTypeTextarea: {},
	DataTypeCustom:   {},
}

// ParseDataType normalises a configuration string. An empty string means
// text.
func ParseDataType(raw string) (DataType, error) {
	trimmed := DataType(strings.ToLower(strings.TrimSpace(raw)))
	if trimmed == "" {
		return DataTypeText, nil
	}
	if _, ok := knownDataTypes[trimmed]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDataType, raw)
	}
	return trimmed, nil
}

func (t DataType) HasOptions() bool { return t == DataTypeSelect || t == DataTypeRadio }
func (t DataType) Numeric() bool    { return t == DataTypeNumber }
func (t DataType) Temporal() bool   { return t == DataTypeDate || t == DataTypeTime }

// Option is one entry of a select or radio list.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Rule kinds recognised by the validation package.
const (
	RuleRequired  = "required"
	RuleEmail     = "email"
	RulePattern   = "pattern"
	RuleMin       = "min"
	RuleMax       = "max"
	RuleMinLength = "minLength"
	RuleMaxLength = "maxLength"
)

// FailureType is reported when raw input cannot be converted into the
// descriptor's value variant.
const FailureType = "type"

// Rule is a declarative constraint. The parameter lives under "value"; for
// pattern rules "pattern" is accepted as well.
type Rule struct {
	Kind   string            `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Param returns the rule argument.
func (r Rule) Param() string {
	if r.Params == nil {
		return ""
	}
	if v, ok := r.Params["value"]; ok {
		return strings.TrimSpace(v)
	}
	if r.Kind == RulePattern {
		return strings.TrimSpace(r.Params["pattern"])
	}
	return ""
}

func Required() Rule { return Rule{Kind: RuleRequired} }
func Email() Rule    { return Rule{Kind: RuleEmail} }

func Pattern(expr string) Rule {
	return Rule{Kind: RulePattern, Params: map[string]string{"value": expr}}
}

func Min(n float64) Rule {
	return Rule{Kind: RuleMin, Params: map[string]string{"value": strconv.FormatFloat(n, 'f', -1, 64)}}
}

func Max(n float64) Rule {
	return Rule{Kind: RuleMax, Params: map[string]string{"value": strconv.FormatFloat(n, 'f', -1, 64)}}
}

func MinLength(n int) Rule {
	return Rule{Kind: RuleMinLength, Params: map[string]string{"value": strconv.Itoa(n)}}
}

func MaxLength(n int) Rule {
	return Rule{Kind: RuleMaxLength, Params: map[string]string{"value": strconv.Itoa(n)}}
}

// Failure is one active validation failure on a field.
type Failure struct {
	Key    string
	Params map[string]string
}

// Check is a code-level validator. It returns nil when the value passes.
type Check func(Value) *Failure

// Descriptor describes one data field of a page.
type Descriptor struct {
	Key         string
	Label       string
	DataType    DataType
	Options     []Option
	Required    bool
	Rules       []Rule
	Checks      []Check
	Hidden      bool
	Default     Value
	Placeholder string
	Description string
	// Messages overrides the default error text per failure key.
	Messages map[string]string
}

// HasOption reports whether value is one of the descriptor's options.
func (d Descriptor) HasOption(value string) bool {
	_, ok := d.OptionLabel(value)
	return ok
}

// OptionLabel returns the label for an option value.
func (d Descriptor) OptionLabel(value string) (string, bool) {
	for _, opt := range d.Options {
		if opt.Value == value {
			return opt.Label, true
		}
	}
	return "", false
}

func (d Descriptor) clone() Descriptor {
	out := d
	if d.Options != nil {
		out.Options = append([]Option(nil), d.Options...)
	}
	if d.Rules != nil {
		out.Rules = make([]Rule, len(d.Rules))
		for i, rule := range d.Rules {
			out.Rules[i] = Rule{Kind: rule.Kind, Params: cloneStringMap(rule.Params)}
		}
	}
	if d.Checks != nil {
		out.Checks = append([]Check(nil), d.Checks...)
	}
	out.Messages = cloneStringMap(d.Messages)
	return out
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
