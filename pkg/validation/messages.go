package validation

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-careforms/pkg/field"
)

var defaultMessages = map[string]string{
	field.RuleRequired:  "This field is required",
	field.RuleEmail:     "Invalid email format",
	field.RulePattern:   "Invalid format",
	field.RuleMinLength: "Minimum length not met",
	field.RuleMaxLength: "Maximum length exceeded",
	field.RuleMin:       "Value must be at least {value}",
	field.RuleMax:       "Value must be at most {value}",
	field.FailureType:   "Invalid value",
}

// DefaultMessage returns the built-in text for a failure key.
func DefaultMessage(key string) (string, bool) {
	msg, ok := defaultMessages[key]
	return msg, ok
}

// Messages resolves failure keys to text: overrides first, then the built-in
// defaults, then a generated fallback.
type Messages struct {
	overrides map[string]string
}

// NewMessages merges the override maps; later maps win.
func NewMessages(overrides ...map[string]string) Messages {
	var m Messages
	for _, o := range overrides {
		m = m.With(o)
	}
	return m
}

// With returns a copy of m with additional overrides applied.
func (m Messages) With(overrides map[string]string) Messages {
	if len(overrides) == 0 {
		return m
	}
	merged := make(map[string]string, len(m.overrides)+len(overrides))
	for k, v := range m.overrides {
		merged[k] = v
	}
	for k, v := range overrides {
		if strings.TrimSpace(v) == "" {
			continue
		}
		merged[k] = v
	}
	return Messages{overrides: merged}
}

func (m Messages) Resolve(f field.Failure) string {
	msg, ok := m.overrides[f.Key]
	if !ok {
		msg, ok = defaultMessages[f.Key]
	}
	if !ok {
		return fmt.Sprintf("Validation failed (%s)", f.Key)
	}
	return interpolate(msg, f.Params)
}

// ResolveAll resolves every failure, dropping blanks and duplicates while
// preserving order.
func (m Messages) ResolveAll(failures []field.Failure) []string {
	if len(failures) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(failures))
	out := make([]string, 0, len(failures))
	for _, f := range failures {
		msg := strings.TrimSpace(m.Resolve(f))
		if msg == "" {
			continue
		}
		if _, dup := seen[msg]; dup {
			continue
		}
		seen[msg] = struct{}{}
		out = append(out, msg)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func interpolate(msg string, params map[string]string) string {
	if len(params) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
