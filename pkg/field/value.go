package field

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindNumber
	KindDate
	KindBool
	KindOption
	// KindRaw carries opaque JSON for record properties no descriptor
	// describes, such as audit metadata or nested contact blocks.
	KindRaw
)

var kindNames = [...]string{
	KindNull:   "null",
	KindText:   "text",
	KindNumber: "number",
	KindDate:   "date",
	KindBool:   "bool",
	KindOption: "option",
	KindRaw:    "raw",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Layouts used to read and print date values.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Value is a tagged record value. The zero Value is Null.
type Value struct {
	kind   Kind
	text   string
	number float64
	date   time.Time
	layout string
	flag   bool
	raw    json.RawMessage
}

// Null returns the empty value.
func Null() Value { return Value{} }

// Text wraps a free-form string.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number wraps a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, number: n} }

// Date wraps a calendar date.
func Date(t time.Time) Value { return Value{kind: KindDate, date: t, layout: DateLayout} }

// TimeOfDay wraps a wall-clock time.
func TimeOfDay(t time.Time) Value { return Value{kind: KindDate, date: t, layout: TimeLayout} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// OptionValue wraps the value of a select or radio choice.
func OptionValue(v string) Value { return Value{kind: KindOption, text: v} }

// Raw wraps an opaque JSON document. Empty input or a JSON null yields Null.
func Raw(msg json.RawMessage) Value {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Null()
	}
	cp := make(json.RawMessage, len(trimmed))
	copy(cp, trimmed)
	return Value{kind: KindRaw, raw: cp}
}

// FromAny converts a decoded JSON or plain Go value into a Value.
func FromAny(in any) Value {
	switch v := in.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case string:
		return Text(v)
	case bool:
		return Bool(v)
	case float64:
		return Number(v)
	case float32:
		return Number(float64(v))
	case int:
		return Number(float64(v))
	case int32:
		return Number(float64(v))
	case int64:
		return Number(float64(v))
	case json.Number:
		if n, err := v.Float64(); err == nil {
			return Number(n)
		}
		return Text(v.String())
	case time.Time:
		return Date(v)
	case json.RawMessage:
		var out Value
		if err := out.UnmarshalJSON(v); err != nil {
			return Raw(v)
		}
		return out
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return Text(fmt.Sprint(v))
		}
		return Raw(b)
	}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether the value counts as "no input": null, or text and
// options that are blank after trimming.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindText, KindOption:
		return strings.TrimSpace(v.text) == ""
	default:
		return false
	}
}

// Text returns the string held by text and option values.
func (v Value) Text() (string, bool) {
	if v.kind == KindText || v.kind == KindOption {
		return v.text, true
	}
	return "", false
}

func (v Value) Number() (float64, bool) {
	return v.number, v.kind == KindNumber
}

func (v Value) Time() (time.Time, bool) {
	return v.date, v.kind == KindDate
}

func (v Value) Bool() (bool, bool) {
	return v.flag, v.kind == KindBool
}

func (v Value) String() string {
	switch v.kind {
	case KindText, KindOption:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case KindDate:
		layout := v.layout
		if layout == "" {
			layout = DateLayout
		}
		return v.date.Format(layout)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindRaw:
		return string(v.raw)
	default:
		return ""
	}
}

// Equal compares kind and content. Dates compare by their printed form so a
// date read back from storage equals the value that was written.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindText, KindOption:
		return v.text == other.text
	case KindNumber:
		return v.number == other.number
	case KindDate:
		return v.String() == other.String()
	case KindBool:
		return v.flag == other.flag
	case KindRaw:
		return bytes.Equal(v.raw, other.raw)
	default:
		return false
	}
}

// Interface returns the plain Go form used when building JSON documents.
func (v Value) Interface() any {
	switch v.kind {
	case KindText, KindOption, KindDate:
		return v.String()
	case KindNumber:
		return v.number
	case KindBool:
		return v.flag
	case KindRaw:
		cp := make(json.RawMessage, len(v.raw))
		copy(cp, v.raw)
		return cp
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindRaw:
		return append([]byte(nil), v.raw...), nil
	default:
		return json.Marshal(v.Interface())
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*v = Null()
		return nil
	}
	switch trimmed[0] {
	case 'n':
		*v = Null()
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("field: decode text value: %w", err)
		}
		*v = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return fmt.Errorf("field: decode bool value: %w", err)
		}
		*v = Bool(b)
	case '{', '[':
		*v = Raw(trimmed)
	default:
		var n float64
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("field: decode number value: %w", err)
		}
		*v = Number(n)
	}
	return nil
}
