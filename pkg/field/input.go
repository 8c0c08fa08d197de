package field

import (
	"strconv"
	"strings"
	"time"
)

// Blank returns the add-mode value for a descriptor: its default when one is
// configured, null for numbers and the empty string for everything else.
func Blank(d Descriptor) Value {
	if !d.Default.IsNull() {
		return d.Default
	}
	return empty(d)
}

func empty(d Descriptor) Value {
	if d.DataType.Numeric() {
		return Null()
	}
	return Text("")
}

// ParseInput converts raw control input into the descriptor's variant. Input
// that cannot be converted is kept as text alongside a type failure so the
// control can echo what was typed.
func ParseInput(d Descriptor, raw string) (Value, *Failure) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return empty(d), nil
	}
	switch d.DataType {
	case DataTypeNumber:
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return Text(raw), &Failure{Key: FailureType}
		}
		return Number(n), nil
	case DataTypeDate:
		t, err := parseDate(trimmed)
		if err != nil {
			return Text(raw), &Failure{Key: FailureType}
		}
		return Date(t), nil
	case DataTypeTime:
		t, err := time.Parse(TimeLayout, trimmed)
		if err != nil {
			return Text(raw), &Failure{Key: FailureType}
		}
		return TimeOfDay(t), nil
	case DataTypeSelect, DataTypeRadio:
		return OptionValue(trimmed), nil
	case DataTypeSSN:
		if digits, ok := ssnDigits(trimmed); ok {
			return Text(digits), nil
		}
		return Text(raw), nil
	default:
		return Text(raw), nil
	}
}

// Conform converts a stored value into the variant the descriptor expects.
// Values that do not convert are returned unchanged.
func Conform(d Descriptor, v Value) Value {
	switch d.DataType {
	case DataTypeNumber:
		if s, ok := v.Text(); ok {
			if strings.TrimSpace(s) == "" {
				return Null()
			}
			if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return Number(n)
			}
		}
	case DataTypeDate:
		if s, ok := v.Text(); ok && strings.TrimSpace(s) != "" {
			if t, err := parseDate(strings.TrimSpace(s)); err == nil {
				return Date(t)
			}
		}
	case DataTypeTime:
		if s, ok := v.Text(); ok && strings.TrimSpace(s) != "" {
			if t, err := time.Parse(TimeLayout, strings.TrimSpace(s)); err == nil {
				return TimeOfDay(t)
			}
		}
	case DataTypeSSN:
		if s, ok := v.Text(); ok {
			if digits, ok := ssnDigits(strings.TrimSpace(s)); ok {
				return Text(digits)
			}
		}
	case DataTypeSelect, DataTypeRadio:
		if v.Kind() == KindText && v.text != "" {
			return OptionValue(v.text)
		}
		if v.Kind() == KindNumber || v.Kind() == KindBool {
			return OptionValue(v.String())
		}
	}
	return v
}

// Format returns the text a control shows for a value.
func Format(_ Descriptor, v Value) string {
	return v.String()
}

// ssnDigits strips the display mask from a social security number. It
// reports false unless exactly nine digits remain.
func ssnDigits(s string) (string, bool) {
	digits := make([]byte, 0, 9)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits = append(digits, c)
		case c == '-' || c == ' ':
		default:
			return "", false
		}
	}
	return string(digits), len(digits) == 9
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
