// Package record holds the opaque key/value records exchanged between pages
// and persistence back ends.
package record

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/goliatone/go-careforms/pkg/field"
)

// DefaultIDField names the identifier property when a page does not set one.
const DefaultIDField = "id"

// Record maps a property key to a tagged value. Records are treated as
// values: every hand-off clones.
type Record map[string]field.Value

// Values is the plain key/value result a form produces on submit.
type Values map[string]field.Value

func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Get returns the value under key or Null.
func (r Record) Get(key string) field.Value {
	return r[key]
}

// ID returns the identifier as text, or "" when absent.
func (r Record) ID(idField string) string {
	if idField == "" {
		idField = DefaultIDField
	}
	v, ok := r[idField]
	if !ok || v.IsNull() {
		return ""
	}
	return v.String()
}

// Equal compares two records key by key.
func (r Record) Equal(other Record) bool {
	if len(r) != len(other) {
		return false
	}
	for k, v := range r {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Keys returns the sorted property keys.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromMap converts a decoded JSON object.
func FromMap(in map[string]any) Record {
	out := make(Record, len(in))
	for k, v := range in {
		out[k] = field.FromAny(v)
	}
	return out
}

// Map returns the plain form used to build JSON documents.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v.Interface()
	}
	return out
}

// Decode parses one JSON object.
func Decode(data []byte) (Record, error) {
	var out Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("record: decode: %w", err)
	}
	if out == nil {
		out = Record{}
	}
	return out, nil
}

// DecodeList parses a JSON array of objects.
func DecodeList(data []byte) ([]Record, error) {
	var out []Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("record: decode list: %w", err)
	}
	return out, nil
}

// Conform converts the properties described by set into their declared
// variants. Other properties are left untouched.
func Conform(set field.Set, r Record) Record {
	out := r.Clone()
	if out == nil {
		out = Record{}
	}
	for _, desc := range set.Descriptors() {
		if v, ok := out[desc.Key]; ok {
			out[desc.Key] = field.Conform(desc, v)
		}
	}
	return out
}

// ConformAll applies Conform to every record.
func ConformAll(set field.Set, records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = Conform(set, r)
	}
	return out
}
