package render

import (
	"sort"
	"strings"
)

// HiddenField is a hidden form input emitted alongside the visible controls.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for a name/value pair.
func Hidden(name, value string) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: value}
}

// HiddenControls lifts the hidden descriptors out of a control list so they
// still travel with the submission.
func HiddenControls(controls []Control) []HiddenField {
	var out []HiddenField
	for _, ctrl := range controls {
		if !ctrl.Hidden {
			continue
		}
		out = append(out, Hidden(ctrl.Key, ctrl.Value))
	}
	return out
}

// MergeHiddenFields combines field lists; later fields win on name
// collisions and empty names are dropped. The result is sorted by name.
func MergeHiddenFields(lists ...[]HiddenField) []HiddenField {
	merged := make(map[string]string)
	for _, list := range lists {
		for _, f := range list {
			name := strings.TrimSpace(f.Name)
			if name == "" {
				continue
			}
			merged[name] = f.Value
		}
	}
	if len(merged) == 0 {
		return nil
	}
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]HiddenField, 0, len(names))
	for _, name := range names {
		out = append(out, HiddenField{Name: name, Value: merged[name]})
	}
	return out
}
