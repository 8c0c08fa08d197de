// Package mutation merges form results back into full records and hands them
// to the persistence collaborator.
package mutation

import (
	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/record"
)

// Merge overwrites the keys present in edited on a shallow copy of original.
// Keys only the original carries, such as the identifier or audit metadata,
// are kept as they are.
func Merge(original record.Record, edited record.Values) record.Record {
	out := make(record.Record, len(original)+len(edited))
	for k, v := range original {
		out[k] = v
	}
	for k, v := range edited {
		out[k] = v
	}
	return out
}

// MergeWith merges like Merge but ignores edited keys the set does not
// describe. With a nil original (an add) the identifier is left unset so the
// store can assign one.
func MergeWith(set field.Set, idField string, original record.Record, edited record.Values) record.Record {
	if idField == "" {
		idField = record.DefaultIDField
	}
	known := make(record.Values, len(edited))
	for k, v := range edited {
		if set.Has(k) {
			known[k] = v
		}
	}
	out := Merge(original, known)
	if original == nil {
		delete(out, idField)
	}
	return out
}
