package field

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyKey        = errors.New("field: descriptor key is required")
	ErrDuplicateKey    = errors.New("field: duplicate descriptor key")
	ErrMissingOptions  = errors.New("field: select and radio descriptors require options")
	ErrUnknownDataType = errors.New("field: unknown data type")
)

// Set is an immutable, ordered list of descriptors owned by one page.
// Descriptors are copied in and out so callers never share option slices or
// message maps across pages.
type Set struct {
	descriptors []Descriptor
	index       map[string]int
}

// NewSet validates and normalises descriptors. A missing key is derived from
// the label; a missing label from the key.
func NewSet(descriptors ...Descriptor) (Set, error) {
	set := Set{
		descriptors: make([]Descriptor, 0, len(descriptors)),
		index:       make(map[string]int, len(descriptors)),
	}
	for i, desc := range descriptors {
		desc = desc.clone()
		desc.Key = strings.TrimSpace(desc.Key)
		if desc.Key == "" {
			desc.Key = KeyFromTitle(desc.Label)
		}
		if desc.Key == "" {
			return Set{}, fmt.Errorf("%w (descriptor %d)", ErrEmptyKey, i)
		}
		if _, exists := set.index[desc.Key]; exists {
			return Set{}, fmt.Errorf("%w: %q", ErrDuplicateKey, desc.Key)
		}
		dataType, err := ParseDataType(string(desc.DataType))
		if err != nil {
			return Set{}, fmt.Errorf("field %q: %w", desc.Key, err)
		}
		desc.DataType = dataType
		if dataType.HasOptions() && len(desc.Options) == 0 {
			return Set{}, fmt.Errorf("%w: %q", ErrMissingOptions, desc.Key)
		}
		if strings.TrimSpace(desc.Label) == "" {
			desc.Label = DefaultLabeler(desc.Key)
		}
		set.index[desc.Key] = len(set.descriptors)
		set.descriptors = append(set.descriptors, desc)
	}
	return set, nil
}

// MustSet is NewSet for static page configuration; it panics on error.
func MustSet(descriptors ...Descriptor) Set {
	set, err := NewSet(descriptors...)
	if err != nil {
		panic(err)
	}
	return set
}

func (s Set) Len() int { return len(s.descriptors) }

// Descriptors returns a copy of every descriptor in order.
func (s Set) Descriptors() []Descriptor {
	out := make([]Descriptor, len(s.descriptors))
	for i, desc := range s.descriptors {
		out[i] = desc.clone()
	}
	return out
}

// Visible returns the non-hidden descriptors in order.
func (s Set) Visible() []Descriptor {
	out := make([]Descriptor, 0, len(s.descriptors))
	for _, desc := range s.descriptors {
		if desc.Hidden {
			continue
		}
		out = append(out, desc.clone())
	}
	return out
}

func (s Set) Lookup(key string) (Descriptor, bool) {
	idx, ok := s.index[key]
	if !ok {
		return Descriptor{}, false
	}
	return s.descriptors[idx].clone(), true
}

func (s Set) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

func (s Set) Keys() []string {
	keys := make([]string, len(s.descriptors))
	for i, desc := range s.descriptors {
		keys[i] = desc.Key
	}
	return keys
}
