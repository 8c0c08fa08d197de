// Package choices searches the option lists of select and radio fields, for
// inputs that look up options as the user types.
package choices

import (
	"cmp"
	"slices"
	"strings"

	"github.com/goliatone/go-careforms/pkg/field"
)

// EmptySearchMode decides what a blank query returns.
type EmptySearchMode string

const (
	EmptySearchNone EmptySearchMode = "none"
	// EmptySearchTop returns the first options in declaration order.
	EmptySearchTop EmptySearchMode = "top"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Options bounds a search.
type Options struct {
	DefaultLimit    int
	MaxLimit        int
	EmptySearchMode EmptySearchMode
}

type OptionFn func(*Options)

func WithLimits(def, most int) OptionFn {
	return func(o *Options) { o.DefaultLimit, o.MaxLimit = def, most }
}

func WithEmptySearch(mode EmptySearchMode) OptionFn {
	return func(o *Options) { o.EmptySearchMode = mode }
}

// NewOptions applies fns over the defaults (50 results, at most 200, blank
// queries list the top options). Non-positive limits fall back to the
// defaults and the default limit never exceeds the maximum.
func NewOptions(fns ...OptionFn) Options {
	var o Options
	for _, fn := range fns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.MaxLimit <= 0 {
		o.MaxLimit = maxLimit
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = defaultLimit
	}
	o.DefaultLimit = min(o.DefaultLimit, o.MaxLimit)
	if o.EmptySearchMode == "" {
		o.EmptySearchMode = EmptySearchTop
	}
	return o
}

// limit resolves a requested result count.
func (o Options) limit(requested int) int {
	if requested <= 0 {
		requested = o.DefaultLimit
	}
	return min(requested, o.MaxLimit)
}

// Search returns the options whose label or value contains query, case
// insensitively. Label prefix matches come first; ties keep declaration
// order.
func Search(options []field.Option, query string, limit int, opts Options) []field.Option {
	n := opts.limit(limit)
	if n <= 0 {
		return nil
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		if opts.EmptySearchMode != EmptySearchTop {
			return nil
		}
		return slices.Clone(options[:min(n, len(options))])
	}

	type ranked struct {
		option field.Option
		rank   int
	}
	var hits []ranked
	for _, opt := range options {
		label := strings.ToLower(opt.Label)
		switch {
		case strings.HasPrefix(label, needle):
			hits = append(hits, ranked{opt, 0})
		case strings.Contains(label, needle), strings.Contains(strings.ToLower(opt.Value), needle):
			hits = append(hits, ranked{opt, 1})
		}
	}
	slices.SortStableFunc(hits, func(a, b ranked) int { return cmp.Compare(a.rank, b.rank) })

	out := make([]field.Option, 0, min(n, len(hits)))
	for _, h := range hits[:min(n, len(hits))] {
		out = append(out, h.option)
	}
	return out
}
