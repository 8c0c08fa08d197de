package table

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/record"
	"github.com/goliatone/go-careforms/pkg/render"
)

// Sort orders rows by a column. Empty values sort last in both directions.
func (t *Table) Sort(key string, desc bool) error {
	if key != "" && !t.set.Has(key) && key != t.idField {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, key)
	}
	t.sortKey = key
	t.sortDesc = desc
	t.page = 1
	return nil
}

// Filter keeps rows whose visible cells contain query, case-insensitively.
func (t *Table) Filter(query string) {
	t.query = strings.TrimSpace(query)
	t.page = 1
}

// SetPage selects a 1-based page; out-of-range pages are clamped on render.
func (t *Table) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	t.page = n
}

// Screen builds the page view model for the current state.
func (t *Table) Screen(page string) render.Screen {
	rows := t.rows()
	total := len(rows)
	pageCount := (total + t.pageSize - 1) / t.pageSize
	if pageCount == 0 {
		pageCount = 1
	}
	current := t.page
	if current > pageCount {
		current = pageCount
	}
	start := (current - 1) * t.pageSize
	end := start + t.pageSize
	if end > total {
		end = total
	}

	screen := render.Screen{
		Page:    page,
		Title:   t.title,
		Heading: t.Title(),
		Mode:    string(t.mode),
		Columns: t.Columns(),
		Rows:    rows[start:end],
		Actions: t.actions,
		Pagination: render.Pagination{
			Page:      current,
			PageCount: pageCount,
			PageSize:  t.pageSize,
			Total:     total,
		},
		Query:    t.query,
		SortKey:  t.sortKey,
		SortDesc: t.sortDesc,
	}
	if t.form != nil {
		screen.Form = t.form.View(t.selected.ID(t.idField))
	}
	return screen
}

func (t *Table) rows() []render.Row {
	visible := t.set.Visible()
	records := t.ordered()
	needle := strings.ToLower(t.query)

	rows := make([]render.Row, 0, len(records))
	for _, r := range records {
		row := render.Row{ID: r.ID(t.idField), Cells: make([]render.Cell, 0, len(visible))}
		match := needle == ""
		for _, desc := range visible {
			text := render.Display(desc, r[desc.Key])
			if !match && strings.Contains(strings.ToLower(text), needle) {
				match = true
			}
			row.Cells = append(row.Cells, render.Cell{Key: desc.Key, Text: text})
		}
		if match {
			rows = append(rows, row)
		}
	}
	return rows
}

func (t *Table) ordered() []record.Record {
	out := make([]record.Record, len(t.records))
	copy(out, t.records)
	if t.sortKey == "" {
		return out
	}
	desc, ok := t.set.Lookup(t.sortKey)
	if !ok {
		desc = field.Descriptor{Key: t.sortKey, DataType: field.DataTypeText}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i][t.sortKey], out[j][t.sortKey]
		switch {
		case a.IsEmpty() && b.IsEmpty():
			return false
		case a.IsEmpty():
			return false
		case b.IsEmpty():
			return true
		}
		c := compare(desc, a, b)
		if t.sortDesc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compare(desc field.Descriptor, a, b field.Value) int {
	if x, ok := a.Number(); ok {
		if y, ok := b.Number(); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	if x, ok := a.Time(); ok {
		if y, ok := b.Time(); ok {
			return x.Compare(y)
		}
	}
	return strings.Compare(strings.ToLower(render.Display(desc, a)), strings.ToLower(render.Display(desc, b)))
}
