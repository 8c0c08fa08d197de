// Package table renders a record collection as rows and columns and
// coordinates the add, edit, view and delete flows around a single form
// session.
package table

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/form"
	"github.com/goliatone/go-careforms/pkg/record"
	"github.com/goliatone/go-careforms/pkg/render"
	"github.com/goliatone/go-careforms/pkg/validation"
)

// Mode is the table state.
type Mode string

const (
	ModeView   Mode = "view"
	ModeAdd    Mode = "add"
	ModeEdit   Mode = "edit"
	ModeDetail Mode = "detail"
)

const (
	// ActionsColumn is the key of the synthetic actions column.
	ActionsColumn = "actions"
	// DeletePrompt is the question put to the Confirmer before a delete.
	DeletePrompt = "Are you sure you want to delete this record?"

	DefaultPageSize = 20
	MaxPageSize     = 100
)

var (
	ErrRecordNotFound = errors.New("table: record not found")
	ErrActionDisabled = errors.New("table: action disabled")
	ErrNoSelection    = errors.New("table: no record selected")
	ErrUnknownColumn  = errors.New("table: unknown column")
)

// Actions lists the enabled row and header actions.
type Actions = render.Actions

// AllActions enables add, edit, delete and view.
func AllActions() Actions {
	return Actions{Add: true, Edit: true, Delete: true, View: true}
}

// Confirmer asks the user a blocking yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

func (fn ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return fn(ctx, message)
}

// Answer returns a Confirmer that always gives the same answer. HTTP
// handlers use it once the confirmation page has been posted.
func Answer(yes bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) (bool, error) { return yes, nil })
}

// Intents receives the outcome of form sessions and confirmed deletes.
// original is nil for records created in add mode.
type Intents interface {
	Save(original record.Record, edited record.Values)
	Delete(id string)
}

type discard struct{}

func (discard) Save(record.Record, record.Values) {}
func (discard) Delete(string)                     {}

// Option configures a Table.
type Option func(*Table)

func WithTitle(title string) Option {
	return func(t *Table) { t.title = title }
}

// WithIDField sets the identifier property. Defaults to "id".
func WithIDField(name string) Option {
	return func(t *Table) {
		if name != "" {
			t.idField = name
		}
	}
}

func WithActions(actions Actions) Option {
	return func(t *Table) { t.actions = actions }
}

func WithConfirmer(c Confirmer) Option {
	return func(t *Table) { t.confirmer = c }
}

func WithIntents(i Intents) Option {
	return func(t *Table) {
		if i != nil {
			t.intents = i
		}
	}
}

func WithMessages(messages validation.Messages) Option {
	return func(t *Table) { t.messages = messages }
}

// WithPageSize sets the rows per page, capped at MaxPageSize.
func WithPageSize(n int) Option {
	return func(t *Table) { t.pageSize = clampPageSize(n) }
}

// Table is the list view of one page. It owns the record collection and at
// most one open form session. It is not safe for concurrent use.
type Table struct {
	set       field.Set
	title     string
	idField   string
	actions   Actions
	confirmer Confirmer
	intents   Intents
	messages  validation.Messages
	pageSize  int

	records  []record.Record
	mode     Mode
	selected record.Record
	form     *form.Form

	sortKey  string
	sortDesc bool
	query    string
	page     int
}

func New(set field.Set, opts ...Option) *Table {
	t := &Table{
		set:      set,
		idField:  record.DefaultIDField,
		actions:  AllActions(),
		intents:  discard{},
		pageSize: DefaultPageSize,
		mode:     ModeView,
		page:     1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

func (t *Table) Mode() Mode        { return t.mode }
func (t *Table) IDField() string   { return t.idField }
func (t *Table) Actions() Actions  { return t.actions }
func (t *Table) Fields() field.Set { return t.set }
func (t *Table) Form() *form.Form  { return t.form }

// SetIntents replaces the intent receiver after construction.
func (t *Table) SetIntents(i Intents) { WithIntents(i)(t) }

// Selected returns a copy of the record open in edit or detail mode.
func (t *Table) Selected() record.Record { return t.selected.Clone() }

// SetRecords replaces the collection wholesale.
func (t *Table) SetRecords(records []record.Record) {
	next := make([]record.Record, len(records))
	for i, r := range records {
		next[i] = record.Conform(t.set, r)
	}
	t.records = next
}

// Records returns copies of the current collection.
func (t *Table) Records() []record.Record {
	out := make([]record.Record, len(t.records))
	for i, r := range t.records {
		out[i] = r.Clone()
	}
	return out
}

// Columns returns the visible descriptors in order, plus the actions column
// when edit, delete or view is enabled.
func (t *Table) Columns() []render.Column {
	visible := t.set.Visible()
	cols := make([]render.Column, 0, len(visible)+1)
	for _, desc := range visible {
		cols = append(cols, render.Column{Key: desc.Key, Label: desc.Label})
	}
	if t.actions.Edit || t.actions.Delete || t.actions.View {
		cols = append(cols, render.Column{Key: ActionsColumn, Label: "Actions", Actions: true})
	}
	return cols
}

// Title is the card heading for the current mode.
func (t *Table) Title() string {
	switch t.mode {
	case ModeAdd:
		return "Add New " + t.title
	case ModeEdit:
		return "Edit " + t.title
	case ModeDetail:
		return "View " + t.title
	default:
		return t.title
	}
}

// Add opens an add session seeded with a blank record. Any open session is
// abandoned without saving.
func (t *Table) Add() (*form.Form, error) {
	if !t.actions.Add {
		return nil, fmt.Errorf("%w: add", ErrActionDisabled)
	}
	t.reset()
	t.mode = ModeAdd
	t.form = form.New(t.set, nil,
		form.WithMode(form.ModeAdd),
		form.WithMessages(t.messages),
		form.OnSave(t.saved),
		form.OnCancel(t.reset),
	)
	return t.form, nil
}

// Edit opens an edit session on a copy of the row.
func (t *Table) Edit(id string) (*form.Form, error) {
	if !t.actions.Edit {
		return nil, fmt.Errorf("%w: edit", ErrActionDisabled)
	}
	row, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	t.openEdit(row)
	return t.form, nil
}

// View opens a read-only detail session on a copy of the row.
func (t *Table) View(id string) (*form.Form, error) {
	if !t.actions.View {
		return nil, fmt.Errorf("%w: view", ErrActionDisabled)
	}
	row, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	t.reset()
	t.mode = ModeDetail
	t.selected = row
	t.form = form.New(t.set, row.Clone(),
		form.WithMode(form.ModeDetail),
		form.WithMessages(t.messages),
		form.OnCancel(t.reset),
	)
	return t.form, nil
}

// EditSelected moves the open detail session into edit mode.
func (t *Table) EditSelected() (*form.Form, error) {
	if t.mode != ModeDetail || t.selected == nil {
		return nil, ErrNoSelection
	}
	if !t.actions.Edit {
		return nil, fmt.Errorf("%w: edit", ErrActionDisabled)
	}
	t.openEdit(t.selected)
	return t.form, nil
}

func (t *Table) openEdit(row record.Record) {
	t.reset()
	t.mode = ModeEdit
	t.selected = row.Clone()
	t.form = form.New(t.set, row.Clone(),
		form.WithMode(form.ModeEdit),
		form.WithMessages(t.messages),
		form.OnSave(t.saved),
		form.OnCancel(t.reset),
	)
}

// Close returns to view, cancelling an open edit session.
func (t *Table) Close() {
	if t.form != nil && t.form.Editing() {
		t.form.Cancel()
		return
	}
	t.reset()
}

// Delete asks for confirmation and emits a delete intent only on yes.
// Without a Confirmer nothing is emitted.
func (t *Table) Delete(ctx context.Context, id string) (bool, error) {
	if !t.actions.Delete {
		return false, fmt.Errorf("%w: delete", ErrActionDisabled)
	}
	if _, err := t.lookup(id); err != nil {
		return false, err
	}
	if t.confirmer == nil {
		return false, nil
	}
	ok, err := t.confirmer.Confirm(ctx, DeletePrompt)
	if err != nil {
		return false, fmt.Errorf("table: confirm delete: %w", err)
	}
	if !ok {
		return false, nil
	}
	if t.selected != nil && t.selected.ID(t.idField) == id {
		t.reset()
	}
	t.intents.Delete(id)
	return true, nil
}

func (t *Table) saved(values record.Values) {
	original := t.selected
	if t.mode == ModeAdd {
		original = nil
	}
	t.reset()
	t.intents.Save(original, values)
}

func (t *Table) reset() {
	t.mode = ModeView
	t.selected = nil
	t.form = nil
}

func (t *Table) lookup(id string) (record.Record, error) {
	for _, r := range t.records {
		if r.ID(t.idField) == id {
			return r.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrRecordNotFound, id)
}

func clampPageSize(n int) int {
	switch {
	case n <= 0:
		return DefaultPageSize
	case n > MaxPageSize:
		return MaxPageSize
	default:
		return n
	}
}
