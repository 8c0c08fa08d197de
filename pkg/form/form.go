// Package form assembles an editable, validated form session from a field set
// and one record.
package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/record"
	"github.com/goliatone/go-careforms/pkg/render"
	"github.com/goliatone/go-careforms/pkg/validation"
)

// Mode records why the form was opened.
type Mode string

const (
	ModeAdd    Mode = "add"
	ModeEdit   Mode = "edit"
	ModeDetail Mode = "detail"
)

// NoticeInvalid is reported when a submission is blocked by field errors.
const NoticeInvalid = "Please fix form errors before saving"

var (
	ErrUnknownField = errors.New("form: unknown field")
	ErrReadOnly     = errors.New("form: form is not editable")
	// ErrHiddenInvalid reports hidden fields that fail validation. The user
	// cannot correct them from the form.
	ErrHiddenInvalid = errors.New("form: hidden fields are invalid")
)

// Option configures a Form at construction time.
type Option func(*Form)

// WithMode sets the session mode. Detail forms start read-only.
func WithMode(mode Mode) Option {
	return func(f *Form) {
		if mode != "" {
			f.mode = mode
		}
	}
}

// OnSave registers the callback invoked with the collected values after a
// valid submit.
func OnSave(fn func(record.Values)) Option {
	return func(f *Form) { f.onSave = fn }
}

// OnCancel registers the callback invoked by Cancel.
func OnCancel(fn func()) Option {
	return func(f *Form) { f.onCancel = fn }
}

// WithMessages sets page-level error message overrides.
func WithMessages(messages validation.Messages) Option {
	return func(f *Form) { f.messages = messages }
}

type control struct {
	desc    field.Descriptor
	value   field.Value
	initial field.Value
	// source is the untouched record value, returned for pristine fields so a
	// no-op edit hands back exactly what was loaded.
	source  field.Value
	seeded  bool
	parse   *field.Failure
	touched bool
	dirty   bool
}

// Form is one edit session. It is not safe for concurrent use; a Table owns
// at most one at a time.
type Form struct {
	mode     Mode
	controls []*control
	index    map[string]int
	editing  bool
	notice   string
	messages validation.Messages
	onSave   func(record.Values)
	onCancel func()
}

// New initialises a form from a field set and a source record. Every
// descriptor gets a control, hidden ones included; properties the record
// lacks start blank.
func New(set field.Set, rec record.Record, opts ...Option) *Form {
	f := &Form{
		mode:    ModeEdit,
		editing: true,
		index:   make(map[string]int, set.Len()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.mode == ModeDetail {
		f.editing = false
	}

	for _, desc := range set.Descriptors() {
		c := &control{desc: desc}
		if src, ok := rec[desc.Key]; ok {
			c.source = src
			c.seeded = true
			c.value = field.Conform(desc, src)
		} else {
			c.value = field.Blank(desc)
		}
		c.initial = c.value
		f.index[desc.Key] = len(f.controls)
		f.controls = append(f.controls, c)
	}
	return f
}

func (f *Form) Mode() Mode     { return f.mode }
func (f *Form) Editing() bool  { return f.editing }
func (f *Form) Notice() string { return f.notice }

// SetValue is the typed onChange path. Select and radio values outside the
// option list become an empty selection.
func (f *Form) SetValue(key string, v field.Value) error {
	c, err := f.editable(key)
	if err != nil {
		return err
	}
	if c.desc.DataType.HasOptions() {
		s, _ := v.Text()
		if s == "" {
			s = v.String()
		}
		if c.desc.HasOption(s) {
			v = field.OptionValue(s)
		} else {
			v = field.Text("")
		}
	}
	f.apply(c, v, nil)
	return nil
}

// SetInput is the raw-text onChange path used by HTML and terminal
// front ends.
func (f *Form) SetInput(key, raw string) error {
	c, err := f.editable(key)
	if err != nil {
		return err
	}
	v, failure := render.Change(c.desc, raw)
	f.apply(c, v, failure)
	return nil
}

func (f *Form) editable(key string) (*control, error) {
	idx, ok := f.index[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	if !f.editing {
		return nil, ErrReadOnly
	}
	return f.controls[idx], nil
}

func (f *Form) apply(c *control, v field.Value, failure *field.Failure) {
	c.value = v
	c.parse = failure
	c.touched = true
	c.dirty = failure != nil || !v.Equal(c.initial)
	f.notice = ""
}

// Submit validates every control. On failure it marks all controls touched,
// sets the invalid notice and returns false without calling the save
// callback. On success it hands the values to the save callback and leaves
// the form read-only.
func (f *Form) Submit() bool {
	if !f.editing {
		return false
	}
	valid := true
	for _, c := range f.controls {
		c.touched = true
		if c.parse != nil || !validation.Valid(c.desc, c.value) {
			valid = false
		}
	}
	if !valid {
		f.notice = NoticeInvalid
		return false
	}

	values := f.Values()
	for _, c := range f.controls {
		if _, ok := values[c.desc.Key]; ok {
			c.source = c.value
			c.seeded = true
		}
		c.initial = c.value
		c.touched = false
		c.dirty = false
	}
	f.editing = false
	f.notice = ""

	if f.onSave != nil {
		f.onSave(values)
	}
	return true
}

// Cancel restores every control to its initial value, leaves the form
// read-only and calls the cancel callback. Nothing is saved.
func (f *Form) Cancel() {
	for _, c := range f.controls {
		c.value = c.initial
		c.parse = nil
		c.touched = false
		c.dirty = false
	}
	f.editing = false
	f.notice = ""
	if f.onCancel != nil {
		f.onCancel()
	}
}

// Edit re-opens a read-only form for editing.
func (f *Form) Edit() {
	if f.mode == ModeDetail {
		f.mode = ModeEdit
	}
	f.editing = true
}

// Values collects the plain key/value result. Add sessions report every
// field; edit sessions report the fields the source record carried plus any
// the user changed.
func (f *Form) Values() record.Values {
	out := make(record.Values, len(f.controls))
	for _, c := range f.controls {
		switch {
		case c.dirty:
			out[c.desc.Key] = c.value
		case c.seeded:
			out[c.desc.Key] = c.source
		case f.mode == ModeAdd:
			out[c.desc.Key] = c.value
		}
	}
	return out
}

// Value returns the live value of one control.
func (f *Form) Value(key string) (field.Value, bool) {
	idx, ok := f.index[key]
	if !ok {
		return field.Value{}, false
	}
	return f.controls[idx].value, true
}

// Controls renders the visible controls. Errors are only resolved for
// touched controls.
func (f *Form) Controls() []render.Control {
	out := make([]render.Control, 0, len(f.controls))
	for _, c := range f.controls {
		if c.desc.Hidden {
			continue
		}
		out = append(out, f.render(c))
	}
	return out
}

// AllControls renders every control, hidden ones included.
func (f *Form) AllControls() []render.Control {
	out := make([]render.Control, 0, len(f.controls))
	for _, c := range f.controls {
		out = append(out, f.render(c))
	}
	return out
}

func (f *Form) render(c *control) render.Control {
	return render.Field(c.desc, c.value,
		render.WithMessages(f.messages),
		render.WithErrorsVisible(c.touched),
		render.WithReadOnly(!f.editing),
		render.WithParseFailure(c.parse),
	)
}

// Errors returns the active failures per key, whether or not they are
// visible yet.
func (f *Form) Errors() map[string][]field.Failure {
	out := make(map[string][]field.Failure)
	for _, c := range f.controls {
		var failures []field.Failure
		if c.parse != nil {
			failures = append(failures, *c.parse)
		}
		failures = append(failures, validation.Validate(c.desc, c.value)...)
		if len(failures) > 0 {
			out[c.desc.Key] = failures
		}
	}
	return out
}

func (f *Form) Valid() bool { return len(f.Errors()) == 0 }

// HiddenErrors returns an error naming the hidden fields that fail
// validation, or nil when there are none.
func (f *Form) HiddenErrors() error {
	var keys []string
	for _, c := range f.controls {
		if c.desc.Hidden && (c.parse != nil || !validation.Valid(c.desc, c.value)) {
			keys = append(keys, c.desc.Key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrHiddenInvalid, strings.Join(keys, ", "))
}

// Dirty reports whether any control differs from its initial value.
func (f *Form) Dirty() bool {
	for _, c := range f.controls {
		if c.dirty {
			return true
		}
	}
	return false
}

func (f *Form) Touched() bool {
	for _, c := range f.controls {
		if c.touched {
			return true
		}
	}
	return false
}

// ControlState is a snapshot of one control.
type ControlState struct {
	Value   field.Value
	Touched bool
	Dirty   bool
}

// State snapshots every control.
func (f *Form) State() map[string]ControlState {
	out := make(map[string]ControlState, len(f.controls))
	for _, c := range f.controls {
		out[c.desc.Key] = ControlState{Value: c.value, Touched: c.touched, Dirty: c.dirty}
	}
	return out
}

// View packages the form for a page renderer.
func (f *Form) View(recordID string) *render.FormView {
	return &render.FormView{
		RecordID: recordID,
		Controls: f.Controls(),
		Hidden:   render.HiddenControls(f.AllControls()),
		Editing:  f.editing,
		Notice:   f.notice,
	}
}
