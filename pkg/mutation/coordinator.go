package mutation

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/notify"
	"github.com/goliatone/go-careforms/pkg/record"
	"github.com/goliatone/go-careforms/pkg/store"
)

// Texts are the notices sent after persistence calls.
type Texts struct {
	Saved        string
	Deleted      string
	SaveFailed   string
	DeleteFailed string
	LoadFailed   string
}

// ChangesSaved replaces Texts.Saved for edits started from a detail view.
const ChangesSaved = "Changes saved successfully"

// DefaultTexts returns the stock notice texts.
func DefaultTexts() Texts {
	return Texts{
		Saved:        "Record saved successfully",
		Deleted:      "Record deleted successfully",
		SaveFailed:   "Failed to save record",
		DeleteFailed: "Failed to delete record",
		LoadFailed:   "Failed to load records",
	}
}

// Sink receives the refreshed collection after a successful mutation.
// *table.Table satisfies it.
type Sink interface {
	SetRecords([]record.Record)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Coordinator) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithFields restricts merges to the keys the set describes.
func WithFields(set field.Set) Option {
	return func(c *Coordinator) { c.set = &set }
}

func WithIDField(name string) Option {
	return func(c *Coordinator) {
		if name != "" {
			c.idField = name
		}
	}
}

// WithContext sets the context passed to the store for intent handling.
func WithContext(ctx context.Context) Option {
	return func(c *Coordinator) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

func WithTexts(texts Texts) Option {
	return func(c *Coordinator) { c.texts = texts }
}

// Coordinator turns table intents into store calls. It merges edits, forwards
// them, reports the outcome through the notifier and refreshes the sink from
// the store. A failed call leaves the sink untouched.
type Coordinator struct {
	store    store.Store
	sink     Sink
	set      *field.Set
	idField  string
	notifier notify.Notifier
	logger   *zap.Logger
	ctx      context.Context
	texts    Texts

	lastErr   error
	lastSaved record.Record
}

func New(s store.Store, sink Sink, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    s,
		sink:     sink,
		idField:  record.DefaultIDField,
		notifier: notify.Nop{},
		logger:   zap.NewNop(),
		ctx:      context.Background(),
		texts:    DefaultTexts(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Merge applies the coordinator's field set and identifier rules.
func (c *Coordinator) Merge(original record.Record, edited record.Values) record.Record {
	if c.set != nil {
		return MergeWith(*c.set, c.idField, original, edited)
	}
	out := Merge(original, edited)
	if original == nil {
		delete(out, c.idField)
	}
	return out
}

// Save handles a save intent.
func (c *Coordinator) Save(original record.Record, edited record.Values) {
	rec := c.Merge(original, edited)
	c.lastErr, c.lastSaved = nil, nil

	saved, err := c.store.Save(c.ctx, rec)
	if err != nil {
		c.lastErr = err
		c.logger.Warn("save failed", zap.String("id", rec.ID(c.idField)), zap.Error(err))
		c.notifier.NotifyError(c.texts.SaveFailed)
		return
	}
	c.lastSaved = saved
	c.logger.Debug("record saved", zap.String("id", saved.ID(c.idField)), zap.Bool("created", original == nil))
	c.notifier.NotifySuccess(c.texts.Saved)
	c.refresh()
}

// Delete handles a confirmed delete intent.
func (c *Coordinator) Delete(id string) {
	c.lastErr, c.lastSaved = nil, nil
	if err := c.store.Delete(c.ctx, id); err != nil {
		c.lastErr = err
		c.logger.Warn("delete failed", zap.String("id", id), zap.Error(err))
		c.notifier.NotifyError(c.texts.DeleteFailed)
		return
	}
	c.logger.Debug("record deleted", zap.String("id", id))
	c.notifier.NotifySuccess(c.texts.Deleted)
	c.refresh()
}

// Load performs the initial fetch into the sink.
func (c *Coordinator) Load(ctx context.Context) error {
	records, err := c.store.FetchAll(ctx)
	if err != nil {
		c.logger.Warn("fetch failed", zap.Error(err))
		c.notifier.NotifyError(c.texts.LoadFailed)
		return err
	}
	if c.sink != nil {
		c.sink.SetRecords(records)
	}
	return nil
}

// SetTexts replaces the notice texts for later intents.
func (c *Coordinator) SetTexts(texts Texts) { c.texts = texts }

// Texts returns the current notice texts.
func (c *Coordinator) Texts() Texts { return c.texts }

// Err returns the error of the last intent, if any.
func (c *Coordinator) Err() error { return c.lastErr }

// LastSaved returns the record the store returned for the last save.
func (c *Coordinator) LastSaved() record.Record { return c.lastSaved.Clone() }

func (c *Coordinator) refresh() {
	if err := c.Load(c.ctx); err != nil {
		c.lastErr = err
	}
}
