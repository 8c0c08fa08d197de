// Package memory is an in-process record store for demos, the CLI and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/record"
	"github.com/goliatone/go-careforms/pkg/store"
)

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides uuid.NewString for new identifiers.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithRecords seeds the store. Records without an identifier get one.
func WithRecords(records ...record.Record) Option {
	return func(s *Store) { s.seed = append(s.seed, records...) }
}

// Store keeps one collection in insertion order.
type Store struct {
	mu      sync.RWMutex
	idField string
	order   []string
	records map[string]record.Record
	newID   func() string
	seed    []record.Record
}

var _ store.Store = (*Store)(nil)

func New(idField string, opts ...Option) *Store {
	if idField == "" {
		idField = record.DefaultIDField
	}
	s := &Store{
		idField: idField,
		records: make(map[string]record.Record),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	for _, r := range s.seed {
		s.put(r)
	}
	s.seed = nil
	return s
}

func (s *Store) FetchAll(ctx context.Context) ([]record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]record.Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id].Clone())
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, rec record.Record) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(rec).Clone(), nil
}

func (s *Store) put(rec record.Record) record.Record {
	rec = rec.Clone()
	if rec == nil {
		rec = record.Record{}
	}
	id := rec.ID(s.idField)
	if id == "" {
		id = s.newID()
		rec[s.idField] = field.Text(id)
	}
	if _, exists := s.records[id]; !exists {
		s.order = append(s.order, id)
	}
	s.records[id] = rec
	return rec
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("%w: %q", store.ErrNotFound, id)
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Backend hands out one Store per collection name.
type Backend struct {
	mu          sync.Mutex
	collections map[string]*Store
	opts        []Option
}

var _ store.Backend = (*Backend)(nil)

// NewBackend returns a Backend whose stores are built with opts.
func NewBackend(opts ...Option) *Backend {
	return &Backend{collections: make(map[string]*Store), opts: opts}
}

func (b *Backend) Open(_ context.Context, c store.Collection) (store.Store, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.collections[c.Name]; ok {
		return s, nil
	}
	s := New(c.IDField, b.opts...)
	b.collections[c.Name] = s
	return s, nil
}

// Seed replaces the contents of a collection.
func (b *Backend) Seed(c store.Collection, records ...record.Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	opts := append(append([]Option(nil), b.opts...), WithRecords(records...))
	b.collections[c.Name] = New(c.IDField, opts...)
}

func (b *Backend) Close() error { return nil }
