// Package sqlite stores records as JSON documents in one SQLite table, keyed
// by collection and identifier.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/record"
	"github.com/goliatone/go-careforms/pkg/store"
)

const schema = `CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       TEXT NOT NULL,
	PRIMARY KEY (collection, id)
)`

// Backend owns the database handle shared by every collection.
type Backend struct {
	db    *sql.DB
	newID func() string
}

var _ store.Backend = (*Backend)(nil)

// Open connects to dsn (a file path or ":memory:") and creates the schema.
func Open(ctx context.Context, dsn string) (*Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}
	return &Backend{db: db, newID: uuid.NewString}, nil
}

func (b *Backend) Open(_ context.Context, c store.Collection) (store.Store, error) {
	if b.db == nil {
		return nil, store.ErrClosed
	}
	idField := c.IDField
	if idField == "" {
		idField = record.DefaultIDField
	}
	return &Store{backend: b, collection: c.Name, idField: idField}, nil
}

func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// Store is one collection view over the shared table.
type Store struct {
	backend    *Backend
	collection string
	idField    string
}

var _ store.Store = (*Store)(nil)

// FetchAll returns records in insertion order.
func (s *Store) FetchAll(ctx context.Context) ([]record.Record, error) {
	db := s.backend.db
	if db == nil {
		return nil, store.ErrClosed
	}
	rows, err := db.QueryContext(ctx, `SELECT body FROM records WHERE collection = ? ORDER BY rowid`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetch %s: %w", s.collection, err)
	}
	defer rows.Close()

	var out []record.Record
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("sqlite: scan %s: %w", s.collection, err)
		}
		rec, err := record.Decode([]byte(body))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Save(ctx context.Context, rec record.Record) (record.Record, error) {
	db := s.backend.db
	if db == nil {
		return nil, store.ErrClosed
	}
	rec = rec.Clone()
	if rec == nil {
		rec = record.Record{}
	}
	id := rec.ID(s.idField)
	if id == "" {
		id = s.backend.newID()
		rec[s.idField] = field.Text(id)
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("sqlite: encode %s/%s: %w", s.collection, id, err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO records (collection, id, body) VALUES (?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body`,
		s.collection, id, string(body))
	if err != nil {
		return nil, fmt.Errorf("sqlite: save %s/%s: %w", s.collection, id, err)
	}
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	db := s.backend.db
	if db == nil {
		return store.ErrClosed
	}
	res, err := db.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND id = ?`, s.collection, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete %s/%s: %w", s.collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete %s/%s: %w", s.collection, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", store.ErrNotFound, id)
	}
	return nil
}
