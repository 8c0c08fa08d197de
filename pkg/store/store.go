// Package store defines the persistence collaborator used by pages. Back ends
// live in the sub-packages.
package store

import (
	"context"
	"errors"

	"github.com/goliatone/go-careforms/pkg/record"
)

var (
	ErrNotFound = errors.New("store: record not found")
	ErrClosed   = errors.New("store: closed")
)

// Store persists the records of one collection.
type Store interface {
	FetchAll(ctx context.Context) ([]record.Record, error)
	// Save inserts or updates a record. Records without an identifier are
	// new and receive one; the stored record is returned.
	Save(ctx context.Context, rec record.Record) (record.Record, error)
	Delete(ctx context.Context, id string) error
}

// Collection names the records of one page. Endpoint is only used by the
// REST back end.
type Collection struct {
	Name     string
	IDField  string
	Endpoint string
}

// Backend opens the Store for a collection.
type Backend interface {
	Open(ctx context.Context, c Collection) (Store, error)
	Close() error
}
