// Package bolt stores records in a bbolt file. Each collection is a bucket
// holding two nested buckets: records keyed by an insertion sequence and an
// index from record identifier to that sequence.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/record"
	"github.com/goliatone/go-careforms/pkg/store"
)

var (
	recordsBucket = []byte("records")
	indexBucket   = []byte("index")
)

type Backend struct {
	db    *bolt.DB
	newID func() string
}

var _ store.Backend = (*Backend)(nil)

// Open creates or opens the database file at path.
func Open(path string, mode os.FileMode) (*Backend, error) {
	if mode == 0 {
		mode = 0o600
	}
	db, err := bolt.Open(path, mode, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt: open %s: %w", path, err)
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
	err := b.db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists([]byte(c.Name))
		if err != nil {
			return err
		}
		if _, err := root.CreateBucketIfNotExists(recordsBucket); err != nil {
			return err
		}
		_, err = root.CreateBucketIfNotExists(indexBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: init bucket %s: %w", c.Name, err)
	}
	return &Store{backend: b, bucket: []byte(c.Name), idField: idField}, nil
}

func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

type Store struct {
	backend *Backend
	bucket  []byte
	idField string
}

var _ store.Store = (*Store)(nil)

func (s *Store) FetchAll(ctx context.Context) ([]record.Record, error) {
	db := s.backend.db
	if db == nil {
		return nil, store.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []record.Record
	err := db.View(func(tx *bolt.Tx) error {
		records := tx.Bucket(s.bucket).Bucket(recordsBucket)
		return records.ForEach(func(_, v []byte) error {
			rec, err := record.Decode(v)
			if err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: fetch %s: %w", s.bucket, err)
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, rec record.Record) (record.Record, error) {
	db := s.backend.db
	if db == nil {
		return nil, store.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
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
		return nil, fmt.Errorf("bolt: encode %s/%s: %w", s.bucket, id, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(s.bucket)
		records, index := root.Bucket(recordsBucket), root.Bucket(indexBucket)
		key := index.Get([]byte(id))
		if key == nil {
			seq, err := records.NextSequence()
			if err != nil {
				return err
			}
			key = seqKey(seq)
			if err := index.Put([]byte(id), key); err != nil {
				return err
			}
		}
		return records.Put(key, body)
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: save %s/%s: %w", s.bucket, id, err)
	}
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	db := s.backend.db
	if db == nil {
		return store.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(s.bucket)
		records, index := root.Bucket(recordsBucket), root.Bucket(indexBucket)
		key := index.Get([]byte(id))
		if key == nil {
			return fmt.Errorf("%w: %q", store.ErrNotFound, id)
		}
		key = append([]byte(nil), key...)
		if err := index.Delete([]byte(id)); err != nil {
			return err
		}
		return records.Delete(key)
	})
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
