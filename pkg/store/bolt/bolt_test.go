package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/record"
	"github.com/goliatone/go-careforms/pkg/store"
)

func TestStore_InsertionOrderAndUpsert(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "care.bolt")
	backend, err := Open(path, 0)
	require.NoError(t, err)

	ids := []string{"b", "a"}
	backend.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	s, err := backend.Open(ctx, store.Collection{Name: "contacts", IDField: "contactId"})
	require.NoError(t, err)

	first, err := s.Save(ctx, record.Record{"name": field.Text("Grace")})
	require.NoError(t, err)
	assert.Equal(t, "b", first.ID("contactId"))
	_, err = s.Save(ctx, record.Record{"name": field.Text("Edsger")})
	require.NoError(t, err)

	first["name"] = field.Text("Grace H.")
	_, err = s.Save(ctx, first)
	require.NoError(t, err)

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Grace H.", all[0]["name"].String())
	assert.Equal(t, "Edsger", all[1]["name"].String())

	require.NoError(t, backend.Close())

	reopened, err := Open(path, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	s, err = reopened.Open(ctx, store.Collection{Name: "contacts", IDField: "contactId"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "b"))
	assert.ErrorIs(t, s.Delete(ctx, "b"), store.ErrNotFound)
	all, err = s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "a", all[0].ID("contactId"))
}

func TestStore_Closed(t *testing.T) {
	backend, err := Open(filepath.Join(t.TempDir(), "care.bolt"), 0)
	require.NoError(t, err)
	s, err := backend.Open(context.Background(), store.Collection{Name: "vitals"})
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	_, err = s.Save(context.Background(), record.Record{})
	assert.ErrorIs(t, err, store.ErrClosed)
}
