package sqlite

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

func openTestBackend(t *testing.T) *Backend {
	t.Helper()
	backend, err := Open(context.Background(), filepath.Join(t.TempDir(), "care.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

func TestStore_SaveFetchDelete(t *testing.T) {
	ctx := context.Background()
	backend := openTestBackend(t)
	backend.newID = func() string { return "generated" }

	residents, err := backend.Open(ctx, store.Collection{Name: "residents"})
	require.NoError(t, err)
	vitals, err := backend.Open(ctx, store.Collection{Name: "vitals"})
	require.NoError(t, err)

	saved, err := residents.Save(ctx, record.Record{"firstName": field.Text("Ada")})
	require.NoError(t, err)
	assert.Equal(t, "generated", saved.ID("id"))

	_, err = residents.Save(ctx, record.Record{"id": field.Text("r2"), "firstName": field.Text("Alan"), "age": field.Number(41)})
	require.NoError(t, err)
	_, err = residents.Save(ctx, record.Record{"id": field.Text("generated"), "firstName": field.Text("Ada L.")})
	require.NoError(t, err)

	all, err := residents.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0]["firstName"].Equal(field.Text("Ada L.")), "upsert keeps position")
	assert.True(t, all[1]["age"].Equal(field.Number(41)))

	other, err := vitals.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, residents.Delete(ctx, "r2"))
	assert.ErrorIs(t, residents.Delete(ctx, "r2"), store.ErrNotFound)
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	backend := openTestBackend(t)
	s, err := backend.Open(ctx, store.Collection{Name: "residents"})
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	_, err = s.FetchAll(ctx)
	assert.ErrorIs(t, err, store.ErrClosed)
	_, err = backend.Open(ctx, store.Collection{Name: "x"})
	assert.ErrorIs(t, err, store.ErrClosed)
}
