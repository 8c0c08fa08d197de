package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/record"
	"github.com/goliatone/go-careforms/pkg/store"
)

func TestStore_SaveAssignsID(t *testing.T) {
	ctx := context.Background()
	s := New("id", WithIDGenerator(func() string { return "generated" }))

	saved, err := s.Save(ctx, record.Record{"name": field.Text("Bob")})
	require.NoError(t, err)
	assert.Equal(t, "generated", saved.ID("id"))

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Bob", all[0].Get("name").String())
}

func TestStore_UpdateKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := New("id", WithRecords(
		record.Record{"id": field.Text("1"), "name": field.Text("Ann")},
		record.Record{"id": field.Text("2"), "name": field.Text("Bea")},
	))

	_, err := s.Save(ctx, record.Record{"id": field.Text("1"), "name": field.Text("Annie")})
	require.NoError(t, err)

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Annie", all[0].Get("name").String())
	assert.Equal(t, "2", all[1].ID("id"))
}

func TestStore_DeleteMissing(t *testing.T) {
	s := New("")
	err := s.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_FetchReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New("id", WithRecords(record.Record{"id": field.Text("1"), "name": field.Text("Ann")}))

	all, _ := s.FetchAll(ctx)
	all[0]["name"] = field.Text("changed")

	again, _ := s.FetchAll(ctx)
	assert.Equal(t, "Ann", again[0].Get("name").String())
}

func TestBackend_OpenIsStablePerCollection(t *testing.T) {
	b := NewBackend()
	ctx := context.Background()
	c := store.Collection{Name: "vitals", IDField: "id"}

	first, err := b.Open(ctx, c)
	require.NoError(t, err)
	second, err := b.Open(ctx, c)
	require.NoError(t, err)
	assert.Same(t, first, second)
}
