package careforms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-careforms/pkg/fieldset"
	"github.com/goliatone/go-careforms/pkg/mutation"
	"github.com/goliatone/go-careforms/pkg/notify"
	"github.com/goliatone/go-careforms/pkg/store"
	"github.com/goliatone/go-careforms/pkg/store/memory"
	"github.com/goliatone/go-careforms/pkg/table"
	"github.com/goliatone/go-careforms/pkg/testsupport"
)

func newTestApp(t *testing.T) (*App, *[]string) {
	t.Helper()
	catalog := fieldset.NewCatalog()
	require.NoError(t, catalog.Add(fieldset.Page{
		Name:    "residents",
		Title:   "Resident",
		IDField: "id",
		Actions: table.AllActions(),
		Fields:  testsupport.ResidentFields(),
	}))

	backend := memory.NewBackend(memory.WithIDGenerator(func() string { return "r3" }))
	backend.Seed(store.Collection{Name: "residents", IDField: "id"}, testsupport.ResidentRecords()...)

	app := New(catalog, backend)
	var changes []string
	app.OnChange(func(page string) { changes = append(changes, page) })
	return app, &changes
}

func TestApp_OpenLoadsRecords(t *testing.T) {
	app, _ := newTestApp(t)

	sess, err := app.Open(context.Background(), "residents")
	require.NoError(t, err)
	screen := sess.Screen()
	assert.Equal(t, "Resident", screen.Heading)
	assert.Len(t, screen.Rows, 2)

	nav := app.Nav("residents")
	require.Len(t, nav, 1)
	assert.True(t, nav[0].Active)

	_, err = app.Open(context.Background(), "billing")
	assert.ErrorIs(t, err, ErrUnknownPage)
}

func TestSession_AddSavesAndNotifies(t *testing.T) {
	app, changes := newTestApp(t)
	var extra notify.Flash
	sess, err := app.Open(context.Background(), "residents", WithSessionNotifier(&extra))
	require.NoError(t, err)

	f, err := sess.Table.Add()
	require.NoError(t, err)
	require.NoError(t, f.SetInput("firstName", "Grace"))
	require.NoError(t, f.SetInput("lastName", "Hopper"))
	require.True(t, f.Submit())

	screen := sess.Screen()
	assert.Equal(t, string(table.ModeView), screen.Mode)
	assert.Len(t, screen.Rows, 3)
	require.Len(t, screen.Notices, 1)
	assert.Equal(t, mutation.DefaultTexts().Saved, screen.Notices[0].Message)
	assert.Equal(t, []string{"residents"}, *changes)
	assert.Len(t, extra.Drain(), 1)

	again, err := app.Open(context.Background(), "residents")
	require.NoError(t, err)
	assert.Len(t, again.Table.Records(), 3, "store is shared across sessions")
}

func TestSession_InvalidAddDoesNotSave(t *testing.T) {
	app, changes := newTestApp(t)
	sess, err := app.Open(context.Background(), "residents")
	require.NoError(t, err)

	f, err := sess.Table.Add()
	require.NoError(t, err)
	assert.False(t, f.Submit())
	assert.Empty(t, *changes)
	assert.Equal(t, "Add New Resident", sess.Screen().Heading)
}

func TestSession_EditFromDetail(t *testing.T) {
	app, _ := newTestApp(t)
	sess, err := app.Open(context.Background(), "residents")
	require.NoError(t, err)

	_, err = sess.Table.View("r1")
	require.NoError(t, err)
	require.NoError(t, sess.EditSelected())

	f := sess.Table.Form()
	require.NotNil(t, f)
	require.NoError(t, f.SetInput("lastName", "King"))
	require.True(t, f.Submit())

	screen := sess.Screen()
	require.Len(t, screen.Notices, 1)
	assert.Equal(t, mutation.ChangesSaved, screen.Notices[0].Message)

	var found bool
	for _, rec := range sess.Table.Records() {
		if rec.ID("id") == "r1" {
			found = true
			assert.Equal(t, "King", rec["lastName"].String())
			assert.Equal(t, "123456789", rec["ssn"].String())
		}
	}
	assert.True(t, found)
}

func TestSession_DeleteNeedsConfirmation(t *testing.T) {
	app, changes := newTestApp(t)

	sess, err := app.Open(context.Background(), "residents")
	require.NoError(t, err)
	deleted, err := sess.Table.Delete(context.Background(), "r2")
	require.NoError(t, err)
	assert.False(t, deleted, "no confirmer means no delete")

	sess, err = app.Open(context.Background(), "residents", WithConfirmer(table.Answer(true)))
	require.NoError(t, err)
	deleted, err = sess.Table.Delete(context.Background(), "r2")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Len(t, sess.Table.Records(), 1)
	assert.Equal(t, []string{"residents"}, *changes)
}

func TestApp_SetCatalogKeepsStores(t *testing.T) {
	app, _ := newTestApp(t)
	_, err := app.Open(context.Background(), "residents")
	require.NoError(t, err)

	next := fieldset.NewCatalog()
	require.NoError(t, next.Add(fieldset.Page{Name: "residents", Title: "Residents", IDField: "id", Fields: testsupport.ResidentFields()}))
	app.SetCatalog(next)

	sess, err := app.Open(context.Background(), "residents")
	require.NoError(t, err)
	assert.Equal(t, "Residents", sess.Screen().Heading)
	assert.Len(t, sess.Table.Records(), 2)
	assert.False(t, sess.Table.Actions().Add)
}
