package mutation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/form"
	"github.com/goliatone/go-careforms/pkg/notify"
	"github.com/goliatone/go-careforms/pkg/record"
	"github.com/goliatone/go-careforms/pkg/store/memory"
	"github.com/goliatone/go-careforms/pkg/table"
)

func residentFields() field.Set {
	return field.MustSet(
		field.Descriptor{Key: "name", Required: true},
		field.Descriptor{Key: "age", DataType: field.DataTypeNumber, Rules: []field.Rule{field.Min(0)}},
	)
}

func ann() record.Record {
	return record.Record{
		"id":    field.Text("1"),
		"name":  field.Text("Ann"),
		"age":   field.Number(30),
		"audit": field.Raw([]byte(`{"createdBy":"nurse.k","createdDate":"2024-01-02"}`)),
	}
}

func TestMerge_NoOpEditRestoresRecord(t *testing.T) {
	sets := map[string]field.Set{
		"resident": residentFields(),
		"with missing property": field.MustSet(
			field.Descriptor{Key: "name"},
			field.Descriptor{Key: "phone", DataType: field.DataTypeTel},
			field.Descriptor{Key: "dateOfBirth", DataType: field.DataTypeDate},
		),
		"empty": field.MustSet(),
	}
	for name, set := range sets {
		t.Run(name, func(t *testing.T) {
			r := ann()
			f := form.New(set, r.Clone())
			got := Merge(r, f.Values())
			if diff := cmp.Diff(r, got); diff != "" {
				t.Fatalf("no-op edit changed record (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMerge_PreservesIDAndAudit(t *testing.T) {
	r := ann()
	f := form.New(residentFields(), r.Clone())
	if err := f.SetInput("name", "Annie"); err != nil {
		t.Fatalf("set: %v", err)
	}

	var edited record.Values
	form.OnSave(func(v record.Values) { edited = v })(f)
	if !f.Submit() {
		t.Fatalf("submit rejected: %+v", f.Errors())
	}

	got := Merge(r, edited)
	if got.ID("id") != "1" {
		t.Fatalf("id lost: %v", got)
	}
	if !got["audit"].Equal(r["audit"]) {
		t.Fatalf("audit metadata lost")
	}
	if !got["name"].Equal(field.Text("Annie")) {
		t.Fatalf("edit not applied: %v", got["name"])
	}
	if !r["name"].Equal(field.Text("Ann")) {
		t.Fatalf("merge mutated original")
	}
}

func TestMergeWith_IgnoresUnknownKeysAndDropsIDOnAdd(t *testing.T) {
	edited := record.Values{"name": field.Text("Bob"), "age": field.Number(40), "bogus": field.Text("x"), "id": field.Text("")}
	got := MergeWith(residentFields(), "id", nil, edited)
	want := record.Record{"name": field.Text("Bob"), "age": field.Number(40)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

type failingStore struct{ err error }

func (f failingStore) FetchAll(context.Context) ([]record.Record, error) { return nil, f.err }
func (f failingStore) Save(context.Context, record.Record) (record.Record, error) {
	return nil, f.err
}
func (f failingStore) Delete(context.Context, string) error { return f.err }

func TestCoordinator_EditFlowRefreshesTable(t *testing.T) {
	ctx := context.Background()
	st := memory.New("id", memory.WithRecords(ann()))
	flash := &notify.Flash{}

	tbl := table.New(residentFields(), table.WithConfirmer(table.Answer(true)))
	coord := New(st, tbl, WithNotifier(flash), WithFields(residentFields()))
	tbl.SetIntents(coord)
	if err := coord.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	f, err := tbl.Edit("1")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	_ = f.SetInput("age", "31")
	if !f.Submit() {
		t.Fatalf("submit rejected: %+v", f.Errors())
	}

	recs := tbl.Records()
	if len(recs) != 1 || !recs[0]["age"].Equal(field.Number(31)) {
		t.Fatalf("table not refreshed: %v", recs)
	}
	if recs[0].ID("id") != "1" || !recs[0]["audit"].Equal(ann()["audit"]) {
		t.Fatalf("identifier or audit lost: %v", recs[0])
	}
	want := []notify.Notice{{Kind: notify.KindSuccess, Message: "Record saved successfully"}}
	if diff := cmp.Diff(want, flash.Drain()); diff != "" {
		t.Fatalf("notices mismatch (-want +got):\n%s", diff)
	}
}

func TestCoordinator_AddAssignsID(t *testing.T) {
	st := memory.New("id", memory.WithIDGenerator(func() string { return "new-1" }))
	tbl := table.New(residentFields())
	coord := New(st, tbl, WithFields(residentFields()))
	tbl.SetIntents(coord)

	f, _ := tbl.Add()
	_ = f.SetInput("name", "Bob")
	_ = f.SetInput("age", "40")
	f.Submit()

	if coord.Err() != nil {
		t.Fatalf("unexpected error: %v", coord.Err())
	}
	recs := tbl.Records()
	if len(recs) != 1 || recs[0].ID("id") != "new-1" {
		t.Fatalf("expected stored record with assigned id, got %v", recs)
	}
}

func TestCoordinator_DeleteFlow(t *testing.T) {
	ctx := context.Background()
	st := memory.New("id", memory.WithRecords(ann()))
	flash := &notify.Flash{}
	tbl := table.New(residentFields(), table.WithConfirmer(table.Answer(true)))
	coord := New(st, tbl, WithNotifier(flash))
	tbl.SetIntents(coord)
	_ = coord.Load(ctx)

	if ok, err := tbl.Delete(ctx, "1"); !ok || err != nil {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if n := len(tbl.Records()); n != 0 {
		t.Fatalf("expected empty table, got %d", n)
	}
	if got := flash.Drain(); len(got) != 1 || got[0].Message != "Record deleted successfully" {
		t.Fatalf("unexpected notices %+v", got)
	}
}

func TestCoordinator_FailureLeavesTableUntouched(t *testing.T) {
	boom := errors.New("backend unavailable")
	flash := &notify.Flash{}
	tbl := table.New(residentFields(), table.WithConfirmer(table.Answer(true)))
	tbl.SetRecords([]record.Record{ann()})

	coord := New(failingStore{err: boom}, tbl, WithNotifier(flash))
	tbl.SetIntents(coord)

	f, _ := tbl.Edit("1")
	_ = f.SetInput("name", "Annie")
	f.Submit()

	if !errors.Is(coord.Err(), boom) {
		t.Fatalf("expected store error, got %v", coord.Err())
	}
	if tbl.Mode() != table.ModeView {
		t.Fatalf("expected view mode, got %s", tbl.Mode())
	}
	if !tbl.Records()[0]["name"].Equal(field.Text("Ann")) {
		t.Fatalf("failed save must not be applied optimistically")
	}

	_, _ = tbl.Delete(context.Background(), "1")
	if len(tbl.Records()) != 1 {
		t.Fatalf("failed delete must not remove the row")
	}

	want := []notify.Notice{
		{Kind: notify.KindError, Message: "Failed to save record"},
		{Kind: notify.KindError, Message: "Failed to delete record"},
	}
	if diff := cmp.Diff(want, flash.Drain()); diff != "" {
		t.Fatalf("notices mismatch (-want +got):\n%s", diff)
	}
}
