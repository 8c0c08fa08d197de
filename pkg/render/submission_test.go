package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMergeHiddenFields(t *testing.T) {
	got := MergeHiddenFields(
		[]HiddenField{Hidden("role", "ROLE_RESIDENT"), Hidden(" ", "ignored")},
		[]HiddenField{Hidden("_mode", "edit"), Hidden("role", "ROLE_ADMIN")},
	)
	want := []HiddenField{
		{Name: "_mode", Value: "edit"},
		{Name: "role", Value: "ROLE_ADMIN"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestHiddenControls(t *testing.T) {
	controls := []Control{
		{Key: "firstName", Value: "Ann"},
		{Key: "role", Value: "ROLE_RESIDENT", Hidden: true},
	}
	want := []HiddenField{{Name: "role", Value: "ROLE_RESIDENT"}}
	if diff := cmp.Diff(want, HiddenControls(controls)); diff != "" {
		t.Fatalf("hidden controls mismatch (-want +got):\n%s", diff)
	}
}
