package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-careforms/pkg/field"
)

func keys(failures []field.Failure) []string {
	var out []string
	for _, f := range failures {
		out = append(out, f.Key)
	}
	return out
}

func TestRules_EmailAppendedOnce(t *testing.T) {
	desc := field.Descriptor{Key: "email", DataType: field.DataTypeEmail, Required: true}
	got := Rules(desc)
	want := []string{field.RuleRequired, field.RuleEmail}
	var kinds []string
	for _, r := range got {
		kinds = append(kinds, r.Kind)
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}

	desc.Rules = []field.Rule{field.Email()}
	if n := len(Rules(desc)); n != 2 {
		t.Fatalf("expected explicit email rule to be kept once, got %d rules", n)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		desc  field.Descriptor
		value field.Value
		want  []string
	}{
		"required empty text": {
			desc:  field.Descriptor{Key: "name", Required: true},
			value: field.Text("   "),
			want:  []string{field.RuleRequired},
		},
		"required null number": {
			desc:  field.Descriptor{Key: "age", DataType: field.DataTypeNumber, Required: true},
			value: field.Null(),
			want:  []string{field.RuleRequired},
		},
		"min": {
			desc:  field.Descriptor{Key: "age", DataType: field.DataTypeNumber, Rules: []field.Rule{field.Min(0)}},
			value: field.Number(-5),
			want:  []string{field.RuleMin},
		},
		"max passes at bound": {
			desc:  field.Descriptor{Key: "pain", DataType: field.DataTypeNumber, Rules: []field.Rule{field.Max(10)}},
			value: field.Number(10),
		},
		"optional empty skips bounds": {
			desc:  field.Descriptor{Key: "age", DataType: field.DataTypeNumber, Rules: []field.Rule{field.Min(0)}},
			value: field.Null(),
		},
		"email": {
			desc:  field.Descriptor{Key: "email", DataType: field.DataTypeEmail},
			value: field.Text("not-an-email"),
			want:  []string{field.RuleEmail},
		},
		"valid email": {
			desc:  field.Descriptor{Key: "email", DataType: field.DataTypeEmail},
			value: field.Text("ann@example.org"),
		},
		"pattern anchored": {
			desc:  field.Descriptor{Key: "zip", Rules: []field.Rule{field.Pattern(`\d{5}`)}},
			value: field.Text("123456"),
			want:  []string{field.RulePattern},
		},
		"lengths enumerate together": {
			desc: field.Descriptor{Key: "code", Rules: []field.Rule{
				field.MinLength(3),
				field.Pattern(`[A-Z]+`),
			}},
			value: field.Text("ab"),
			want:  []string{field.RuleMinLength, field.RulePattern},
		},
		"custom check": {
			desc: field.Descriptor{Key: "bmi", Checks: []field.Check{func(v field.Value) *field.Failure {
				if v.String() == "0" {
					return &field.Failure{Key: "nonZero"}
				}
				return nil
			}}},
			value: field.Text("0"),
			want:  []string{"nonZero"},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := keys(Validate(tc.desc, tc.value))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("failures mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMessages_Resolve(t *testing.T) {
	msgs := NewMessages(map[string]string{field.RuleRequired: "First name is required"})

	got := msgs.ResolveAll([]field.Failure{
		{Key: field.RuleRequired},
		{Key: field.RuleMin, Params: map[string]string{"value": "0"}},
		{Key: "nonZero"},
		{Key: field.RuleRequired},
	})
	want := []string{
		"First name is required",
		"Value must be at least 0",
		"Validation failed (nonZero)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestMessages_WithDoesNotMutate(t *testing.T) {
	base := NewMessages(map[string]string{field.RuleEmail: "Bad email"})
	_ = base.With(map[string]string{field.RuleEmail: "Other"})
	if got := base.Resolve(field.Failure{Key: field.RuleEmail}); got != "Bad email" {
		t.Fatalf("base messages mutated: %q", got)
	}
}
