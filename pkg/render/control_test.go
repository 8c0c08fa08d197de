package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/validation"
)

var severity = field.Descriptor{
	Key:      "severity",
	Label:    "Severity",
	DataType: field.DataTypeSelect,
	Options: []field.Option{
		{Value: "Mild", Label: "Mild"},
		{Value: "Severe", Label: "Severe"},
	},
}

func TestField_SelectRejectsUnknownValue(t *testing.T) {
	ctrl := Field(severity, field.OptionValue("Catastrophic"))
	if ctrl.Value != "" {
		t.Fatalf("expected empty selection, got %q", ctrl.Value)
	}
	for _, opt := range ctrl.Options {
		if opt.Selected {
			t.Fatalf("no option should be selected, got %q", opt.Value)
		}
	}

	ctrl = Field(severity, field.OptionValue("Severe"))
	want := []OptionState{
		{Value: "Mild", Label: "Mild"},
		{Value: "Severe", Label: "Severe", Selected: true},
	}
	if diff := cmp.Diff(want, ctrl.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if ctrl.Widget != WidgetSelect {
		t.Fatalf("unexpected widget %q", ctrl.Widget)
	}
}

func TestChange_SelectAndRadio(t *testing.T) {
	v, failure := Change(severity, "Catastrophic")
	if failure != nil || !v.IsEmpty() {
		t.Fatalf("expected empty selection, got %v %v", v, failure)
	}
	v, _ = Change(severity, "Mild")
	if !v.Equal(field.OptionValue("Mild")) {
		t.Fatalf("expected Mild, got %v", v)
	}

	radio := severity
	radio.DataType = field.DataTypeRadio
	v, _ = Change(radio, "Other")
	if !v.IsEmpty() {
		t.Fatalf("radio should reject unknown value, got %v", v)
	}
}

func TestField_SSNMask(t *testing.T) {
	ssn := field.Descriptor{Key: "ssn", Label: "SSN", DataType: field.DataTypeSSN}
	ctrl := Field(ssn, field.Text("123456789"))
	if ctrl.Mask != SSNMask {
		t.Fatalf("expected mask %q, got %q", SSNMask, ctrl.Mask)
	}
	if ctrl.Value != "123-45-6789" {
		t.Fatalf("expected masked display, got %q", ctrl.Value)
	}

	v, _ := Change(ssn, "123-45-6789")
	if !v.Equal(field.Text("123-45-6789")) {
		t.Fatalf("masking must not rewrite stored input, got %v", v)
	}
	if got := MaskSSN("12-34"); got != "12-34" {
		t.Fatalf("partial input should pass through, got %q", got)
	}
}

func TestField_EmailErrorsResolveInOrder(t *testing.T) {
	email := field.Descriptor{
		Key:      "email",
		Label:    "Email",
		DataType: field.DataTypeEmail,
		Rules:    []field.Rule{field.MinLength(20)},
		Messages: map[string]string{field.RuleEmail: "Enter a valid address"},
	}
	ctrl := Field(email, field.Text("bad"), WithErrorsVisible(true))
	want := []string{"Minimum length not met", "Enter a valid address"}
	if diff := cmp.Diff(want, ctrl.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	hidden := Field(email, field.Text("bad"))
	if len(hidden.Errors) != 0 || !hidden.Invalid() {
		t.Fatalf("errors should stay hidden until visible, got %v", hidden.Errors)
	}
}

func TestField_PageMessagesYieldToDescriptor(t *testing.T) {
	name := field.Descriptor{Key: "name", Label: "Name", Required: true, Messages: map[string]string{field.RuleRequired: "Name please"}}
	page := validation.NewMessages(map[string]string{field.RuleRequired: "Required!"})

	ctrl := Field(name, field.Text(""), WithMessages(page), WithErrorsVisible(true))
	if diff := cmp.Diff([]string{"Name please"}, ctrl.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestField_Attributes(t *testing.T) {
	age := field.Descriptor{Key: "age", DataType: field.DataTypeNumber, Rules: []field.Rule{field.Min(0), field.Max(130)}}
	ctrl := Field(age, field.Number(30))
	want := map[string]string{"min": "0", "max": "130"}
	if diff := cmp.Diff(want, ctrl.Attributes); diff != "" {
		t.Fatalf("attributes mismatch (-want +got):\n%s", diff)
	}
	if ctrl.InputType != "number" || ctrl.Value != "30" || ctrl.ID != "cf-age" {
		t.Fatalf("unexpected control %+v", ctrl)
	}
}

func TestDisplay(t *testing.T) {
	if got := Display(severity, field.Text("Mild")); got != "Mild" {
		t.Fatalf("unexpected select display %q", got)
	}
	if got := Display(severity, field.OptionValue("Unknown")); got != "" {
		t.Fatalf("unknown option should display empty, got %q", got)
	}
	if got := Display(field.Descriptor{DataType: field.DataTypeNumber}, field.Null()); got != "" {
		t.Fatalf("null should display empty, got %q", got)
	}
}

func TestChange_TextareaNormalisesLineEndings(t *testing.T) {
	notes := field.Descriptor{Key: "notes", DataType: field.DataTypeTextarea}
	v, failure := Change(notes, "Allergic to penicillin.\r\nMonitor closely.\r\n")
	if failure != nil {
		t.Fatalf("unexpected failure %v", failure)
	}
	if want := field.Text("Allergic to penicillin.\nMonitor closely.\n"); !v.Equal(want) {
		t.Fatalf("got %q, want %q", v.String(), want.String())
	}

	text := field.Descriptor{Key: "name"}
	if v, _ := Change(text, "a\r\nb"); v.String() != "a\r\nb" {
		t.Fatalf("single-line text should be kept as typed, got %q", v.String())
	}
}
