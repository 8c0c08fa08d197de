// Package testsupport holds fixtures and golden-file helpers shared by the
// package tests.
package testsupport

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/record"
)

// ResidentFields returns a small resident field set covering every widget
// family.
func ResidentFields() field.Set {
	return field.MustSet(
		field.Descriptor{Key: "id", DataType: field.DataTypeText, Hidden: true},
		field.Descriptor{Key: "firstName", Label: "First Name", Required: true},
		field.Descriptor{Key: "lastName", Label: "Last Name", Required: true},
		field.Descriptor{Key: "email", Label: "Email", DataType: field.DataTypeEmail},
		field.Descriptor{Key: "dateOfBirth", Label: "Date of Birth", DataType: field.DataTypeDate},
		field.Descriptor{
			Key:      "sexAtBirth",
			Label:    "Sex at Birth",
			DataType: field.DataTypeSelect,
			Options: []field.Option{
				{Value: "Male", Label: "Male"},
				{Value: "Female", Label: "Female"},
				{Value: "Other", Label: "Other"},
			},
		},
		field.Descriptor{Key: "ssn", Label: "SSN", DataType: field.DataTypeSSN},
		field.Descriptor{Key: "notes", Label: "Notes", DataType: field.DataTypeTextarea},
	)
}

// ResidentRecords returns two conformed resident records with ids r1 and r2.
func ResidentRecords() []record.Record {
	dob := func(s string) field.Value {
		t, _ := time.Parse(field.DateLayout, s)
		return field.Date(t)
	}
	return []record.Record{
		{
			"id":          field.Text("r1"),
			"firstName":   field.Text("Ada"),
			"lastName":    field.Text("Lovelace"),
			"email":       field.Text("ada@example.com"),
			"dateOfBirth": dob("1915-12-10"),
			"sexAtBirth":  field.OptionValue("Female"),
			"ssn":         field.Text("123456789"),
		},
		{
			"id":          field.Text("r2"),
			"firstName":   field.Text("Alan"),
			"lastName":    field.Text("Turing"),
			"dateOfBirth": dob("1912-06-23"),
			"sexAtBirth":  field.OptionValue("Male"),
		},
	}
}

// MustReadGoldenString returns the content of a golden file under the
// calling test's directory.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("golden %s: %v", path, err)
	}
	return string(data)
}

// CaptureTemplateOutput runs render with a buffer and returns what it
// returned alongside what it wrote.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (returned, written string) {
	t.Helper()
	var buf bytes.Buffer
	returned, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return returned, buf.String()
}
