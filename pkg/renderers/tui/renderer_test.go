package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-careforms/pkg/field"
	"github.com/goliatone/go-careforms/pkg/form"
	"github.com/goliatone/go-careforms/pkg/record"
	"github.com/goliatone/go-careforms/pkg/render"
	"github.com/goliatone/go-careforms/pkg/table"
	"github.com/goliatone/go-careforms/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	prompts      []string
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	return "", errors.New("no password scripted")
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func newTestRenderer(t *testing.T, driver PromptDriver, out *bytes.Buffer) *Renderer {
	t.Helper()
	r, err := New(WithPromptDriver(driver), WithOutput(out))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestEditForm_RepromptsInvalidFields(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"", "Hopper", "grace@navy.mil", "1906-12-09", "", "Grace"},
		selectIdx: []int{2},
		textAreas: []string{""},
	}
	r := newTestRenderer(t, driver, &bytes.Buffer{})

	var saved record.Values
	f := form.New(testsupport.ResidentFields(), record.Record{},
		form.WithMode(form.ModeAdd),
		form.OnSave(func(v record.Values) { saved = v }),
	)

	if err := r.EditForm(context.Background(), f); err != nil {
		t.Fatalf("edit form: %v", err)
	}
	if saved == nil {
		t.Fatalf("save callback not called")
	}

	want := record.Values{
		"firstName":   field.Text("Grace"),
		"lastName":    field.Text("Hopper"),
		"sexAtBirth":  field.OptionValue("Female"),
		"dateOfBirth": saved["dateOfBirth"],
	}
	got := record.Values{
		"firstName":   saved["firstName"],
		"lastName":    saved["lastName"],
		"sexAtBirth":  saved["sexAtBirth"],
		"dateOfBirth": saved["dateOfBirth"],
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("saved values mismatch (-want +got):\n%s", diff)
	}
	if got := saved["dateOfBirth"].String(); got != "1906-12-09" {
		t.Fatalf("dateOfBirth = %q, want 1906-12-09", got)
	}

	if len(driver.infoMessages) != 2 {
		t.Fatalf("expected 2 info messages, got %q", driver.infoMessages)
	}
	if !strings.Contains(driver.infoMessages[0], form.NoticeInvalid) {
		t.Fatalf("first message %q missing notice", driver.infoMessages[0])
	}
	if !strings.Contains(driver.infoMessages[1], "First Name: This field is required") {
		t.Fatalf("second message %q missing field error", driver.infoMessages[1])
	}
	if last := driver.prompts[len(driver.prompts)-1]; last != "First Name *" {
		t.Fatalf("last prompt = %q, want %q", last, "First Name *")
	}
}

func TestEditForm_HiddenFailureStops(t *testing.T) {
	driver := &stubDriver{inputs: []string{"Hopper"}}
	r := newTestRenderer(t, driver, &bytes.Buffer{})
	set := field.MustSet(
		field.Descriptor{Key: "lastName", Label: "Last Name", Required: true},
		field.Descriptor{Key: "facilityId", Hidden: true, Required: true},
	)
	f := form.New(set, record.Record{}, form.WithMode(form.ModeAdd))

	err := r.EditForm(context.Background(), f)
	if !errors.Is(err, form.ErrHiddenInvalid) {
		t.Fatalf("expected ErrHiddenInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "facilityId") {
		t.Fatalf("error %q does not name the hidden field", err)
	}
	if diff := cmp.Diff([]string{"Last Name *"}, driver.prompts); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
}

func TestEditForm_AbortStops(t *testing.T) {
	r := newTestRenderer(t, &stubDriver{}, &bytes.Buffer{})
	f := form.New(testsupport.ResidentFields(), record.Record{}, form.WithMode(form.ModeAdd))

	err := r.EditForm(context.Background(), f)
	if err == nil || !strings.Contains(err.Error(), "no input scripted") {
		t.Fatalf("expected driver error, got %v", err)
	}
}

func TestEditForm_ReadOnly(t *testing.T) {
	r := newTestRenderer(t, &stubDriver{}, &bytes.Buffer{})
	f := form.New(testsupport.ResidentFields(), testsupport.ResidentRecords()[0], form.WithMode(form.ModeDetail))
	if err := r.EditForm(context.Background(), f); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}
}

func TestRender_Table(t *testing.T) {
	r := newTestRenderer(t, &stubDriver{}, &bytes.Buffer{})
	tbl := table.New(testsupport.ResidentFields(), table.WithTitle("Resident"))
	tbl.SetRecords(testsupport.ResidentRecords())

	out, err := r.Render(context.Background(), tbl.Screen("residents"), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	text := string(out)
	for _, want := range []string{"Resident", "First Name", "Lovelace", "Turing", "r1", "123-45-6789", "Page 1 of 1 (2 records)"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output\n%s", want, text)
		}
	}
	if strings.Contains(text, "Actions") {
		t.Fatalf("terminal table should not carry an actions column\n%s", text)
	}
}

func TestRender_FormAndConfirm(t *testing.T) {
	r := newTestRenderer(t, &stubDriver{}, &bytes.Buffer{})
	tbl := table.New(testsupport.ResidentFields(), table.WithTitle("Resident"))
	tbl.SetRecords(testsupport.ResidentRecords())
	if _, err := tbl.View("r1"); err != nil {
		t.Fatalf("view: %v", err)
	}

	out, err := r.Render(context.Background(), tbl.Screen("residents"), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render form: %v", err)
	}
	text := string(out)
	for _, want := range []string{"View Resident", "Ada", "Female"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output\n%s", want, text)
		}
	}

	screen := tbl.Screen("residents")
	screen.Form = nil
	screen.Confirm = &render.Confirmation{RecordID: "r1", Message: table.DeletePrompt}
	out, err = r.Render(context.Background(), screen, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render confirm: %v", err)
	}
	if !strings.Contains(string(out), table.DeletePrompt) {
		t.Fatalf("expected delete prompt\n%s", out)
	}
}

func TestConfirmerAndNotifier(t *testing.T) {
	var out bytes.Buffer
	r := newTestRenderer(t, &stubDriver{confirm: []bool{true}}, &out)

	ok, err := r.Confirmer().Confirm(context.Background(), table.DeletePrompt)
	if err != nil || !ok {
		t.Fatalf("confirm = %v, %v; want true, nil", ok, err)
	}

	r.Notifier().NotifySuccess("Record saved successfully")
	r.Notifier().NotifyError("Failed to save record")
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", lines)
	}
	if !strings.Contains(lines[0], "Record saved successfully") || !strings.Contains(lines[1], "Failed to save record") {
		t.Fatalf("unexpected notifier output %q", lines)
	}
}
