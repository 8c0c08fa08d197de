package tui

import "errors"

var (
	// ErrAborted is returned when the user interrupts a prompt.
	ErrAborted = errors.New("tui: prompt interrupted")
	// ErrNotEditing is returned when a read-only form is handed to EditForm.
	ErrNotEditing = errors.New("tui: form is not editable")
)
