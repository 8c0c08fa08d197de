// Package tui renders page screens as terminal text and drives interactive
// editing sessions through survey prompts.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/goliatone/go-careforms/pkg/form"
	"github.com/goliatone/go-careforms/pkg/notify"
	"github.com/goliatone/go-careforms/pkg/render"
	cftable "github.com/goliatone/go-careforms/pkg/table"
)

const (
	Name = "tui"
	// noneOption is offered first on optional select/radio prompts.
	noneOption = "(none)"
)

// Renderer implements render.Renderer for terminals.
type Renderer struct {
	driver PromptDriver
	styles Styles
	out    io.Writer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with the survey driver and default styles.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		styles: DefaultStyles(),
		out:    os.Stdout,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(r.out)
	}
	return r, nil
}

func (r *Renderer) Name() string        { return Name }
func (r *Renderer) ContentType() string { return "text/plain; charset=utf-8" }

// Render draws the screen: a record table, an open form, or a pending
// confirmation.
func (r *Renderer) Render(ctx context.Context, screen render.Screen, _ render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(r.styles.Title.Render(screen.Heading))
	b.WriteString("\n")
	for _, n := range screen.Notices {
		b.WriteString(r.notice(n.Kind, n.Message))
		b.WriteString("\n")
	}

	switch {
	case screen.Confirm != nil:
		b.WriteString(screen.Confirm.Message)
		b.WriteString("\n")
	case screen.Form != nil:
		r.writeForm(&b, screen.Form)
	default:
		r.writeTable(&b, screen)
	}
	return []byte(b.String()), nil
}

func (r *Renderer) writeTable(b *strings.Builder, screen render.Screen) {
	if len(screen.Rows) == 0 {
		b.WriteString(r.styles.Muted.Render("No records found"))
		b.WriteString("\n")
		return
	}

	headers := []string{"ID"}
	for _, col := range screen.Columns {
		if col.Actions {
			continue
		}
		headers = append(headers, col.Label)
	}
	rows := make([][]string, 0, len(screen.Rows))
	for _, row := range screen.Rows {
		cells := make([]string, 0, len(row.Cells)+1)
		cells = append(cells, row.ID)
		for _, cell := range row.Cells {
			cells = append(cells, cell.Text)
		}
		rows = append(rows, cells)
	}

	styles := r.styles
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.Header
			case row%2 == 1:
				return styles.AltCell
			default:
				return styles.Cell
			}
		}).
		Headers(headers...).
		Rows(rows...)

	b.WriteString(t.String())
	b.WriteString("\n")
	p := screen.Pagination
	b.WriteString(r.styles.Muted.Render(fmt.Sprintf("Page %d of %d (%d records)", p.Page, p.PageCount, p.Total)))
	b.WriteString("\n")
}

func (r *Renderer) writeForm(b *strings.Builder, view *render.FormView) {
	if view.Notice != "" {
		b.WriteString(r.notice(notify.KindError, view.Notice))
		b.WriteString("\n")
	}
	for _, ctrl := range view.Controls {
		if ctrl.Hidden {
			continue
		}
		b.WriteString(r.styles.Label.Render(ctrl.Label + ":"))
		b.WriteString(" ")
		b.WriteString(controlText(ctrl))
		b.WriteString("\n")
		for _, msg := range ctrl.Errors {
			b.WriteString("  ")
			b.WriteString(r.styles.Error.Render(msg))
			b.WriteString("\n")
		}
	}
}

func (r *Renderer) notice(kind, message string) string {
	if kind == notify.KindError {
		return r.styles.Error.Render(message)
	}
	return r.styles.Success.Render(message)
}

// EditForm prompts for every visible control and submits the form. Invalid
// submissions print the errors and prompt again for the failing fields.
// Failing hidden fields cannot be prompted for and end the session with
// form.ErrHiddenInvalid.
func (r *Renderer) EditForm(ctx context.Context, f *form.Form) error {
	if !f.Editing() {
		return ErrNotEditing
	}
	pending := f.Controls()
	for {
		for _, ctrl := range pending {
			if ctrl.ReadOnly {
				continue
			}
			raw, err := r.prompt(ctx, ctrl)
			if err != nil {
				return err
			}
			if err := f.SetInput(ctrl.Key, raw); err != nil {
				return err
			}
		}
		if f.Submit() {
			return nil
		}
		if err := f.HiddenErrors(); err != nil {
			return err
		}

		if err := r.driver.Info(ctx, r.styles.Error.Render(f.Notice())); err != nil {
			return err
		}
		pending = pending[:0]
		for _, ctrl := range f.Controls() {
			if len(ctrl.Errors) == 0 {
				continue
			}
			pending = append(pending, ctrl)
			msg := fmt.Sprintf("%s: %s", ctrl.Label, strings.Join(ctrl.Errors, ", "))
			if err := r.driver.Info(ctx, r.styles.Error.Render(msg)); err != nil {
				return err
			}
		}
	}
}

func (r *Renderer) prompt(ctx context.Context, ctrl render.Control) (string, error) {
	message := ctrl.Label
	if ctrl.Required {
		message += " *"
	}
	help := ctrl.Description
	if ctrl.Mask != "" {
		help = strings.TrimSpace(help + " Format " + ctrl.Mask)
	}

	switch ctrl.Widget {
	case render.WidgetSelect, render.WidgetRadio:
		options := make([]string, 0, len(ctrl.Options)+1)
		values := make([]string, 0, len(ctrl.Options)+1)
		if !ctrl.Required {
			options = append(options, noneOption)
			values = append(values, "")
		}
		selected := 0
		for _, opt := range ctrl.Options {
			if opt.Selected {
				selected = len(options)
			}
			options = append(options, opt.Label)
			values = append(values, opt.Value)
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: message, Options: options, DefaultIndex: selected, Help: help})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(values) {
			return "", nil
		}
		return values[idx], nil
	case render.WidgetTextarea:
		return r.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: ctrl.Value, Help: help})
	default:
		return r.driver.Input(ctx, InputConfig{Message: message, Default: ctrl.Value, Help: help})
	}
}

// Confirmer asks yes/no questions through the prompt driver. The default
// answer is no.
func (r *Renderer) Confirmer() cftable.Confirmer {
	return cftable.ConfirmFunc(func(ctx context.Context, message string) (bool, error) {
		return r.driver.Confirm(ctx, ConfirmConfig{Message: message})
	})
}

// Notifier prints styled notices to the renderer output.
func (r *Renderer) Notifier() notify.Notifier {
	return printer{r: r}
}

type printer struct{ r *Renderer }

func (p printer) NotifySuccess(message string) {
	fmt.Fprintln(p.r.out, p.r.notice(notify.KindSuccess, message))
}

func (p printer) NotifyError(message string) {
	fmt.Fprintln(p.r.out, p.r.notice(notify.KindError, message))
}

func controlText(ctrl render.Control) string {
	if len(ctrl.Options) > 0 {
		for _, opt := range ctrl.Options {
			if opt.Selected {
				return opt.Label
			}
		}
		return ""
	}
	return ctrl.Value
}
