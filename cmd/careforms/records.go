package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-careforms"
	"github.com/goliatone/go-careforms/pkg/render"
	"github.com/goliatone/go-careforms/pkg/renderers/tui"
	"github.com/goliatone/go-careforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-careforms/pkg/session"
	"github.com/goliatone/go-careforms/pkg/table"
)

var (
	listQuery string
	listSort  string
	listDesc  bool
	listPage  int
	listFmt   string

	showEdit  bool
	deleteYes bool
)

var listCmd = &cobra.Command{
	Use:   "list <page>",
	Short: "Print the records of a page",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <page> <id>",
	Short: "Print one record, optionally switching to edit",
	Args:  cobra.ExactArgs(2),
	RunE:  runShow,
}

var addCmd = &cobra.Command{
	Use:   "add <page>",
	Short: "Add a record through prompts",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <page> <id>",
	Short: "Edit a record through prompts",
	Args:  cobra.ExactArgs(2),
	RunE:  runEdit,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <page> <id>",
	Short: "Delete a record after confirmation",
	Args:  cobra.ExactArgs(2),
	RunE:  runDelete,
}

func init() {
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "filter rows containing text")
	listCmd.Flags().StringVar(&listSort, "sort", "", "sort by field key")
	listCmd.Flags().BoolVar(&listDesc, "desc", false, "sort descending")
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "page number")
	listCmd.Flags().StringVarP(&listFmt, "format", "f", tui.Name, "renderer: tui or vanilla (HTML)")

	showCmd.Flags().BoolVarP(&showEdit, "edit", "e", false, "edit the record after showing it")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
}

// console bundles what the record commands share.
type console struct {
	renderer *tui.Renderer
	app      *careforms.App
	session  *careforms.Session
}

// openConsole logs in and opens page. Deletes are confirmed by confirm, or
// by a terminal prompt when confirm is nil.
func openConsole(ctx context.Context, page string, confirm table.Confirmer) (*console, error) {
	renderer, err := tui.New(tui.WithOutput(os.Stdout))
	if err != nil {
		return nil, err
	}
	if err := login(ctx, renderer.Driver()); err != nil {
		return nil, err
	}
	app, err := openApp(ctx)
	if err != nil {
		return nil, err
	}
	if confirm == nil {
		confirm = renderer.Confirmer()
	}
	s, err := app.Open(ctx, page,
		careforms.WithConfirmer(confirm),
		careforms.WithSessionNotifier(renderer.Notifier()),
	)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	return &console{renderer: renderer, app: app, session: s}, nil
}

func (c *console) Close() error { return c.app.Close() }

func (c *console) print(ctx context.Context) error {
	return c.printAs(ctx, tui.Name)
}

// printAs renders the current screen with the named renderer.
func (c *console) printAs(ctx context.Context, format string) error {
	html, err := vanilla.New()
	if err != nil {
		return err
	}
	reg, err := render.NewRegistry(c.renderer, html)
	if err != nil {
		return err
	}
	rd, err := reg.Lookup(format)
	if err != nil {
		return err
	}
	out, err := rd.Render(ctx, c.session.Screen(), render.RenderOptions{Pages: c.app.Nav(c.session.Page.Name)})
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

// edit prompts through the open form and reports a failed store call.
func (c *console) edit(ctx context.Context) error {
	if err := c.renderer.EditForm(ctx, c.session.Table.Form()); err != nil {
		return err
	}
	return c.session.Coordinator.Err()
}

// login asks for credentials when users are configured.
func login(ctx context.Context, driver tui.PromptDriver) error {
	if !cfg.AuthEnabled() {
		return nil
	}
	auth := session.NewAuthenticator(cfg.Session.Users)
	username, err := driver.Input(ctx, tui.InputConfig{Message: "Username"})
	if err != nil {
		return err
	}
	password, err := driver.Password(ctx, tui.InputConfig{Message: "Password"})
	if err != nil {
		return err
	}
	if _, err := auth.Authenticate(username, password); err != nil {
		if errors.Is(err, session.ErrBadCredentials) {
			return errors.New("invalid username or password")
		}
		return err
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := openConsole(ctx, args[0], nil)
	if err != nil {
		return err
	}
	defer c.Close()

	tbl := c.session.Table
	tbl.Filter(listQuery)
	if listSort != "" {
		if err := tbl.Sort(listSort, listDesc); err != nil {
			return err
		}
	}
	tbl.SetPage(listPage)
	return c.printAs(ctx, listFmt)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := openConsole(ctx, args[0], nil)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.session.Table.View(args[1]); err != nil {
		return err
	}
	if err := c.print(ctx); err != nil {
		return err
	}
	if !showEdit {
		return nil
	}
	if err := c.session.EditSelected(); err != nil {
		return err
	}
	return c.edit(ctx)
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := openConsole(ctx, args[0], nil)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.session.Table.Add(); err != nil {
		return err
	}
	return c.edit(ctx)
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := openConsole(ctx, args[0], nil)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.session.Table.Edit(args[1]); err != nil {
		return err
	}
	return c.edit(ctx)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	var confirm table.Confirmer
	if deleteYes {
		confirm = table.Answer(true)
	}
	c, err := openConsole(ctx, args[0], confirm)
	if err != nil {
		return err
	}
	defer c.Close()

	deleted, err := c.session.Table.Delete(ctx, args[1])
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintln(os.Stdout, "Nothing deleted")
		return nil
	}
	return c.session.Coordinator.Err()
}
