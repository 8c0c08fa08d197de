package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-careforms/pkg/fieldset"
	"github.com/goliatone/go-careforms/pkg/renderers/tui"
	"github.com/goliatone/go-careforms/pkg/session"
)

var importOut string

var fieldsetsCmd = &cobra.Command{
	Use:   "fieldsets",
	Short: "Inspect and generate field-set files",
}

var lintCmd = &cobra.Command{
	Use:   "lint [dir]",
	Short: "Parse a field-set directory and list its pages",
	Long:  "Parses every .yaml/.yml/.json file under dir (defaults to fieldsets.dir, then the embedded defaults) and reports the first error.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLint,
}

var importCmd = &cobra.Command{
	Use:   "import-openapi <file>",
	Short: "Convert OpenAPI component schemas into a field-set file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Prompt for a password and print its bcrypt hash for session.users",
	Args:  cobra.NoArgs,
	RunE:  runHashPassword,
}

func init() {
	importCmd.Flags().StringVarP(&importOut, "out", "o", "", "write to file instead of stdout")
	fieldsetsCmd.AddCommand(lintCmd, importCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	dir := cfg.FieldSets.Dir
	if len(args) == 1 {
		dir = args[0]
	}

	var (
		catalog *fieldset.Catalog
		err     error
	)
	if dir == "" {
		catalog, err = fieldset.Defaults()
	} else {
		catalog, err = fieldset.LoadFS(os.DirFS(dir))
	}
	if err != nil {
		return err
	}

	var issues []fieldset.Issue
	for _, path := range cfg.FieldSets.OpenAPI {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		issues = append(issues, fieldset.CheckOpenAPI(cmd.Context(), data, path)...)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PAGE\tTITLE\tFIELDS\tSOURCE")
	for _, page := range catalog.Pages() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", page.Name, page.Title, page.Fields.Len(), page.Source)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(issues) > 0 {
		printIssues(issues)
		return fmt.Errorf("%d schema issues", len(issues))
	}
	return nil
}

func printIssues(issues []fieldset.Issue) {
	for _, issue := range issues {
		where := issue.Field
		if where == "" {
			where = issue.Path
		}
		if where == "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", issue.Source, issue.Message)
			continue
		}
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", issue.Source, where, issue.Message)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	if issues := fieldset.CheckOpenAPI(cmd.Context(), data, args[0]); len(issues) > 0 {
		printIssues(issues)
		return fmt.Errorf("%s: %d schema issues", args[0], len(issues))
	}
	catalog, err := fieldset.ImportOpenAPI(cmd.Context(), data, args[0])
	if err != nil {
		return err
	}
	out, err := fieldset.Encode(catalog)
	if err != nil {
		return err
	}
	if importOut == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(importOut, out, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %d pages to %s\n", len(catalog.Names()), importOut)
	return nil
}

func runHashPassword(cmd *cobra.Command, _ []string) error {
	driver := tui.NewSurveyDriver(os.Stderr)
	password, err := driver.Password(cmd.Context(), tui.InputConfig{Message: "Password"})
	if err != nil {
		return err
	}
	hash, err := session.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, hash)
	return nil
}
