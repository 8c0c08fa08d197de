package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-careforms/internal/config"
	"github.com/goliatone/go-careforms/pkg/fieldset"
	"github.com/goliatone/go-careforms/pkg/renderers/tui"
	"github.com/goliatone/go-careforms/pkg/session"
)

type credentials struct {
	tui.PromptDriver
	username, password string
}

func (c credentials) Input(context.Context, tui.InputConfig) (string, error) {
	return c.username, nil
}

func (c credentials) Password(context.Context, tui.InputConfig) (string, error) {
	return c.password, nil
}

func withConfig(t *testing.T, c config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func TestLogin(t *testing.T) {
	hash, err := session.HashPassword("s3cret-pass")
	require.NoError(t, err)

	c := config.Default()
	withConfig(t, c)
	assert.NoError(t, login(context.Background(), credentials{}), "no users means no login")

	c.Session.Secret = "0123456789abcdef0123"
	c.Session.Users = []session.User{{Username: "nurse", PasswordHash: hash}}
	withConfig(t, c)

	assert.NoError(t, login(context.Background(), credentials{username: "Nurse", password: "s3cret-pass"}))

	err = login(context.Background(), credentials{username: "nurse", password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "invalid username or password", err.Error())
}

func TestImportOpenAPIWritesFieldSets(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "care.yaml")
	require.NoError(t, os.WriteFile(src, []byte(`
openapi: 3.0.3
info: {title: care, version: "1"}
paths: {}
components:
  schemas:
    Visit:
      type: object
      required: [visitor]
      properties:
        visitor: {type: string}
        arrived: {type: string, format: date}
`), 0o600))

	importOut = filepath.Join(dir, "out", "visits.yaml")
	t.Cleanup(func() { importOut = "" })
	require.NoError(t, os.MkdirAll(filepath.Dir(importOut), 0o755))

	importCmd.SetContext(context.Background())
	require.NoError(t, runImport(importCmd, []string{src}))

	catalog, err := fieldset.LoadFS(os.DirFS(filepath.Dir(importOut)))
	require.NoError(t, err)
	page, ok := catalog.Page("visit")
	require.True(t, ok)
	assert.Equal(t, []string{"arrived", "visitor"}, page.Fields.Keys())

	d, _ := page.Fields.Lookup("visitor")
	assert.True(t, d.Required)
}

func TestRootCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "list", "show", "add", "edit", "delete", "fieldsets", "hash-password"} {
		assert.True(t, names[want], want)
	}
}
