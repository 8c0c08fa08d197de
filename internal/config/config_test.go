package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "careforms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Addr, cfg.Server.Addr)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.False(t, cfg.AuthEnabled())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
server:
  addr: 127.0.0.1:9090
  shutdown_grace: 3s
store:
  driver: sqlite
  dsn: care.db
session:
  secret: from-file-secret-value
  ttl: 30m
  users:
    - username: nurse
      name: Night Nurse
      password_hash: $2a$10$abcdefghijklmnopqrstuv
fieldsets:
  dir: ./fieldsets
  watch: true
theme:
  name: care
  variant: dark
  tokens:
    brand: "#0055aa"
  variants:
    dark:
      tokens:
        brand: "#112233"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownGrace)
	assert.True(t, cfg.Server.LiveRefresh, "unset keys keep defaults")
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	require.Len(t, cfg.Session.Users, 1)
	assert.Equal(t, "Night Nurse", cfg.Session.Users[0].Name)
	assert.True(t, cfg.FieldSets.Watch)
	assert.True(t, cfg.AuthEnabled())

	m := cfg.Theme.Manifest()
	require.NotNil(t, m)
	assert.Equal(t, "care", m.Name)
	assert.Equal(t, "#112233", m.Variants["dark"].Tokens["brand"])
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvSessionSecret, "env-secret-value-123")
	t.Setenv(EnvStoreDSN, "/var/lib/careforms/care.bolt")
	path := writeFile(t, "store:\n  driver: bolt\nsession:\n  secret: file-secret\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-secret-value-123", cfg.Session.Secret)
	assert.Equal(t, "/var/lib/careforms/care.bolt", cfg.Store.DSN)
}

func TestValidate(t *testing.T) {
	cases := map[string]Config{
		"unknown driver": {Store: Store{Driver: "mongo"}},
		"sqlite no dsn":  {Store: Store{Driver: DriverSQLite}},
		"rest no url":    {Store: Store{Driver: DriverREST}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Config{Store: Store{Driver: DriverREST, BaseURL: "http://api"}}.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestTheme_ManifestEmpty(t *testing.T) {
	assert.Nil(t, Theme{}.Manifest())
}
