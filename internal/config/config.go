// Package config loads the careforms YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-careforms/pkg/session"
)

const (
	EnvSessionSecret = "CAREFORMS_SESSION_SECRET"
	EnvStoreDSN      = "CAREFORMS_STORE_DSN"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverREST   = "rest"
)

type Config struct {
	Server    Server    `json:"server" yaml:"server"`
	Store     Store     `json:"store" yaml:"store"`
	Session   Session   `json:"session" yaml:"session"`
	FieldSets FieldSets `json:"fieldsets" yaml:"fieldsets"`
	Theme     Theme     `json:"theme" yaml:"theme"`
	Log       Log       `json:"log" yaml:"log"`
}

type Server struct {
	Addr          string        `json:"addr" yaml:"addr"`
	BasePath      string        `json:"base_path,omitempty" yaml:"base_path,omitempty"`
	ShutdownGrace time.Duration `json:"shutdown_grace" yaml:"shutdown_grace"`
	LiveRefresh   bool          `json:"live_refresh" yaml:"live_refresh"`
	TemplatesDir  string        `json:"templates_dir,omitempty" yaml:"templates_dir,omitempty"`
}

type Store struct {
	Driver  string `json:"driver" yaml:"driver"`
	DSN     string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	// Token is sent as a bearer token by the rest driver.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

type Session struct {
	Secret string         `json:"secret" yaml:"secret"`
	TTL    time.Duration  `json:"ttl" yaml:"ttl"`
	Secure bool           `json:"secure_cookie,omitempty" yaml:"secure_cookie,omitempty"`
	Users  []session.User `json:"users" yaml:"users"`
}

type FieldSets struct {
	// Dir holds YAML/JSON field sets loaded on top of the embedded defaults.
	Dir   string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Watch bool   `json:"watch" yaml:"watch"`
	// OpenAPI lists documents whose component schemas become extra pages.
	OpenAPI []string `json:"openapi,omitempty" yaml:"openapi,omitempty"`
}

type Theme struct {
	Name     string                  `json:"name,omitempty" yaml:"name,omitempty"`
	Variant  string                  `json:"variant,omitempty" yaml:"variant,omitempty"`
	Tokens   map[string]string       `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Partials map[string]string       `json:"partials,omitempty" yaml:"partials,omitempty"`
	Assets   ThemeAssets             `json:"assets,omitempty" yaml:"assets,omitempty"`
	Variants map[string]ThemeVariant `json:"variants,omitempty" yaml:"variants,omitempty"`
}

type ThemeAssets struct {
	Prefix string            `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Files  map[string]string `json:"files,omitempty" yaml:"files,omitempty"`
}

type ThemeVariant struct {
	Tokens   map[string]string `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Partials map[string]string `json:"partials,omitempty" yaml:"partials,omitempty"`
	Assets   ThemeAssets       `json:"assets,omitempty" yaml:"assets,omitempty"`
}

type Log struct {
	Level string `json:"level" yaml:"level"`
}

// Default returns a configuration that serves the embedded field sets from
// memory on :8080.
func Default() Config {
	return Config{
		Server: Server{
			Addr:          ":8080",
			ShutdownGrace: 10 * time.Second,
			LiveRefresh:   true,
		},
		Store:   Store{Driver: DriverMemory},
		Session: Session{TTL: session.DefaultTTL},
		Log:     Log{Level: "info"},
	}
}

// Load reads path over Default and applies environment overrides. An empty
// path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvSessionSecret); ok && v != "" {
		c.Session.Secret = v
	}
	if v, ok := lookup(EnvStoreDSN); ok && v != "" {
		c.Store.DSN = v
	}
}

// Validate checks the store driver and its connection settings.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite, DriverBolt:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("config: store.dsn is required for driver %q", c.Store.Driver))
		}
	case DriverREST:
		if c.Store.BaseURL == "" {
			errs = append(errs, errors.New("config: store.base_url is required for driver \"rest\""))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown store driver %q", c.Store.Driver))
	}
	if c.Server.ShutdownGrace < 0 {
		errs = append(errs, errors.New("config: server.shutdown_grace must not be negative"))
	}
	return errors.Join(errs...)
}

// AuthEnabled reports whether pages sit behind a login.
func (c Config) AuthEnabled() bool {
	return len(c.Session.Users) > 0
}

// Manifest converts the theme section into a go-theme manifest. It returns
// nil when no theme is named.
func (t Theme) Manifest() *theme.Manifest {
	if strings.TrimSpace(t.Name) == "" {
		return nil
	}
	m := &theme.Manifest{
		Name:      t.Name,
		Version:   "1.0.0",
		Tokens:    t.Tokens,
		Templates: t.Partials,
		Assets:    theme.Assets{Prefix: t.Assets.Prefix, Files: t.Assets.Files},
	}
	if len(t.Variants) > 0 {
		m.Variants = make(map[string]theme.Variant, len(t.Variants))
		for name, v := range t.Variants {
			m.Variants[name] = theme.Variant{
				Tokens:    v.Tokens,
				Templates: v.Partials,
				Assets:    theme.Assets{Prefix: v.Assets.Prefix, Files: v.Assets.Files},
			}
		}
	}
	return m
}
