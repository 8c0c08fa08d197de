// Package bootstrap turns configuration into the catalog and store back end
// the commands run on.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/goliatone/go-careforms/internal/config"
	"github.com/goliatone/go-careforms/pkg/fieldset"
	"github.com/goliatone/go-careforms/pkg/store"
	"github.com/goliatone/go-careforms/pkg/store/bolt"
	"github.com/goliatone/go-careforms/pkg/store/memory"
	"github.com/goliatone/go-careforms/pkg/store/rest"
	"github.com/goliatone/go-careforms/pkg/store/sqlite"
)

// Catalog loads the configured field-set directory and layers the embedded
// defaults and any OpenAPI imports beneath it.
func Catalog(ctx context.Context, cfg config.FieldSets, logger *zap.Logger) (*fieldset.Catalog, error) {
	var dir *fieldset.Catalog
	if cfg.Dir != "" {
		loaded, err := fieldset.LoadFS(os.DirFS(cfg.Dir))
		if err != nil {
			return nil, err
		}
		dir = loaded
	}
	return Compose(ctx, dir, cfg, logger)
}

// Compose builds the full catalog around pages loaded from the field-set
// directory. Directory pages win over defaults, which win over imports.
func Compose(ctx context.Context, dir *fieldset.Catalog, cfg config.FieldSets, logger *zap.Logger) (*fieldset.Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := fieldset.NewCatalog()
	out.Merge(dir)

	defaults, err := fieldset.Defaults()
	if err != nil {
		return nil, err
	}
	if skipped := out.Merge(defaults); len(skipped) > 0 {
		logger.Debug("defaults overridden", zap.Strings("pages", skipped))
	}

	for _, path := range cfg.OpenAPI {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: read %s: %w", path, err)
		}
		imported, err := fieldset.ImportOpenAPI(ctx, data, path)
		if err != nil {
			return nil, err
		}
		if skipped := out.Merge(imported); len(skipped) > 0 {
			logger.Info("openapi pages skipped", zap.String("source", path), zap.Strings("pages", skipped))
		}
	}
	return out, nil
}

// Backend opens the configured store driver.
func Backend(ctx context.Context, cfg config.Store, logger *zap.Logger) (store.Backend, error) {
	switch cfg.Driver {
	case "", config.DriverMemory:
		return memory.NewBackend(), nil
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.DSN)
	case config.DriverBolt:
		return bolt.Open(cfg.DSN, 0o600)
	case config.DriverREST:
		opts := []rest.Option{rest.WithLogger(logger)}
		if cfg.Token != "" {
			opts = append(opts, rest.WithTokenSource(rest.StaticToken(cfg.Token)))
		}
		return rest.New(cfg.BaseURL, opts...)
	default:
		return nil, fmt.Errorf("bootstrap: unknown store driver %q", cfg.Driver)
	}
}
