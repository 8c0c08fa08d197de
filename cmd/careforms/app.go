package main

import (
	"context"

	"github.com/goliatone/go-careforms"
	"github.com/goliatone/go-careforms/internal/bootstrap"
	"github.com/goliatone/go-careforms/pkg/notify"
)

func openApp(ctx context.Context, notifiers ...notify.Notifier) (*careforms.App, error) {
	catalog, err := bootstrap.Catalog(ctx, cfg.FieldSets, logger)
	if err != nil {
		return nil, err
	}
	backend, err := bootstrap.Backend(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	opts := []careforms.Option{careforms.WithLogger(logger)}
	for _, n := range notifiers {
		opts = append(opts, careforms.WithNotifier(n))
	}
	return careforms.New(catalog, backend, opts...), nil
}
