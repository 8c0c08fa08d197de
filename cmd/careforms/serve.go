package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-careforms/internal/bootstrap"
	"github.com/goliatone/go-careforms/internal/server"
	"github.com/goliatone/go-careforms/pkg/fieldset"
	"github.com/goliatone/go-careforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-careforms/pkg/session"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the admin pages and JSON API over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	renderer, err := vanilla.New(
		vanilla.WithLiveRefresh(cfg.Server.LiveRefresh),
		vanilla.WithTemplatesDir(cfg.Server.TemplatesDir),
	)
	if err != nil {
		return err
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithBasePath(cfg.Server.BasePath),
		server.WithRenderer(renderer),
	}
	if cfg.Theme.Name != "" {
		opts = append(opts, server.WithTheme(server.NewManifestSelector(cfg.Theme.Manifest()), cfg.Theme.Name, cfg.Theme.Variant))
	}
	if cfg.AuthEnabled() {
		manager, err := session.NewManager(cfg.Session.Secret, session.WithTTL(cfg.Session.TTL))
		if err != nil {
			return err
		}
		opts = append(opts, server.WithAuth(manager, session.NewAuthenticator(cfg.Session.Users), cfg.Session.Secure))
	} else {
		logger.Warn("no users configured, pages are served without login")
	}

	srv, err := server.New(app, opts...)
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, addr, cfg.Server.ShutdownGrace)
	})
	if cfg.FieldSets.Watch && cfg.FieldSets.Dir != "" {
		watcher := fieldset.NewWatcher(cfg.FieldSets.Dir, func(dir *fieldset.Catalog) {
			catalog, err := bootstrap.Compose(gctx, dir, cfg.FieldSets, logger)
			if err != nil {
				logger.Error("field set reload failed", zap.Error(err))
				return
			}
			app.SetCatalog(catalog)
		}, fieldset.WithWatchLogger(logger))
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}
	return g.Wait()
}
