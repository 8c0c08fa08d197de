// Package careforms wires field-set pages to record stores. An App holds the
// page catalog and one Store per collection; Open returns a Session that
// couples a page's table to the mutation coordinator for one interaction.
package careforms

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-careforms/pkg/fieldset"
	"github.com/goliatone/go-careforms/pkg/mutation"
	"github.com/goliatone/go-careforms/pkg/notify"
	"github.com/goliatone/go-careforms/pkg/render"
	"github.com/goliatone/go-careforms/pkg/store"
	"github.com/goliatone/go-careforms/pkg/table"
	"github.com/goliatone/go-careforms/pkg/validation"
)

// ErrUnknownPage is returned by Open for names missing from the catalog.
var ErrUnknownPage = errors.New("careforms: unknown page")

// Option configures an App.
type Option func(*App)

func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithNotifier adds a notifier that receives every session's notices in
// addition to the session flash.
func WithNotifier(n notify.Notifier) Option {
	return func(a *App) {
		if n != nil {
			a.notifiers = append(a.notifiers, n)
		}
	}
}

type App struct {
	mu        sync.RWMutex
	catalog   *fieldset.Catalog
	backend   store.Backend
	stores    map[string]store.Store
	logger    *zap.Logger
	notifiers []notify.Notifier
	listeners []func(page string)
}

func New(catalog *fieldset.Catalog, backend store.Backend, opts ...Option) *App {
	if catalog == nil {
		catalog = fieldset.NewCatalog()
	}
	a := &App{
		catalog: catalog,
		backend: backend,
		stores:  make(map[string]store.Store),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

func (a *App) Logger() *zap.Logger { return a.logger }

// Catalog returns the current page catalog.
func (a *App) Catalog() *fieldset.Catalog {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.catalog
}

// SetCatalog swaps the catalog, typically after a field-set reload. Open
// stores are kept.
func (a *App) SetCatalog(c *fieldset.Catalog) {
	if c == nil {
		return
	}
	a.mu.Lock()
	a.catalog = c
	a.mu.Unlock()
	a.logger.Info("field sets reloaded", zap.Strings("pages", c.Names()))
}

// Pages lists pages in navigation order.
func (a *App) Pages() []fieldset.Page {
	return a.Catalog().Pages()
}

// Nav builds navigation entries with active marked.
func (a *App) Nav(active string) []render.NavEntry {
	pages := a.Pages()
	out := make([]render.NavEntry, 0, len(pages))
	for _, p := range pages {
		out = append(out, render.NavEntry{Name: p.Name, Title: p.Title, Active: p.Name == active})
	}
	return out
}

// OnChange registers fn to run after a record of a page is saved or deleted.
func (a *App) OnChange(fn func(page string)) {
	if fn == nil {
		return
	}
	a.mu.Lock()
	a.listeners = append(a.listeners, fn)
	a.mu.Unlock()
}

func (a *App) changed(page string) {
	a.mu.RLock()
	listeners := append([]func(string){}, a.listeners...)
	a.mu.RUnlock()
	for _, fn := range listeners {
		fn(page)
	}
}

// Store returns the store for a page, opening it on first use.
func (a *App) Store(ctx context.Context, page fieldset.Page) (store.Store, error) {
	a.mu.RLock()
	s, ok := a.stores[page.Name]
	a.mu.RUnlock()
	if ok {
		return s, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.stores[page.Name]; ok {
		return s, nil
	}
	s, err := a.backend.Open(ctx, store.Collection{Name: page.Name, IDField: page.IDField, Endpoint: page.Endpoint})
	if err != nil {
		return nil, fmt.Errorf("careforms: open store %s: %w", page.Name, err)
	}
	a.stores[page.Name] = s
	return s, nil
}

// Close releases the backend.
func (a *App) Close() error {
	a.mu.Lock()
	a.stores = make(map[string]store.Store)
	a.mu.Unlock()
	return a.backend.Close()
}

// SessionOption configures a Session.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	confirmer table.Confirmer
	notifiers []notify.Notifier
}

// WithConfirmer answers delete confirmations for the session.
func WithConfirmer(c table.Confirmer) SessionOption {
	return func(cfg *sessionConfig) { cfg.confirmer = c }
}

// WithSessionNotifier adds a notifier for this session only.
func WithSessionNotifier(n notify.Notifier) SessionOption {
	return func(cfg *sessionConfig) {
		if n != nil {
			cfg.notifiers = append(cfg.notifiers, n)
		}
	}
}

// Session is one interaction with a page: its table loaded from the store,
// the coordinator handling the table's intents and the notices raised.
type Session struct {
	Page        fieldset.Page
	Table       *table.Table
	Coordinator *mutation.Coordinator
	Flash       *notify.Flash
}

// Open loads the records of page name into a fresh table.
func (a *App) Open(ctx context.Context, name string, opts ...SessionOption) (*Session, error) {
	page, ok := a.Catalog().Page(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, name)
	}
	cfg := sessionConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	s, err := a.Store(ctx, page)
	if err != nil {
		return nil, err
	}

	flash := &notify.Flash{}
	notifiers := notify.Multi{flash, changeNotifier{app: a, page: page.Name}}
	notifiers = append(notifiers, a.notifiers...)
	notifiers = append(notifiers, cfg.notifiers...)

	tbl := table.New(page.Fields,
		table.WithTitle(page.Title),
		table.WithIDField(page.IDField),
		table.WithActions(page.Actions),
		table.WithPageSize(page.PageSize),
		table.WithMessages(validation.NewMessages(page.Messages)),
		table.WithConfirmer(cfg.confirmer),
	)
	coord := mutation.New(s, tbl,
		mutation.WithContext(ctx),
		mutation.WithFields(page.Fields),
		mutation.WithIDField(page.IDField),
		mutation.WithNotifier(notifiers),
		mutation.WithLogger(a.logger.With(zap.String("page", page.Name))),
	)
	tbl.SetIntents(coord)
	if err := coord.Load(ctx); err != nil {
		return nil, fmt.Errorf("careforms: load %s: %w", page.Name, err)
	}
	return &Session{Page: page, Table: tbl, Coordinator: coord, Flash: flash}, nil
}

// EditSelected switches an open detail view to edit. Saving it reports
// "Changes saved successfully".
func (s *Session) EditSelected() error {
	if _, err := s.Table.EditSelected(); err != nil {
		return err
	}
	texts := s.Coordinator.Texts()
	texts.Saved = mutation.ChangesSaved
	s.Coordinator.SetTexts(texts)
	return nil
}

// Screen is the table screen with pending notices drained into it.
func (s *Session) Screen() render.Screen {
	screen := s.Table.Screen(s.Page.Name)
	for _, n := range s.Flash.Drain() {
		screen.Notices = append(screen.Notices, render.Notice{Kind: n.Kind, Message: n.Message})
	}
	return screen
}

// changeNotifier turns success notices into change events. The coordinator
// only reports success after the store accepted a save or delete.
type changeNotifier struct {
	app  *App
	page string
}

func (c changeNotifier) NotifySuccess(string) { c.app.changed(c.page) }
func (c changeNotifier) NotifyError(string)   {}
