package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/stackmill/wikimport/internal/catalog"
	"github.com/stackmill/wikimport/internal/config"
	"github.com/stackmill/wikimport/internal/importer"
	"github.com/stackmill/wikimport/internal/logging"
	"github.com/stackmill/wikimport/internal/logging/gologger"
	"github.com/stackmill/wikimport/internal/syncstore"
	"github.com/stackmill/wikimport/internal/transform"
	"github.com/stackmill/wikimport/internal/wiki"
)

// app bundles the wired components a command needs, plus their teardown.
type app struct {
	cfg      *config.Config
	provider logging.LoggerProvider
	logger   logging.Logger
	wiki     wiki.Client
	store    *syncstore.Store
	catalog  catalog.Catalog
	importer *importer.Importer

	closers []func() error
}

// buildApp loads configuration and wires the store, catalog, wiki client,
// and orchestrator. Callers must invoke Close when done.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	provider, err := gologger.NewProvider(gologger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		provider: provider,
		logger:   logging.ModuleLogger(provider, ""),
	}

	a.wiki = wiki.NewHTTPClient(wiki.HTTPConfig{
		BaseURL:     cfg.Wiki.URL,
		TokenID:     cfg.Wiki.TokenID,
		TokenSecret: cfg.Wiki.TokenSecret,
		Logger:      logging.WikiLogger(provider),
	})

	if err := a.openState(ctx); err != nil {
		a.Close()
		return nil, err
	}

	if err := a.openCatalog(); err != nil {
		a.Close()
		return nil, err
	}

	transformer := transform.New(transform.Config{
		Resolver: a.store,
		Logger:   logging.TransformLogger(provider),
	})

	imp, err := importer.New(importer.Config{
		Root:        cfg.Source.Root,
		Store:       a.store,
		Catalog:     a.catalog,
		Wiki:        a.wiki,
		Transformer: transformer,
		Logger:      logging.ImporterLogger(provider),
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.importer = imp

	return a, nil
}

func (a *app) openState(ctx context.Context) error {
	sqlDB, err := sql.Open("sqlite3", a.cfg.State.Path)
	if err != nil {
		return fmt.Errorf("open state database %s: %w", a.cfg.State.Path, err)
	}
	a.closers = append(a.closers, sqlDB.Close)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)

	store, err := syncstore.New(db, a.wiki, logging.StoreLogger(a.provider))
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return err
	}
	a.store = store
	return nil
}

func (a *app) openCatalog() error {
	db, err := sql.Open(a.cfg.Source.CatalogDriver, a.cfg.Source.CatalogDSN)
	if err != nil {
		return fmt.Errorf("open catalog database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	a.catalog = catalog.NewSQLCatalog(db, logging.CatalogLogger(a.provider))
	return nil
}

// Close tears down database handles in reverse open order.
func (a *app) Close() {
	for idx := len(a.closers) - 1; idx >= 0; idx-- {
		if err := a.closers[idx](); err != nil {
			a.logger.Warn("close resource", "error", err)
		}
	}
	a.closers = nil
}
