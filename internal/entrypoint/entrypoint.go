// Package entrypoint wires configuration, storage and services into the
// application the CLI commands run against.
package entrypoint

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/covers"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/document"
	"github.com/mrlokans/bookshelf/internal/importers"
	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/reports"
)

// staleImportAge is how old a staging folder must be before startup
// removes it as abandoned.
const staleImportAge = 24 * time.Hour

// App is the object graph shared by every command in one process.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *database.Database
	Library  *library.Library
	Auth     *auth.Service
	Importer *importers.Pipeline
	Catalog  *catalog.Client
	Covers   *covers.Cache
	Reports  *reports.Builder
}

// Bootstrap opens the library database, bringing its schema up to date, and
// builds the services on top of it. A schema failure is returned as is; the
// caller should treat it as fatal.
func Bootstrap(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := database.NewDatabase(database.Options{
		Path:       cfg.Database.Path,
		LogLevel:   cfg.Database.LogLevel,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger.Named("database"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	renderer, err := document.NewRenderer(cfg.Render.Backend, cfg.Render.DPI)
	if err != nil {
		db.Close()
		return nil, err
	}

	coverCache, err := covers.NewCache(cfg.Library.CoversDir, logger.Named("covers"))
	if err != nil {
		db.Close()
		return nil, err
	}

	lib := library.New(db.DB, cfg.Auth.BcryptCost)
	pipeline := importers.NewPipeline(
		importers.Config{BooksDir: cfg.Library.BooksDir, Workers: cfg.Render.Workers},
		document.NewPDFOpener(renderer),
		lib.Books,
		lib.Categories,
		logger.Named("importer"),
	)
	if _, err := pipeline.PurgeStaging(staleImportAge); err != nil {
		logger.Warn("failed to purge stale imports", zap.Error(err))
	}

	logger.Debug("application ready",
		zap.String("database", cfg.Database.Path),
		zap.String("books_dir", cfg.Library.BooksDir),
		zap.String("renderer", fmt.Sprintf("%T", renderer)))

	return &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Library:  lib,
		Auth:     auth.NewService(lib.Users, logger.Named("auth")),
		Importer: pipeline,
		Catalog: catalog.NewClient(catalog.Options{
			BaseURL:      cfg.Catalog.BaseURL,
			Timeout:      cfg.Catalog.Timeout,
			RateInterval: cfg.Catalog.RateInterval,
			Logger:       logger.Named("catalog"),
		}),
		Covers:  coverCache,
		Reports: reports.NewBuilder(lib.Reports),
	}, nil
}

// Close releases the database connection.
func (a *App) Close() error {
	return a.DB.Close()
}
