package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mrlokans/bookbar/internal/catalog"
	"github.com/mrlokans/bookbar/internal/changefeed"
	"github.com/mrlokans/bookbar/internal/config"
	"github.com/mrlokans/bookbar/internal/covers"
	"github.com/mrlokans/bookbar/internal/database"
	"github.com/mrlokans/bookbar/internal/database/details"
	"github.com/mrlokans/bookbar/internal/database/favourites"
	"github.com/mrlokans/bookbar/internal/database/newbooks"
	"github.com/mrlokans/bookbar/internal/database/settings"
	"github.com/mrlokans/bookbar/internal/itbook"
	"github.com/mrlokans/bookbar/internal/kvstore"
	"github.com/mrlokans/bookbar/internal/preferences"
	"github.com/mrlokans/bookbar/internal/search"
	"github.com/mrlokans/bookbar/internal/settingsstore"
	"github.com/mrlokans/bookbar/internal/tasks"
)

// Options selects the optional parts of an App.
type Options struct {
	// WithTasks opens the background queue when cfg.Tasks.Enabled is set.
	// Without it, maintenance runs inline.
	WithTasks bool
}

// App owns every storage handle and the components built on top of them.
// It is created once per process and closed at shutdown.
type App struct {
	Config      *config.Config
	DB          *database.Database
	Hub         *changefeed.Hub
	Preferences *preferences.Store
	Refresh     *settingsstore.Store
	Catalog     *catalog.Repository
	NewBooks    *newbooks.Repository
	Index       *search.Index
	Covers      *covers.Cache
	Tasks       *tasks.Client
	Dispatcher  *tasks.Dispatcher

	closers []func() error
}

// NewApp opens storage and wires the catalog. On error every handle opened
// so far is closed.
func NewApp(cfg *config.Config, opts Options) (app *App, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app = &App{Config: cfg}
	defer func() {
		if err != nil {
			app.Close()
			app = nil
		}
	}()

	app.DB, err = database.NewDatabase(cfg.Database.Path, database.Options{LogSQL: cfg.Database.LogSQL})
	if err != nil {
		return nil, err
	}
	app.onClose(app.DB.Close)

	app.Hub = changefeed.NewHub()
	app.onClose(func() error { app.Hub.Close(); return nil })

	backend, err := app.openPreferencesBackend()
	if err != nil {
		return nil, err
	}
	app.Preferences = preferences.New(backend, app.Hub)
	app.Refresh = settingsstore.New(settings.NewRepository(app.DB.DB), cfg.Refresh)

	app.Index, err = search.Open(cfg.Search.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}
	app.onClose(app.Index.Close)

	if cfg.Covers.Dir != "" {
		app.Covers, err = covers.NewCache(cfg.Covers.Dir)
		if err != nil {
			log.Printf("WARNING: Failed to initialize cover cache: %v", err)
			app.Covers, err = nil, nil
		} else {
			log.Printf("Cover cache initialized at %s", cfg.Covers.Dir)
		}
	}

	remote := itbook.NewClient(itbook.Options{
		BaseURL:   cfg.ITBook.BaseURL,
		Timeout:   cfg.ITBook.Timeout,
		UserAgent: cfg.ITBook.UserAgent,
		RateLimit: cfg.ITBook.RateLimit,
	})

	app.NewBooks = newbooks.NewRepository(app.DB.DB, app.Hub)
	app.Catalog = catalog.NewRepository(catalog.Dependencies{
		Remote:    remote,
		NewBooks:  app.NewBooks,
		Favorites: favourites.NewRepository(app.DB.DB, app.Hub),
		Details:   details.NewRepository(app.DB.DB, app.Hub),
		Feed:      app.Hub,
		Index:     app.Index,
	})

	if err := app.Catalog.ReindexIfEmpty(context.Background()); err != nil {
		log.Printf("WARNING: Failed to index cached books: %v", err)
	}

	if opts.WithTasks && cfg.Tasks.Enabled {
		app.Tasks, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
			PrefetchDetails: cfg.Tasks.PrefetchDetails,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		app.onClose(app.Tasks.Close)

		app.Tasks.Register(
			tasks.NewRefreshNewBooksQueue(app.Catalog, app.NewBooks, app.Tasks.Enqueue),
			tasks.NewPrefetchBookDetailQueue(app.Catalog),
		)
	}

	app.Dispatcher = tasks.NewDispatcher(app.Tasks, app.Catalog, app.NewBooks, cfg.Tasks.PrefetchDetails)

	return app, nil
}

func (a *App) openPreferencesBackend() (preferences.Backend, error) {
	switch a.Config.Preferences.Backend {
	case config.PreferencesBackendDatabase:
		return settings.NewRepository(a.DB.DB), nil
	default:
		store, err := kvstore.Open(a.Config.Preferences.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open preferences store: %w", err)
		}
		a.onClose(store.Close)
		return store, nil
	}
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// StartTasks runs the queue workers until ctx is done. It is a no-op
// without a queue.
func (a *App) StartTasks(ctx context.Context) {
	if a.Tasks != nil {
		go a.Tasks.Start(ctx)
	}
}

// StopTasks waits for running tasks until ctx is done.
func (a *App) StopTasks(ctx context.Context) {
	if a.Tasks != nil {
		a.Tasks.Stop(ctx)
	}
}

// Close releases every handle in reverse opening order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
