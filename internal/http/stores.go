package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookbar/internal/catalog"
	"github.com/mrlokans/bookbar/internal/entities"
	"github.com/mrlokans/bookbar/internal/scheduler"
	"github.com/mrlokans/bookbar/internal/search"
	"github.com/mrlokans/bookbar/internal/settingsstore"
	"github.com/mrlokans/bookbar/internal/stream"
)

// This file consolidates the interfaces HTTP controllers depend on.
// Controllers only receive the slice of behavior they call.

// BookReadModels exposes the observable catalog read models.
type BookReadModels interface {
	ObserveNewBooks(ctx context.Context) *stream.Stream[catalog.ListState]
	ObserveDetail(ctx context.Context, isbn13 string) *stream.Stream[catalog.DetailResult]
}

// FavoritesCatalog reads and curates the favorite set.
type FavoritesCatalog interface {
	ObserveFavorites(ctx context.Context) *stream.Stream[catalog.ListState]
	SaveFavorite(ctx context.Context, book entities.BookSummary) error
	RemoveFavorite(ctx context.Context, isbn13 string) error
	SetFavorite(ctx context.Context, detail entities.BookDetail, favorite bool) error
}

// SearchCatalog runs remote and offline searches.
type SearchCatalog interface {
	Search(query string) *catalog.SearchPager
	SearchCached(ctx context.Context, query string, limit, offset int) (*search.Result, error)
}

// Catalog is everything the router needs from the catalog repository.
type Catalog interface {
	BookReadModels
	FavoritesCatalog
	SearchCatalog
}

// PreferencesStore reads, observes and updates display preferences.
type PreferencesStore interface {
	Get(ctx context.Context) (entities.UserPreferences, error)
	Observe(ctx context.Context) *stream.Stream[entities.UserPreferences]
	SetBoolean(ctx context.Context, key string, value bool) error
}

// TaskDispatcher hands catalog maintenance to the queue, or runs it inline.
type TaskDispatcher interface {
	Queued() bool
	RefreshNewBooks(ctx context.Context) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// CoverCache returns a local file for a book cover.
type CoverCache interface {
	GetCover(ctx context.Context, isbn13, coverURL string) (string, error)
}

// RefreshSettingsStore persists the periodic refresh configuration.
type RefreshSettingsStore interface {
	RefreshSettingsInfo(ctx context.Context) (settingsstore.RefreshSettingsInfo, error)
	RefreshSettings(ctx context.Context) (settingsstore.RefreshSettings, error)
	RefreshStatus(ctx context.Context) (scheduler.RefreshStatus, error)
	SetRefreshEnabled(ctx context.Context, enabled bool) error
	SetRefreshSchedule(ctx context.Context, schedule string) error
	ResetRefreshSettings(ctx context.Context) error
}

// RefreshScheduler runs the periodic refresh.
type RefreshScheduler interface {
	Reschedule(ctx context.Context, enabled bool, schedule string) error
	RunNow()
	IsRunning() bool
	NextRunTime() *time.Time
	Status() scheduler.RefreshStatus
}
