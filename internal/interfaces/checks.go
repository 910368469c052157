package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookbar/internal/catalog"
	"github.com/mrlokans/bookbar/internal/changefeed"
	"github.com/mrlokans/bookbar/internal/covers"
	"github.com/mrlokans/bookbar/internal/database/details"
	"github.com/mrlokans/bookbar/internal/database/favourites"
	"github.com/mrlokans/bookbar/internal/database/newbooks"
	"github.com/mrlokans/bookbar/internal/database/settings"
	"github.com/mrlokans/bookbar/internal/http"
	"github.com/mrlokans/bookbar/internal/itbook"
	"github.com/mrlokans/bookbar/internal/kvstore"
	"github.com/mrlokans/bookbar/internal/preferences"
	"github.com/mrlokans/bookbar/internal/scheduler"
	"github.com/mrlokans/bookbar/internal/search"
	"github.com/mrlokans/bookbar/internal/settingsstore"
	"github.com/mrlokans/bookbar/internal/tasks"
)

// =============================================================================
// Cache Layer
// =============================================================================

var _ catalog.NewBooksStore = (*newbooks.Repository)(nil)
var _ catalog.FavoritesStore = (*favourites.Repository)(nil)
var _ catalog.DetailsStore = (*details.Repository)(nil)
var _ catalog.Indexer = (*search.Index)(nil)

var _ changefeed.Feed = (*changefeed.Hub)(nil)

// Preference backends
var _ preferences.Backend = (*kvstore.Store)(nil)
var _ preferences.Backend = (*settings.Repository)(nil)

var _ settingsstore.Backend = (*settings.Repository)(nil)

// =============================================================================
// External Services
// =============================================================================

var _ catalog.RemoteCatalog = (*itbook.Client)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.Catalog = (*catalog.Repository)(nil)
var _ tasks.NewBooksLister = (*newbooks.Repository)(nil)
var _ scheduler.Refresher = (*tasks.Dispatcher)(nil)
var _ scheduler.StatusRecorder = (*settingsstore.Store)(nil)

// =============================================================================
// HTTP
// =============================================================================

var _ http.Catalog = (*catalog.Repository)(nil)
var _ http.PreferencesStore = (*preferences.Store)(nil)
var _ http.TaskDispatcher = (*tasks.Dispatcher)(nil)
var _ http.CoverCache = (*covers.Cache)(nil)
var _ http.RefreshSettingsStore = (*settingsstore.Store)(nil)
var _ http.RefreshScheduler = (*scheduler.RefreshScheduler)(nil)
