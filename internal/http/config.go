package http

import (
	"time"

	"github.com/mrlokans/bookbar/internal/database"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
// Optional dependencies left nil disable their routes.
type RouterConfig struct {
	// Core dependencies
	Catalog     Catalog
	Preferences PreferencesStore
	Database    *database.Database

	// Optional
	Tasks  TaskDispatcher
	Covers CoverCache

	// RefreshSettings and RefreshScheduler enable /api/settings/refresh.
	// The scheduler may be nil; settings are then saved but not applied.
	RefreshSettings  RefreshSettingsStore
	RefreshScheduler RefreshScheduler

	// SnapshotTimeout bounds how long a snapshot endpoint waits for a
	// settled state. Zero uses DefaultSnapshotTimeout.
	SnapshotTimeout time.Duration

	// Application info
	Version string
}
