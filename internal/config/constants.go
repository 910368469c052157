package config

const (
	// DefaultDatabasePath is the default path for the local cache database
	DefaultDatabasePath = "./bookbar.db"

	// DefaultPreferencesPath is the default badger directory for preferences
	DefaultPreferencesPath = "./bookbar-preferences"

	// DefaultRefreshSchedule refreshes the new-books feed every 6 hours
	DefaultRefreshSchedule = "0 */6 * * *"
)

// Preferences backends.
const (
	PreferencesBackendBadger   = "badger"
	PreferencesBackendDatabase = "database"
)
