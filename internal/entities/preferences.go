package entities

// UserPreferences is the process-wide display settings blob.
type UserPreferences struct {
	UseDarkTheme    bool `json:"use_dark_theme"`
	UseDynamicColor bool `json:"use_dynamic_color"`
}

// Known preference keys. Any other key is rejected by the preferences store.
const (
	PreferenceKeyDarkTheme     = "dark_theme"
	PreferenceKeyDynamicColors = "dynamic_colors"
)

// PreferenceKeys lists every accepted key in a stable order.
var PreferenceKeys = []string{
	PreferenceKeyDarkTheme,
	PreferenceKeyDynamicColors,
}

// DefaultUserPreferences is written the first time preferences are read.
func DefaultUserPreferences() UserPreferences {
	return UserPreferences{
		UseDarkTheme:    false,
		UseDynamicColor: false,
	}
}
