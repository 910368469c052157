package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		ITBook
		Preferences
		Search
		Covers
		Tasks
		Refresh
	}

	HTTP struct {
		Port int32  `validate:"gte=1,lte=65535"`
		Host string `validate:"required"`
	}
	Global struct {
		ShutdownTimeoutInSeconds int `validate:"gte=0"`
	}
	Database struct {
		Path   string `validate:"required"`
		LogSQL bool
	}
	ITBook struct {
		BaseURL   string        `validate:"required,url"`
		Timeout   time.Duration `validate:"gt=0"`
		RateLimit float64       `validate:"gte=0"` // requests per second, 0 = unlimited
		UserAgent string
	}
	Preferences struct {
		Backend string `validate:"oneof=badger database"`
		Path    string // badger directory, empty keeps preferences in memory
	}
	Search struct {
		IndexPath string // bleve directory, empty keeps the index in memory
	}
	Covers struct {
		Dir string
	}
	Tasks struct {
		Enabled         bool
		Workers         int           `validate:"gte=1"`
		ReleaseAfter    time.Duration `validate:"gt=0"`
		CleanupInterval time.Duration `validate:"gt=0"`
		PrefetchDetails bool
	}
	Refresh struct {
		Enabled  bool
		Schedule string `validate:"required_if=Enabled true,omitempty,schedule"`
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("log_sql", false)

	// Remote catalog defaults
	v.SetDefault("itbook_base_url", "https://api.itbook.store/1.0")
	v.SetDefault("itbook_timeout", "60s")
	v.SetDefault("itbook_rate_limit", 0)
	v.SetDefault("itbook_user_agent", "Bookbar/1.0")

	v.SetDefault("preferences_backend", PreferencesBackendBadger)
	v.SetDefault("preferences_path", DefaultPreferencesPath)
	v.SetDefault("search_index_path", "")
	v.SetDefault("covers_dir", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("prefetch_details", false)

	v.SetDefault("refresh_enabled", false)
	v.SetDefault("refresh_schedule", DefaultRefreshSchedule)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:   v.GetString("DATABASE_PATH"),
			LogSQL: v.GetBool("LOG_SQL"),
		},
		ITBook: ITBook{
			BaseURL:   v.GetString("ITBOOK_BASE_URL"),
			Timeout:   v.GetDuration("ITBOOK_TIMEOUT"),
			RateLimit: v.GetFloat64("ITBOOK_RATE_LIMIT"),
			UserAgent: v.GetString("ITBOOK_USER_AGENT"),
		},
		Preferences: Preferences{
			Backend: strings.ToLower(v.GetString("PREFERENCES_BACKEND")),
			Path:    v.GetString("PREFERENCES_PATH"),
		},
		Search: Search{
			IndexPath: v.GetString("SEARCH_INDEX_PATH"),
		},
		Covers: Covers{
			Dir: coversDir(v.GetString("COVERS_DIR"), v.GetString("DATABASE_PATH")),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
			PrefetchDetails: v.GetBool("PREFETCH_DETAILS"),
		},
		Refresh: Refresh{
			Enabled:  v.GetBool("REFRESH_ENABLED"),
			Schedule: v.GetString("REFRESH_SCHEDULE"),
		},
	}
}

// coversDir defaults to a covers directory next to the cache database.
func coversDir(dir, dbPath string) string {
	if dir != "" {
		return dir
	}
	return filepath.Join(filepath.Dir(dbPath), "covers")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("schedule", func(fl validator.FieldLevel) bool {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		_, err := parser.Parse(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks every section and reports all invalid fields at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), friendlyMessage(fe)))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func friendlyMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "schedule":
		return "must be a five-field cron expression"
	case "gt", "gte", "lte":
		return fmt.Sprintf("must be %s %s", fe.Tag(), fe.Param())
	default:
		return "is invalid"
	}
}
