package settingsstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/mrlokans/bookbar/internal/config"
	"github.com/mrlokans/bookbar/internal/scheduler"
)

// Keys of the refresh settings rows.
const (
	KeyRefreshEnabled  = "refresh_enabled"
	KeyRefreshSchedule = "refresh_schedule"
	KeyRefreshStatus   = "refresh_last_status"
)

// Setting sources, in priority order.
const (
	SourceDatabase    = "database"
	SourceEnvironment = "environment"
	SourceDefault     = "default"
)

// ErrInvalidSchedule is returned when a cron expression does not parse.
var ErrInvalidSchedule = errors.New("invalid cron schedule")

// Backend stores raw setting rows.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// RefreshSettings is the effective periodic refresh configuration.
type RefreshSettings struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
}

// RefreshSettingsInfo includes source information for each field.
type RefreshSettingsInfo struct {
	Enabled       bool   `json:"enabled"`
	EnabledSource string `json:"enabled_source"`

	Schedule       string `json:"schedule"`
	ScheduleSource string `json:"schedule_source"`
}

// Store resolves refresh settings.
// Priority: database > environment > default
type Store struct {
	backend Backend
	env     config.Refresh
}

// New creates a store. env holds the values read from the environment,
// with the built-in defaults already applied.
func New(backend Backend, env config.Refresh) *Store {
	return &Store{backend: backend, env: env}
}

// RefreshSettings returns the effective configuration.
func (s *Store) RefreshSettings(ctx context.Context) (RefreshSettings, error) {
	info, err := s.RefreshSettingsInfo(ctx)
	if err != nil {
		return RefreshSettings{}, err
	}
	return RefreshSettings{Enabled: info.Enabled, Schedule: info.Schedule}, nil
}

// RefreshSettingsInfo returns the configuration with source information.
func (s *Store) RefreshSettingsInfo(ctx context.Context) (RefreshSettingsInfo, error) {
	info := RefreshSettingsInfo{
		Enabled:        s.env.Enabled,
		EnabledSource:  envSource("REFRESH_ENABLED"),
		Schedule:       s.env.Schedule,
		ScheduleSource: envSource("REFRESH_SCHEDULE"),
	}

	raw, found, err := s.backend.Get(ctx, KeyRefreshEnabled)
	if err != nil {
		return RefreshSettingsInfo{}, fmt.Errorf("failed to read %s: %w", KeyRefreshEnabled, err)
	}
	if found && raw != "" {
		if enabled, err := strconv.ParseBool(raw); err == nil {
			info.Enabled = enabled
			info.EnabledSource = SourceDatabase
		}
	}

	raw, found, err = s.backend.Get(ctx, KeyRefreshSchedule)
	if err != nil {
		return RefreshSettingsInfo{}, fmt.Errorf("failed to read %s: %w", KeyRefreshSchedule, err)
	}
	if found && raw != "" {
		info.Schedule = raw
		info.ScheduleSource = SourceDatabase
	}

	return info, nil
}

func envSource(name string) string {
	if _, ok := os.LookupEnv(name); ok {
		return SourceEnvironment
	}
	return SourceDefault
}

// SetRefreshEnabled saves the enabled setting to the database.
func (s *Store) SetRefreshEnabled(ctx context.Context, enabled bool) error {
	return s.backend.Set(ctx, KeyRefreshEnabled, strconv.FormatBool(enabled))
}

// SetRefreshSchedule saves the schedule to the database.
func (s *Store) SetRefreshSchedule(ctx context.Context, schedule string) error {
	if err := scheduler.ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	return s.backend.Set(ctx, KeyRefreshSchedule, schedule)
}

// ResetRefreshSettings removes the database overrides.
func (s *Store) ResetRefreshSettings(ctx context.Context) error {
	if err := s.backend.Delete(ctx, KeyRefreshEnabled); err != nil {
		return err
	}
	return s.backend.Delete(ctx, KeyRefreshSchedule)
}

// RefreshStatus returns the last recorded scheduled run.
func (s *Store) RefreshStatus(ctx context.Context) (scheduler.RefreshStatus, error) {
	var status scheduler.RefreshStatus

	raw, found, err := s.backend.Get(ctx, KeyRefreshStatus)
	if err != nil || !found || raw == "" {
		return status, err
	}
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return scheduler.RefreshStatus{}, fmt.Errorf("failed to decode refresh status: %w", err)
	}
	return status, nil
}

// RecordRefreshStatus saves the outcome of a scheduled run.
func (s *Store) RecordRefreshStatus(ctx context.Context, status scheduler.RefreshStatus) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.backend.Set(ctx, KeyRefreshStatus, string(raw))
}
