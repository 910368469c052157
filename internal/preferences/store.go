// Package preferences holds the two process-wide display settings and
// exposes them as an observable read model.
//
// Values live in a Backend (badger by default, or the settings table of the
// cache database). Every successful write publishes changefeed.TopicPreferences.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mrlokans/bookbar/internal/changefeed"
	"github.com/mrlokans/bookbar/internal/entities"
	"github.com/mrlokans/bookbar/internal/stream"
)

// ErrUnknownKey is returned by SetBoolean for keys outside entities.PreferenceKeys.
var ErrUnknownKey = errors.New("unknown preference key")

// Backend is a string key/value store.
type Backend interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Store reads and writes UserPreferences.
type Store struct {
	backend Backend
	feed    changefeed.Feed
}

// New creates a preferences store over backend.
func New(backend Backend, feed changefeed.Feed) *Store {
	return &Store{backend: backend, feed: feed}
}

// Get returns the current preferences. Keys that were never written are
// persisted with their default value.
func (s *Store) Get(ctx context.Context) (entities.UserPreferences, error) {
	defaults := entities.DefaultUserPreferences()

	dark, err := s.readBool(ctx, entities.PreferenceKeyDarkTheme, defaults.UseDarkTheme)
	if err != nil {
		return entities.UserPreferences{}, err
	}
	dynamic, err := s.readBool(ctx, entities.PreferenceKeyDynamicColors, defaults.UseDynamicColor)
	if err != nil {
		return entities.UserPreferences{}, err
	}

	return entities.UserPreferences{
		UseDarkTheme:    dark,
		UseDynamicColor: dynamic,
	}, nil
}

// Observe emits the preferences now and after every mutation.
func (s *Store) Observe(ctx context.Context) *stream.Stream[entities.UserPreferences] {
	return stream.Watch(ctx, s.feed.Subscribe(changefeed.TopicPreferences), nil, s.Get)
}

// SetBoolean writes one preference. Unknown keys are rejected and nothing is written.
func (s *Store) SetBoolean(ctx context.Context, key string, value bool) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if err := s.backend.Set(ctx, key, strconv.FormatBool(value)); err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	s.feed.Publish(changefeed.TopicPreferences)
	return nil
}

// IsKnownKey reports whether key is one of entities.PreferenceKeys.
func IsKnownKey(key string) bool {
	for _, k := range entities.PreferenceKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (s *Store) readBool(ctx context.Context, key string, def bool) (bool, error) {
	raw, found, err := s.backend.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	if !found {
		if err := s.backend.Set(ctx, key, strconv.FormatBool(def)); err != nil {
			return false, fmt.Errorf("failed to save default for %s: %w", key, err)
		}
		return def, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("preference %s has invalid value %q: %w", key, raw, err)
	}
	return v, nil
}
