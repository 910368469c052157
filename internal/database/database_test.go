package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookbar/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase_MigratesRecordSets(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"new_books", "favorite_books", "book_details", "settings"} {
		assert.True(t, db.DB.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestNewDatabase_BookDetailHasNoFavoriteColumn(t *testing.T) {
	db := setupTestDB(t)

	assert.False(t, db.DB.Migrator().HasColumn(&entities.BookDetail{}, "is_favorite"))
}

func TestDatabase_Ping(t *testing.T) {
	db := setupTestDB(t)

	assert.NoError(t, db.Ping(context.Background()))
}

func TestDatabase_Stats(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.DB.Create(&entities.NewBook{BookSummary: entities.BookSummary{ISBN13: "9781000000001"}}).Error)
	require.NoError(t, db.DB.Create(&entities.FavoriteBook{BookSummary: entities.BookSummary{ISBN13: "9781000000001"}}).Error)
	require.NoError(t, db.DB.Create(&entities.FavoriteBook{BookSummary: entities.BookSummary{ISBN13: "9781000000002"}}).Error)

	stats, err := db.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats["new_books"])
	assert.Equal(t, int64(2), stats["favorite_books"])
	assert.Equal(t, int64(0), stats["book_details"])
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "close.db"), Options{})
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}
