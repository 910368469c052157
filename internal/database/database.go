package database

import (
	"context"
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookbar/internal/entities"
)

// Options tunes the connection.
type Options struct {
	// LogSQL enables gorm's statement logging.
	LogSQL bool
}

// Database owns the sqlite handle backing the local cache.
// It is opened once by the composition root and closed at shutdown.
type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string, opts Options) (*Database, error) {
	logLevel := logger.Silent
	if opts.LogSQL {
		logLevel = logger.Info
	}

	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	// sqlite serializes writers; a single connection keeps readers from
	// tripping over SQLITE_BUSY while a replace transaction is open.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&entities.NewBook{},
		&entities.FavoriteBook{},
		&entities.BookDetail{},
		&entities.Setting{},
	)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database is reachable.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Stats returns the number of rows in each cached record set.
func (d *Database) Stats(ctx context.Context) (map[string]int64, error) {
	stats := make(map[string]int64, 3)
	for name, model := range map[string]any{
		"new_books":      &entities.NewBook{},
		"favorite_books": &entities.FavoriteBook{},
		"book_details":   &entities.BookDetail{},
	} {
		var count int64
		if err := d.DB.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		stats[name] = count
	}
	return stats, nil
}
