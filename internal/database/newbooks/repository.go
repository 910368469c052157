// Package newbooks provides database operations for the "new releases" feed cache.
//
// # Usage
//
//	repo := newbooks.NewRepository(db, hub)
//	err := repo.Replace(ctx, books)
//	s := repo.ObserveAll(ctx)
package newbooks

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookbar/internal/changefeed"
	"github.com/mrlokans/bookbar/internal/entities"
	"github.com/mrlokans/bookbar/internal/stream"
)

// Repository handles all new_books database operations.
type Repository struct {
	db   *gorm.DB
	feed changefeed.Feed
}

// NewRepository creates a new feed cache repository.
func NewRepository(db *gorm.DB, feed changefeed.Feed) *Repository {
	return &Repository{db: db, feed: feed}
}

// GetAll returns the cached feed ordered by insertion time, oldest first.
func (r *Repository) GetAll(ctx context.Context) ([]entities.BookSummary, error) {
	var rows []entities.NewBook
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("rowid ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return entities.NewBookSummaries(rows), nil
}

// ObserveAll emits the cached feed now and after every change to it.
func (r *Repository) ObserveAll(ctx context.Context) *stream.Stream[[]entities.BookSummary] {
	return stream.Watch(ctx, r.feed.Subscribe(changefeed.TopicNewBooks), nil, r.GetAll)
}

// Count returns the number of cached feed entries.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.NewBook{}).Count(&count).Error
	return count, err
}

// Upsert inserts or replaces books keyed by isbn13 in a single statement.
func (r *Repository) Upsert(ctx context.Context, books ...entities.BookSummary) error {
	rows, err := toRows(books)
	if err != nil || len(rows) == 0 {
		return err
	}

	if err := upsert(r.db.WithContext(ctx), rows); err != nil {
		return err
	}
	r.feed.Publish(changefeed.TopicNewBooks)
	return nil
}

// Replace clears the feed and stores books in one transaction, so observers
// never see the intermediate empty set.
func (r *Repository) Replace(ctx context.Context, books []entities.BookSummary) error {
	rows, err := toRows(books)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.NewBook{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return upsert(tx, rows)
	})
	if err != nil {
		return err
	}
	r.feed.Publish(changefeed.TopicNewBooks)
	return nil
}

// DeleteByISBN removes one entry. Removing a missing entry is not an error.
func (r *Repository) DeleteByISBN(ctx context.Context, isbn13 string) error {
	if err := r.db.WithContext(ctx).Where("isbn13 = ?", isbn13).Delete(&entities.NewBook{}).Error; err != nil {
		return err
	}
	r.feed.Publish(changefeed.TopicNewBooks)
	return nil
}

// DeleteAll empties the feed cache.
func (r *Repository) DeleteAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&entities.NewBook{}).Error
	if err != nil {
		return err
	}
	r.feed.Publish(changefeed.TopicNewBooks)
	return nil
}

func upsert(db *gorm.DB, rows []entities.NewBook) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "isbn13"}},
		UpdateAll: true,
	}).Create(&rows).Error
}

// toRows validates books and collapses duplicate isbn13s, last one wins.
func toRows(books []entities.BookSummary) ([]entities.NewBook, error) {
	rows := make([]entities.NewBook, 0, len(books))
	index := make(map[string]int, len(books))
	for _, b := range books {
		if b.ISBN13 == "" {
			return nil, entities.ErrMissingISBN
		}
		if i, seen := index[b.ISBN13]; seen {
			rows[i] = entities.NewBook{BookSummary: b}
			continue
		}
		index[b.ISBN13] = len(rows)
		rows = append(rows, entities.NewBook{BookSummary: b})
	}
	return rows, nil
}
