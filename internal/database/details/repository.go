// Package details provides database operations for full book records.
//
// Records are never refreshed or expired here; callers fetch again only when
// a record is absent.
package details

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookbar/internal/changefeed"
	"github.com/mrlokans/bookbar/internal/entities"
	"github.com/mrlokans/bookbar/internal/stream"
)

// Repository handles all book_details database operations.
type Repository struct {
	db   *gorm.DB
	feed changefeed.Feed
}

// NewRepository creates a new details repository.
func NewRepository(db *gorm.DB, feed changefeed.Feed) *Repository {
	return &Repository{db: db, feed: feed}
}

// FindByISBN returns the cached record, or nil when there is none.
// The returned record's IsFavorite is always false.
func (r *Repository) FindByISBN(ctx context.Context, isbn13 string) (*entities.BookDetail, error) {
	var detail entities.BookDetail
	err := r.db.WithContext(ctx).Where("isbn13 = ?", isbn13).First(&detail).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetAll returns every cached record ordered by isbn13.
func (r *Repository) GetAll(ctx context.Context) ([]entities.BookDetail, error) {
	var records []entities.BookDetail
	if err := r.db.WithContext(ctx).Order("isbn13 ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ObserveByISBN emits the cached record (nil when absent) now and after every
// change to the book_details set.
func (r *Repository) ObserveByISBN(ctx context.Context, isbn13 string) *stream.Stream[*entities.BookDetail] {
	return stream.Watch(ctx, r.feed.Subscribe(changefeed.TopicBookDetails), nil, func(ctx context.Context) (*entities.BookDetail, error) {
		return r.FindByISBN(ctx, isbn13)
	})
}

// Upsert inserts or replaces records keyed by isbn13.
func (r *Repository) Upsert(ctx context.Context, records ...entities.BookDetail) error {
	rows := make([]entities.BookDetail, 0, len(records))
	for _, d := range records {
		if d.ISBN13 == "" {
			return entities.ErrMissingISBN
		}
		d.IsFavorite = false
		rows = append(rows, d)
	}
	if len(rows) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "isbn13"}},
		UpdateAll: true,
	}).Create(&rows).Error
	if err != nil {
		return err
	}
	r.feed.Publish(changefeed.TopicBookDetails)
	return nil
}

// DeleteByISBN removes one record. Removing a missing record is not an error.
func (r *Repository) DeleteByISBN(ctx context.Context, isbn13 string) error {
	if err := r.db.WithContext(ctx).Where("isbn13 = ?", isbn13).Delete(&entities.BookDetail{}).Error; err != nil {
		return err
	}
	r.feed.Publish(changefeed.TopicBookDetails)
	return nil
}

// DeleteAll removes every record.
func (r *Repository) DeleteAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&entities.BookDetail{}).Error
	if err != nil {
		return err
	}
	r.feed.Publish(changefeed.TopicBookDetails)
	return nil
}

// Count returns the number of cached records.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.BookDetail{}).Count(&count).Error
	return count, err
}
