// Package favourites provides database operations for the user's favorite books.
//
// Favorites are purely local; nothing here ever reaches the remote catalog.
//
// # Usage
//
//	repo := favourites.NewRepository(db, hub)
//	err := repo.Upsert(ctx, summary)
//	count, err := repo.CountByISBN(ctx, "9781617294136")
package favourites

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookbar/internal/changefeed"
	"github.com/mrlokans/bookbar/internal/entities"
	"github.com/mrlokans/bookbar/internal/stream"
)

// Repository handles all favorite_books database operations.
type Repository struct {
	db   *gorm.DB
	feed changefeed.Feed
}

// NewRepository creates a new favourites repository.
func NewRepository(db *gorm.DB, feed changefeed.Feed) *Repository {
	return &Repository{db: db, feed: feed}
}

// GetAll returns every favorite ordered by insertion time, oldest first.
func (r *Repository) GetAll(ctx context.Context) ([]entities.BookSummary, error) {
	var rows []entities.FavoriteBook
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("rowid ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return entities.FavoriteBookSummaries(rows), nil
}

// ObserveAll emits the favorites now and after every change to them.
func (r *Repository) ObserveAll(ctx context.Context) *stream.Stream[[]entities.BookSummary] {
	return stream.Watch(ctx, r.feed.Subscribe(changefeed.TopicFavoriteBooks), nil, r.GetAll)
}

// CountByISBN returns 1 when the book is a favorite and 0 otherwise.
func (r *Repository) CountByISBN(ctx context.Context, isbn13 string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.FavoriteBook{}).
		Where("isbn13 = ?", isbn13).
		Count(&count).Error
	return count, err
}

// ObserveCountByISBN emits the membership count now and after every change.
func (r *Repository) ObserveCountByISBN(ctx context.Context, isbn13 string) *stream.Stream[int64] {
	return stream.Watch(ctx, r.feed.Subscribe(changefeed.TopicFavoriteBooks), nil, func(ctx context.Context) (int64, error) {
		return r.CountByISBN(ctx, isbn13)
	})
}

// Upsert inserts or replaces favorites keyed by isbn13.
// Saving the same book twice leaves exactly one row.
func (r *Repository) Upsert(ctx context.Context, books ...entities.BookSummary) error {
	rows := make([]entities.FavoriteBook, 0, len(books))
	index := make(map[string]int, len(books))
	for _, b := range books {
		if b.ISBN13 == "" {
			return entities.ErrMissingISBN
		}
		if i, seen := index[b.ISBN13]; seen {
			rows[i] = entities.FavoriteBook{BookSummary: b}
			continue
		}
		index[b.ISBN13] = len(rows)
		rows = append(rows, entities.FavoriteBook{BookSummary: b})
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
	r.feed.Publish(changefeed.TopicFavoriteBooks)
	return nil
}

// DeleteByISBN removes a favorite. Removing a missing favorite is not an error.
func (r *Repository) DeleteByISBN(ctx context.Context, isbn13 string) error {
	if err := r.db.WithContext(ctx).Where("isbn13 = ?", isbn13).Delete(&entities.FavoriteBook{}).Error; err != nil {
		return err
	}
	r.feed.Publish(changefeed.TopicFavoriteBooks)
	return nil
}

// DeleteAll removes every favorite.
func (r *Repository) DeleteAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&entities.FavoriteBook{}).Error
	if err != nil {
		return err
	}
	r.feed.Publish(changefeed.TopicFavoriteBooks)
	return nil
}
