package entities

import (
	"errors"
	"time"
)

// BookSummary is the listing shape shared by the New and Favorite record sets.
type BookSummary struct {
	ISBN13   string `gorm:"column:isbn13;primaryKey;size:13" json:"isbn13"`
	Title    string `gorm:"size:512" json:"title"`
	Price    string `gorm:"size:32" json:"price"`
	ImageURL string `gorm:"column:image_url;size:1024" json:"image"`
}

// NewBook is a row of the "new releases" feed cache.
type NewBook struct {
	BookSummary `gorm:"embedded"`
	CreatedAt   time.Time `json:"created_at"`
}

func (NewBook) TableName() string {
	return "new_books"
}

// FavoriteBook is a row of the user-curated favorites set.
type FavoriteBook struct {
	BookSummary `gorm:"embedded"`
	CreatedAt   time.Time `json:"created_at"`
}

func (FavoriteBook) TableName() string {
	return "favorite_books"
}

// BookDetail holds the full catalog record for one book.
// IsFavorite is never persisted; it is filled from favorite_books at read time.
type BookDetail struct {
	ISBN13      string    `gorm:"column:isbn13;primaryKey;size:13" json:"isbn13"`
	ISBN10      string    `gorm:"column:isbn10;size:10" json:"isbn10"`
	Title       string    `gorm:"size:512" json:"title"`
	Subtitle    string    `gorm:"size:512" json:"subtitle"`
	Authors     string    `gorm:"size:512" json:"authors"`
	Publisher   string    `gorm:"size:256" json:"publisher"`
	Language    string    `gorm:"size:64" json:"language"`
	Pages       string    `gorm:"size:16" json:"pages"`
	Year        string    `gorm:"size:8" json:"year"`
	Rating      string    `gorm:"size:8" json:"rating"`
	Description string    `gorm:"type:text" json:"desc"`
	Price       string    `gorm:"size:32" json:"price"`
	ImageURL    string    `gorm:"column:image_url;size:1024" json:"image"`
	URL         string    `gorm:"size:1024" json:"url"`
	IsFavorite  bool      `gorm:"-" json:"is_favorite"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (BookDetail) TableName() string {
	return "book_details"
}

// Summary projects the detail onto the listing shape used by the Favorite set.
func (d BookDetail) Summary() BookSummary {
	return BookSummary{
		ISBN13:   d.ISBN13,
		Title:    d.Title,
		Price:    d.Price,
		ImageURL: d.ImageURL,
	}
}

// NewBookSummaries unwraps feed rows into summaries, keeping order.
func NewBookSummaries(rows []NewBook) []BookSummary {
	books := make([]BookSummary, 0, len(rows))
	for _, row := range rows {
		books = append(books, row.BookSummary)
	}
	return books
}

// FavoriteBookSummaries unwraps favorite rows into summaries, keeping order.
func FavoriteBookSummaries(rows []FavoriteBook) []BookSummary {
	books := make([]BookSummary, 0, len(rows))
	for _, row := range rows {
		books = append(books, row.BookSummary)
	}
	return books
}

// ErrMissingISBN is returned when a record without an isbn13 is written.
var ErrMissingISBN = errors.New("isbn13 is required")
