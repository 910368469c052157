package itbook

import (
	"log"
	"strings"

	"github.com/mrlokans/bookbar/internal/entities"
)

// Status classifies the result of a catalog call.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// Outcome is attached to every response. The client never returns an error
// value; failures are described here instead.
type Outcome struct {
	Status  Status
	Message string // the API's "error" field, or a transport description
	Err     error  // underlying transport/decode error, nil for API-level failures
}

// OK reports whether the call succeeded and the payload can be used.
func (o Outcome) OK() bool {
	return o.Status == StatusOK
}

// Book is one entry of a listing or search payload.
type Book struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	ISBN13   string `json:"isbn13"`
	Price    string `json:"price"`
	Image    string `json:"image"`
	URL      string `json:"url"`
}

// Summary maps the wire shape onto the cached listing shape.
func (b Book) Summary() entities.BookSummary {
	return entities.BookSummary{
		ISBN13:   b.ISBN13,
		Title:    b.Title,
		Price:    b.Price,
		ImageURL: b.Image,
	}
}

// Detail is the payload of /books/{isbn13}. Every field is optional and only
// meaningful when the outcome is OK.
type Detail struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Authors     string `json:"authors"`
	Publisher   string `json:"publisher"`
	Language    string `json:"language"`
	ISBN10      string `json:"isbn10"`
	ISBN13      string `json:"isbn13"`
	Pages       string `json:"pages"`
	Year        string `json:"year"`
	Rating      string `json:"rating"`
	Description string `json:"desc"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	URL         string `json:"url"`
}

// Entity maps the wire shape onto the cached detail record.
func (d Detail) Entity() entities.BookDetail {
	return entities.BookDetail{
		ISBN13:      d.ISBN13,
		ISBN10:      d.ISBN10,
		Title:       d.Title,
		Subtitle:    d.Subtitle,
		Authors:     d.Authors,
		Publisher:   d.Publisher,
		Language:    d.Language,
		Pages:       d.Pages,
		Year:        d.Year,
		Rating:      d.Rating,
		Description: d.Description,
		Price:       d.Price,
		ImageURL:    d.Image,
		URL:         d.URL,
	}
}

// NewBooksResponse is the result of ListNewBooks.
type NewBooksResponse struct {
	Outcome
	Total string
	Books []Book
}

// Summaries maps every listed book onto the cached listing shape.
func (r NewBooksResponse) Summaries() []entities.BookSummary {
	return summaries(r.Books)
}

// SearchResponse is the result of Search.
type SearchResponse struct {
	Outcome
	Total string
	Page  string
	Books []Book
}

// Summaries maps every result onto the cached listing shape.
func (r SearchResponse) Summaries() []entities.BookSummary {
	return summaries(r.Books)
}

// BookDetailResponse is the result of GetBookDetail.
type BookDetailResponse struct {
	Outcome
	Detail Detail
}

// summaries drops entries without an isbn13; they cannot be cached or linked.
func summaries(books []Book) []entities.BookSummary {
	out := make([]entities.BookSummary, 0, len(books))
	for _, b := range books {
		s := b.Summary()
		if strings.TrimSpace(s.ISBN13) == "" {
			log.Printf("[itbook] Skipping book without isbn13: %q", s.Title)
			continue
		}
		out = append(out, s)
	}
	return out
}

// API payloads (internal)

type listPayload struct {
	Error string `json:"error"`
	Total string `json:"total"`
	Page  string `json:"page"`
	Books []Book `json:"books"`
}

type detailPayload struct {
	Error string `json:"error"`
	Detail
}

// decodeStatus turns the API's string status flag into an Outcome.
// "0" is success; anything else is a failure, and messages that say the
// book was not found are reported as such.
func decodeStatus(errorField string) Outcome {
	errorField = strings.TrimSpace(errorField)
	switch {
	case errorField == successCode:
		return Outcome{Status: StatusOK}
	case strings.Contains(strings.ToLower(errorField), "not found"):
		return Outcome{Status: StatusNotFound, Message: errorField}
	case errorField == "":
		return Outcome{Status: StatusFailed, Message: "missing status"}
	default:
		return Outcome{Status: StatusFailed, Message: errorField}
	}
}
