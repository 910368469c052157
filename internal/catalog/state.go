package catalog

import (
	"fmt"

	"github.com/mrlokans/bookbar/internal/entities"
)

// Status is the lifecycle position of a read model.
type Status int

const (
	StatusLoading Status = iota
	StatusEmpty
	StatusSuccess
	StatusNotFound
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusEmpty:
		return "empty"
	case StatusSuccess:
		return "success"
	case StatusNotFound:
		return "not_found"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText renders the status as its lowercase name in JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Settled reports whether s is a terminal state.
func (s Status) Settled() bool {
	return s != StatusLoading
}

// ListState is one emission of the new-books or favorites read model.
type ListState struct {
	Status Status                 `json:"status"`
	Books  []entities.BookSummary `json:"books"`
}

// DetailResult is one emission of the book-detail read model. Book is set
// only when Status is StatusSuccess.
type DetailResult struct {
	Status Status               `json:"status"`
	Book   *entities.BookDetail `json:"book,omitempty"`
}

func listState(books []entities.BookSummary) ListState {
	if len(books) == 0 {
		return ListState{Status: StatusEmpty, Books: []entities.BookSummary{}}
	}
	return ListState{Status: StatusSuccess, Books: books}
}
