package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookbar/internal/catalog"
	"github.com/mrlokans/bookbar/internal/entities"
)

// Catalog is the work the queues delegate to.
type Catalog interface {
	RefreshNewBooks(ctx context.Context) error
	PrefetchDetail(ctx context.Context, isbn13 string) error
}

// NewBooksLister reads the cached new-books feed.
type NewBooksLister interface {
	GetAll(ctx context.Context) ([]entities.BookSummary, error)
}

// EnqueueFunc saves follow-up tasks.
type EnqueueFunc func(ctx context.Context, tasks ...backlite.Task) ([]string, error)

// RefreshNewBooksTask replaces the cached new-books feed from the remote catalog.
type RefreshNewBooksTask struct {
	// PrefetchDetails enqueues a detail prefetch for every book after a
	// successful refresh.
	PrefetchDetails bool `json:"prefetch_details,omitempty"`
}

// Config returns the queue configuration for refresh tasks.
func (t RefreshNewBooksTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_new_books",
		MaxAttempts: 1,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RefreshNewBooksProcessor creates a processor function for RefreshNewBooksTask.
// A remote failure fails the task once; it is never retried, the next
// refresh is the next explicit or scheduled one.
func RefreshNewBooksProcessor(c Catalog, books NewBooksLister, enqueue EnqueueFunc) backlite.QueueProcessor[RefreshNewBooksTask] {
	return func(ctx context.Context, task RefreshNewBooksTask) error {
		if c == nil {
			return fmt.Errorf("catalog not configured")
		}

		if err := c.RefreshNewBooks(ctx); err != nil {
			return fmt.Errorf("refresh new books: %w", err)
		}

		if !task.PrefetchDetails || books == nil || enqueue == nil {
			log.Printf("[TASK] New books refreshed")
			return nil
		}

		list, err := books.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("list new books: %w", err)
		}

		followUps := make([]backlite.Task, 0, len(list))
		for _, b := range list {
			followUps = append(followUps, PrefetchBookDetailTask{ISBN13: b.ISBN13})
		}
		if _, err := enqueue(ctx, followUps...); err != nil {
			return fmt.Errorf("enqueue detail prefetch: %w", err)
		}

		log.Printf("[TASK] New books refreshed, %d detail prefetches enqueued", len(followUps))
		return nil
	}
}

// NewRefreshNewBooksQueue creates a backlite queue for refresh tasks.
func NewRefreshNewBooksQueue(c Catalog, books NewBooksLister, enqueue EnqueueFunc) backlite.Queue {
	return backlite.NewQueue(RefreshNewBooksProcessor(c, books, enqueue))
}

// PrefetchBookDetailTask caches the full record of one book.
type PrefetchBookDetailTask struct {
	ISBN13 string `json:"isbn13"`
}

// Config returns the queue configuration for prefetch tasks.
func (t PrefetchBookDetailTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prefetch_book_detail",
		MaxAttempts: 1,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: true,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PrefetchBookDetailProcessor creates a processor function for PrefetchBookDetailTask.
// Unknown books succeed; a remote failure fails the task without a retry.
func PrefetchBookDetailProcessor(c Catalog) backlite.QueueProcessor[PrefetchBookDetailTask] {
	return func(ctx context.Context, task PrefetchBookDetailTask) error {
		if c == nil {
			return fmt.Errorf("catalog not configured")
		}

		err := c.PrefetchDetail(ctx, task.ISBN13)
		switch {
		case err == nil:
			log.Printf("[TASK] Book %s detail cached", task.ISBN13)
			return nil
		case errors.Is(err, catalog.ErrNotFound), errors.Is(err, catalog.ErrInvalidISBN):
			log.Printf("[TASK] Book %s skipped: %v", task.ISBN13, err)
			return nil
		default:
			return fmt.Errorf("prefetch book %s: %w", task.ISBN13, err)
		}
	}
}

// NewPrefetchBookDetailQueue creates a backlite queue for prefetch tasks.
func NewPrefetchBookDetailQueue(c Catalog) backlite.Queue {
	return backlite.NewQueue(PrefetchBookDetailProcessor(c))
}
