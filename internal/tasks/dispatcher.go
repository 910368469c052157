package tasks

import (
	"context"
	"fmt"
	"log"

	"github.com/mikestefanello/backlite"
)

// Dispatcher runs catalog maintenance through the queue when one is
// configured, and inline otherwise.
type Dispatcher struct {
	client   *Client
	catalog  Catalog
	books    NewBooksLister
	prefetch bool
}

// NewDispatcher creates a dispatcher. client may be nil.
func NewDispatcher(client *Client, c Catalog, books NewBooksLister, prefetchDetails bool) *Dispatcher {
	return &Dispatcher{client: client, catalog: c, books: books, prefetch: prefetchDetails}
}

// Queued reports whether work is handed to the background queue.
func (d *Dispatcher) Queued() bool {
	return d.client != nil
}

// RefreshNewBooks enqueues a refresh and returns the task ID, or runs it
// inline and returns an empty ID.
func (d *Dispatcher) RefreshNewBooks(ctx context.Context) (string, error) {
	task := RefreshNewBooksTask{PrefetchDetails: d.prefetch}

	if d.client != nil {
		ids, err := d.client.Enqueue(ctx, task)
		if err != nil {
			return "", fmt.Errorf("enqueue refresh: %w", err)
		}
		return ids[0], nil
	}

	return "", RefreshNewBooksProcessor(d.catalog, d.books, d.runInline)(ctx, task)
}

// PrefetchDetail enqueues a detail prefetch, or runs it inline.
func (d *Dispatcher) PrefetchDetail(ctx context.Context, isbn13 string) (string, error) {
	task := PrefetchBookDetailTask{ISBN13: isbn13}

	if d.client != nil {
		ids, err := d.client.Enqueue(ctx, task)
		if err != nil {
			return "", fmt.Errorf("enqueue prefetch: %w", err)
		}
		return ids[0], nil
	}

	return "", PrefetchBookDetailProcessor(d.catalog)(ctx, task)
}

// Status returns a queued task's status.
func (d *Dispatcher) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	if d.client == nil {
		return backlite.TaskStatusNotFound, nil
	}
	return d.client.Status(ctx, taskID)
}

// runInline executes follow-up prefetches synchronously when there is no queue.
// It stops at the first task once ctx is done.
func (d *Dispatcher) runInline(ctx context.Context, tasks ...backlite.Task) ([]string, error) {
	process := PrefetchBookDetailProcessor(d.catalog)
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		task, ok := t.(PrefetchBookDetailTask)
		if !ok {
			return nil, fmt.Errorf("unsupported inline task %s", t.Config().Name)
		}
		if err := process(ctx, task); err != nil {
			log.Printf("[TASK] %v", err)
		}
	}
	return nil, nil
}
