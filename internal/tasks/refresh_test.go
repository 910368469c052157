package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookbar/internal/catalog"
	"github.com/mrlokans/bookbar/internal/entities"
)

type fakeCatalog struct {
	mu          sync.Mutex
	refreshErr  error
	prefetchErr map[string]error
	refreshes   int
	prefetched  []string
	prefetchCh  chan string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{prefetchErr: map[string]error{}, prefetchCh: make(chan string, 16)}
}

func (f *fakeCatalog) RefreshNewBooks(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.refreshErr
}

func (f *fakeCatalog) PrefetchDetail(_ context.Context, isbn13 string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefetched = append(f.prefetched, isbn13)
	f.prefetchCh <- isbn13
	return f.prefetchErr[isbn13]
}

type fakeLister []entities.BookSummary

func (l fakeLister) GetAll(context.Context) ([]entities.BookSummary, error) {
	return l, nil
}

func TestRefreshNewBooksTaskConfig(t *testing.T) {
	cfg := RefreshNewBooksTask{}.Config()

	assert.Equal(t, "refresh_new_books", cfg.Name)
	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.Zero(t, cfg.Backoff)
	assert.NotNil(t, cfg.Retention)
}

func TestPrefetchBookDetailTaskConfig(t *testing.T) {
	cfg := PrefetchBookDetailTask{ISBN13: "9781617294136"}.Config()

	assert.Equal(t, "prefetch_book_detail", cfg.Name)
	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.Zero(t, cfg.Backoff)
}

func TestRefreshNewBooksProcessor(t *testing.T) {
	t.Run("refresh only", func(t *testing.T) {
		c := newFakeCatalog()
		err := RefreshNewBooksProcessor(c, nil, nil)(context.Background(), RefreshNewBooksTask{})
		require.NoError(t, err)
		assert.Equal(t, 1, c.refreshes)
	})

	t.Run("remote failure is retried", func(t *testing.T) {
		c := newFakeCatalog()
		c.refreshErr = catalog.ErrRemoteUnavailable
		err := RefreshNewBooksProcessor(c, nil, nil)(context.Background(), RefreshNewBooksTask{})
		assert.ErrorIs(t, err, catalog.ErrRemoteUnavailable)
	})

	t.Run("enqueues prefetch per book", func(t *testing.T) {
		c := newFakeCatalog()
		books := fakeLister{{ISBN13: "9781000000001"}, {ISBN13: "9781000000002"}}

		var enqueued []backlite.Task
		enqueue := func(_ context.Context, tasks ...backlite.Task) ([]string, error) {
			enqueued = append(enqueued, tasks...)
			return nil, nil
		}

		err := RefreshNewBooksProcessor(c, books, enqueue)(context.Background(), RefreshNewBooksTask{PrefetchDetails: true})
		require.NoError(t, err)
		assert.Equal(t, []backlite.Task{
			PrefetchBookDetailTask{ISBN13: "9781000000001"},
			PrefetchBookDetailTask{ISBN13: "9781000000002"},
		}, enqueued)
	})

	t.Run("missing catalog", func(t *testing.T) {
		err := RefreshNewBooksProcessor(nil, nil, nil)(context.Background(), RefreshNewBooksTask{})
		assert.Error(t, err)
	})
}

func TestPrefetchBookDetailProcessor(t *testing.T) {
	c := newFakeCatalog()
	c.prefetchErr["9781000000404"] = catalog.ErrNotFound
	c.prefetchErr["9781000000500"] = catalog.ErrRemoteUnavailable
	process := PrefetchBookDetailProcessor(c)
	ctx := context.Background()

	assert.NoError(t, process(ctx, PrefetchBookDetailTask{ISBN13: "9781617294136"}))
	assert.NoError(t, process(ctx, PrefetchBookDetailTask{ISBN13: "9781000000404"}))
	assert.ErrorIs(t, process(ctx, PrefetchBookDetailTask{ISBN13: "9781000000500"}), catalog.ErrRemoteUnavailable)
}

func TestDispatcher_Inline(t *testing.T) {
	c := newFakeCatalog()
	books := fakeLister{{ISBN13: "9781000000001"}}
	d := NewDispatcher(nil, c, books, true)
	ctx := context.Background()

	assert.False(t, d.Queued())

	id, err := d.RefreshNewBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, 1, c.refreshes)
	assert.Equal(t, []string{"9781000000001"}, c.prefetched)

	c.refreshErr = errors.New("remote catalog unavailable")
	_, err = d.RefreshNewBooks(ctx)
	assert.Error(t, err)

	status, err := d.Status(ctx, "anything")
	require.NoError(t, err)
	assert.Equal(t, backlite.TaskStatusNotFound, status)
}

func TestDispatcher_Queued(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 1
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), cfg)
	require.NoError(t, err)
	defer client.Close()

	c := newFakeCatalog()
	books := fakeLister{{ISBN13: "9781000000001"}}
	client.Register(
		NewRefreshNewBooksQueue(c, books, client.Enqueue),
		NewPrefetchBookDetailQueue(c),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	d := NewDispatcher(client, c, books, true)
	assert.True(t, d.Queued())

	id, err := d.RefreshNewBooks(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case isbn := <-c.prefetchCh:
		assert.Equal(t, "9781000000001", isbn)
	case <-time.After(10 * time.Second):
		t.Fatal("prefetch task was not executed within timeout")
	}
}

func (f *fakeCatalog) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

func TestDispatcher_QueuedRemoteFailureIsNotRetried(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 1
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), cfg)
	require.NoError(t, err)
	defer client.Close()

	c := newFakeCatalog()
	c.refreshErr = catalog.ErrRemoteUnavailable
	client.Register(
		NewRefreshNewBooksQueue(c, fakeLister{}, client.Enqueue),
		NewPrefetchBookDetailQueue(c),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	d := NewDispatcher(client, c, fakeLister{}, false)
	id, err := d.RefreshNewBooks(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, err := d.Status(ctx, id)
		return err == nil && status == backlite.TaskStatusFailure
	}, 10*time.Second, 20*time.Millisecond)

	// give a retry, if any, the chance to run
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, c.refreshCount())
}

func TestDispatcher_InlinePrefetchStopsWhenCanceled(t *testing.T) {
	c := newFakeCatalog()
	d := NewDispatcher(nil, c, fakeLister{{ISBN13: "9781000000001"}, {ISBN13: "9781000000002"}}, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.runInline(ctx, PrefetchBookDetailTask{ISBN13: "9781000000001"}, PrefetchBookDetailTask{ISBN13: "9781000000002"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.prefetched)
}
