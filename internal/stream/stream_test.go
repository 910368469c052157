package stream

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookbar/internal/changefeed"
)

func nextWithin[T any](t *testing.T, s *Stream[T]) (T, bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return s.Next(ctx)
}

func TestWatch_EmitsInitialThenLoad(t *testing.T) {
	hub := changefeed.NewHub()
	defer hub.Close()

	initial := -1
	s := Watch(context.Background(), hub.Subscribe(changefeed.TopicNewBooks), &initial, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	defer s.Cancel()

	v, ok := nextWithin(t, s)
	require.True(t, ok)
	assert.Equal(t, -1, v)

	v, ok = nextWithin(t, s)
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestWatch_ReloadsOnSignal(t *testing.T) {
	hub := changefeed.NewHub()
	defer hub.Close()

	var counter atomic.Int32
	s := Watch(context.Background(), hub.Subscribe(changefeed.TopicFavoriteBooks), nil, func(ctx context.Context) (int32, error) {
		return counter.Add(1), nil
	})
	defer s.Cancel()

	v, ok := nextWithin(t, s)
	require.True(t, ok)
	assert.Equal(t, int32(1), v)

	hub.Publish(changefeed.TopicFavoriteBooks)

	v, ok = nextWithin(t, s)
	require.True(t, ok)
	assert.Equal(t, int32(2), v)
}

func TestWatch_IgnoresOtherTopics(t *testing.T) {
	hub := changefeed.NewHub()
	defer hub.Close()

	s := Watch(context.Background(), hub.Subscribe(changefeed.TopicNewBooks), nil, func(ctx context.Context) (string, error) {
		return "v", nil
	})
	defer s.Cancel()

	_, ok := nextWithin(t, s)
	require.True(t, ok)

	hub.Publish(changefeed.TopicPreferences)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, ok = s.Next(ctx)
	assert.False(t, ok)
}

func TestWatch_LoadErrorEndsStream(t *testing.T) {
	hub := changefeed.NewHub()
	defer hub.Close()

	boom := errors.New("disk on fire")
	s := Watch(context.Background(), hub.Subscribe(changefeed.TopicBookDetails), nil, func(ctx context.Context) (int, error) {
		return 0, boom
	})

	_, ok := nextWithin(t, s)
	assert.False(t, ok)
	<-s.Done()
	assert.ErrorIs(t, s.Err(), boom)
}

func TestWatch_CancelStopsEmissionsAndReleasesSubscription(t *testing.T) {
	hub := changefeed.NewHub()
	defer hub.Close()

	s := Watch(context.Background(), hub.Subscribe(changefeed.TopicNewBooks), nil, func(ctx context.Context) (int, error) {
		return 1, nil
	})

	_, ok := nextWithin(t, s)
	require.True(t, ok)

	s.Cancel()
	<-s.Done()

	_, ok = nextWithin(t, s)
	assert.False(t, ok)
	assert.NoError(t, s.Err())
	assert.Equal(t, 0, hub.Len())
}

func TestWatch_EndsWhenHubCloses(t *testing.T) {
	hub := changefeed.NewHub()

	s := Watch(context.Background(), hub.Subscribe(changefeed.TopicNewBooks), nil, func(ctx context.Context) (int, error) {
		return 1, nil
	})

	_, ok := nextWithin(t, s)
	require.True(t, ok)

	hub.Close()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("stream did not end after hub close")
	}
}

func TestWatch_NilSubscriptionEmitsOnce(t *testing.T) {
	s := Watch(context.Background(), nil, nil, func(ctx context.Context) (string, error) {
		return "once", nil
	})

	v, ok := nextWithin(t, s)
	require.True(t, ok)
	assert.Equal(t, "once", v)

	_, ok = nextWithin(t, s)
	assert.False(t, ok)
}

func TestJust(t *testing.T) {
	s := Just(context.Background(), "a", "b")

	var got []string
	for v := range s.C() {
		got = append(got, v)
	}

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestSettle(t *testing.T) {
	s := Just(context.Background(), 1, 2, 3)

	v, err := Settle(context.Background(), s, func(v int) bool { return v > 1 })

	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestSettle_StreamEndsFirst(t *testing.T) {
	s := Just(context.Background(), 1)

	_, err := Settle(context.Background(), s, func(v int) bool { return false })

	assert.ErrorIs(t, err, ErrClosed)
}

func TestSettle_ReportsLoadError(t *testing.T) {
	boom := errors.New("boom")
	s := Watch(context.Background(), nil, nil, func(ctx context.Context) (int, error) {
		return 0, boom
	})

	_, err := Settle(context.Background(), s, func(v int) bool { return true })

	assert.ErrorIs(t, err, boom)
}
