// Package stream provides a cancellable, ordered sequence of values that is
// re-evaluated whenever a changefeed subscription fires.
package stream

import (
	"context"
	"errors"
	"sync"

	"github.com/mrlokans/bookbar/internal/changefeed"
)

// ErrClosed is returned by Settle when the stream ended before settling.
var ErrClosed = errors.New("stream closed")

// LoadFunc reads the current value of a read model.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Stream is an observable read model. One goroutine produces values; the
// consumer pulls them with Next or ranges over C.
type Stream[T any] struct {
	ch     chan T
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

func newStream[T any](parent context.Context) *Stream[T] {
	ctx, cancel := context.WithCancel(parent)
	return &Stream[T]{
		ch:     make(chan T),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Watch emits initial (when non-nil), then the result of load, then the
// result of load again after every signal on sub. A load error ends the
// stream and is reported by Err. The stream owns sub and closes it.
// With a nil sub the stream ends after the first load.
func Watch[T any](ctx context.Context, sub *changefeed.Subscription, initial *T, load LoadFunc[T]) *Stream[T] {
	s := newStream[T](ctx)

	go func() {
		defer close(s.done)
		defer close(s.ch)
		if sub != nil {
			defer sub.Close()
		}

		if initial != nil && !s.send(*initial) {
			return
		}

		for {
			value, err := load(s.ctx)
			if err != nil {
				if s.ctx.Err() == nil {
					s.setErr(err)
				}
				return
			}
			if !s.send(value) {
				return
			}
			if sub == nil {
				return
			}

			select {
			case <-s.ctx.Done():
				return
			case _, ok := <-sub.C:
				if !ok {
					return
				}
			}
		}
	}()

	return s
}

// Just returns a stream that emits values in order and ends.
func Just[T any](ctx context.Context, values ...T) *Stream[T] {
	s := newStream[T](ctx)

	go func() {
		defer close(s.done)
		defer close(s.ch)
		for _, v := range values {
			if !s.send(v) {
				return
			}
		}
	}()

	return s
}

func (s *Stream[T]) send(v T) bool {
	select {
	case s.ch <- v:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Stream[T]) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Next blocks until the next value is available. It returns false once the
// stream has ended, has been cancelled, or ctx is done.
func (s *Stream[T]) Next(ctx context.Context) (T, bool) {
	var zero T
	select {
	case v, ok := <-s.ch:
		return v, ok
	case <-ctx.Done():
		return zero, false
	}
}

// C exposes the emission channel. It is closed when the stream ends.
func (s *Stream[T]) C() <-chan T {
	return s.ch
}

// Cancel stops future emissions and releases the subscription.
// Completed store writes are not rolled back.
func (s *Stream[T]) Cancel() {
	s.cancel()
}

// Done is closed once the producer goroutine has exited.
func (s *Stream[T]) Done() <-chan struct{} {
	return s.done
}

// Err returns the load error that ended the stream, if any.
func (s *Stream[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Settle waits for the first value accepted by settled, cancels the stream
// and returns that value.
func Settle[T any](ctx context.Context, s *Stream[T], settled func(T) bool) (T, error) {
	defer s.Cancel()

	for {
		v, ok := s.Next(ctx)
		if !ok {
			var zero T
			if err := ctx.Err(); err != nil {
				return zero, err
			}
			<-s.Done()
			if err := s.Err(); err != nil {
				return zero, err
			}
			return zero, ErrClosed
		}
		if settled(v) {
			return v, nil
		}
	}
}
