// Package changefeed fans out "this record set changed" signals from the
// storage layer to read-model subscribers.
//
// Signals carry no payload. A subscriber that is woken re-reads whatever it
// observes, so pending signals for the same subscriber are coalesced.
package changefeed

import (
	"sync"

	"github.com/google/uuid"
)

// Topic names a record set.
type Topic string

const (
	TopicNewBooks      Topic = "new_books"
	TopicFavoriteBooks Topic = "favorite_books"
	TopicBookDetails   Topic = "book_details"
	TopicPreferences   Topic = "preferences"
)

// Publisher is implemented by Hub. Stores depend on this rather than the hub.
type Publisher interface {
	Publish(topic Topic)
}

// Feed is a Publisher that can also be subscribed to.
type Feed interface {
	Publisher
	Subscribe(topics ...Topic) *Subscription
}

// NoopPublisher discards every signal. Useful in tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(Topic) {}

// Subscription receives a signal on C whenever one of its topics changes.
type Subscription struct {
	ID     string
	C      <-chan Topic
	topics map[Topic]struct{}
	ch     chan Topic
	hub    *Hub
	once   sync.Once
}

// Drain discards a pending signal, if any. Callers drain right before
// re-reading so a signal caused by their own write does not wake them again.
func (s *Subscription) Drain() {
	select {
	case <-s.ch:
	default:
	}
}

// Close unregisters the subscription and closes C. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s.ID)
		close(s.ch)
	})
}

func (s *Subscription) wants(topic Topic) bool {
	_, ok := s.topics[topic]
	return ok
}

// Hub is an in-process broadcaster of change signals.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]*Subscription)}
}

// Subscribe registers interest in the given topics.
// Subscribing to a closed hub returns an already-closed subscription.
func (h *Hub) Subscribe(topics ...Topic) *Subscription {
	ch := make(chan Topic, 1)
	sub := &Subscription{
		ID:     uuid.NewString(),
		C:      ch,
		ch:     ch,
		topics: make(map[Topic]struct{}, len(topics)),
		hub:    h,
	}
	for _, t := range topics {
		sub.topics[t] = struct{}{}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.once.Do(func() { close(ch) })
		return sub
	}
	h.subs[sub.ID] = sub
	return sub
}

// Publish wakes every subscriber of topic. It never blocks.
func (h *Hub) Publish(topic Topic) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if !sub.wants(topic) {
			continue
		}
		select {
		case sub.ch <- topic:
		default:
			// already signalled; the subscriber will re-read anyway
		}
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription. Later subscriptions are closed immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.closed = true
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

var _ Feed = (*Hub)(nil)
