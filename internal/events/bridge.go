// Package events implements the in-page publish/subscribe bridge used to tell
// sibling cart widgets that an update happened elsewhere, and to ask the
// engine for a lock-state refresh.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/donaldgifford/cartsync/internal/metrics"
)

// Kind tags an event.
type Kind string

// Event kinds.
const (
	CartUpdated      Kind = "cart/updated"
	RefreshLockState Kind = "cart/refresh-lock-state"
)

// Event is the payload carried on the bridge. MiniCartID names the compact
// widget that caused the event, or is empty.
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	MiniCartID string    `json:"mini_cart_id,omitempty"`
	At         time.Time `json:"at"`
}

// Handler receives published events.
type Handler func(Event)

type subscription struct {
	id uint64
	h  Handler
}

// Bridge is a typed, in-process observer registry. Publish is fire and
// forget: handlers run on the publisher's goroutine in subscription order and
// a panicking handler does not stop delivery to the others.
type Bridge struct {
	mu   sync.RWMutex
	subs map[Kind][]subscription
	next uint64
	log  *slog.Logger
	now  func() time.Time
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		b.log = l
	}
}

// WithNowFunc overrides the event timestamp source for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(b *Bridge) {
		b.now = f
	}
}

// New creates an empty Bridge.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		subs: make(map[Kind][]subscription),
		log:  slog.Default(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers h for kind and returns a function that removes it.
func (b *Bridge) Subscribe(kind Kind, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	id := b.next
	b.subs[kind] = append(b.subs[kind], subscription{id: id, h: h})

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(kind, id) })
	}
}

func (b *Bridge) unsubscribe(kind Kind, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs[kind] = slices.DeleteFunc(b.subs[kind], func(s subscription) bool {
		return s.id == id
	})
}

// Stream delivers events of the given kinds to a buffered channel until ctx
// is done. Events are dropped when the buffer is full.
func (b *Bridge) Stream(ctx context.Context, buffer int, kinds ...Kind) <-chan Event {
	ch := make(chan Event, buffer)

	var (
		mu     sync.Mutex
		closed bool
	)
	deliver := func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- ev:
		default:
			metrics.BridgeEventsDroppedTotal.WithLabelValues(string(ev.Kind)).Inc()
		}
	}

	unsubs := make([]func(), 0, len(kinds))
	for _, k := range kinds {
		unsubs = append(unsubs, b.Subscribe(k, deliver))
	}

	go func() {
		<-ctx.Done()
		for _, u := range unsubs {
			u()
		}
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()

	return ch
}

// Publish stamps ev with an id and time when missing and delivers it to
// every subscriber of its kind.
func (b *Bridge) Publish(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = b.now()
	}

	b.mu.RLock()
	subs := slices.Clone(b.subs[ev.Kind])
	b.mu.RUnlock()

	metrics.BridgeEventsTotal.WithLabelValues(string(ev.Kind)).Inc()

	for _, s := range subs {
		b.dispatch(s.h, ev)
	}
}

func (b *Bridge) dispatch(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				"kind", ev.Kind,
				"event_id", ev.ID,
				"error", fmt.Sprint(r),
			)
		}
	}()
	h(ev)
}

// Subscribers returns the number of handlers registered for kind.
func (b *Bridge) Subscribers(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[kind])
}
