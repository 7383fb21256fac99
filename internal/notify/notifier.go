// Package notify forwards cart events on the bridge to external receivers.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/donaldgifford/cartsync/internal/events"
	"github.com/donaldgifford/cartsync/internal/metrics"
)

// Notifier delivers one bridge event to an external receiver.
type Notifier interface {
	Send(ctx context.Context, ev events.Event) error
}

const (
	defaultQueueSize   = 32
	defaultSendTimeout = 10 * time.Second
)

// Forwarder subscribes a Notifier to the bridge. Bridge handlers run on the
// publisher's goroutine, so events are queued and sent from a worker; a full
// queue drops the event.
type Forwarder struct {
	notifier Notifier
	log      *slog.Logger
	timeout  time.Duration
	queue    chan events.Event
	unsub    func()
	wg       sync.WaitGroup
	once     sync.Once

	mu     sync.Mutex
	closed bool
}

// ForwarderOption configures a Forwarder.
type ForwarderOption func(*Forwarder)

// WithQueueSize sets how many events may wait for delivery.
func WithQueueSize(n int) ForwarderOption {
	return func(f *Forwarder) {
		f.queue = make(chan events.Event, n)
	}
}

// WithSendTimeout bounds each delivery.
func WithSendTimeout(d time.Duration) ForwarderOption {
	return func(f *Forwarder) {
		f.timeout = d
	}
}

// NewForwarder starts forwarding cart/updated events until Close is called.
func NewForwarder(
	b *events.Bridge,
	n Notifier,
	log *slog.Logger,
	opts ...ForwarderOption,
) *Forwarder {
	f := &Forwarder{
		notifier: n,
		log:      log,
		timeout:  defaultSendTimeout,
		queue:    make(chan events.Event, defaultQueueSize),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.wg.Add(1)
	go f.run()

	f.unsub = b.Subscribe(events.CartUpdated, f.enqueue)
	return f
}

func (f *Forwarder) enqueue(ev events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.queue <- ev:
	default:
		metrics.WebhookFailuresTotal.Inc()
		f.log.Warn("notification queue full, event dropped", "kind", ev.Kind, "event_id", ev.ID)
	}
}

func (f *Forwarder) run() {
	defer f.wg.Done()
	for ev := range f.queue {
		ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		if err := f.notifier.Send(ctx, ev); err != nil {
			metrics.WebhookFailuresTotal.Inc()
			f.log.Error("sending event notification", "kind", ev.Kind, "event_id", ev.ID, "error", err)
		}
		cancel()
	}
}

// Close unsubscribes from the bridge and waits for queued events to be sent.
func (f *Forwarder) Close() {
	f.once.Do(func() {
		f.unsub()
		f.mu.Lock()
		f.closed = true
		close(f.queue)
		f.mu.Unlock()
		f.wg.Wait()
	})
}
