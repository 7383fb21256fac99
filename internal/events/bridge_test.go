package events_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/cartsync/internal/events"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBridge_PublishDeliversByKind(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b := events.New(events.WithLogger(quietLogger()), events.WithNowFunc(func() time.Time { return fixed }))

	var updated, refreshed []events.Event
	b.Subscribe(events.CartUpdated, func(ev events.Event) { updated = append(updated, ev) })
	b.Subscribe(events.RefreshLockState, func(ev events.Event) { refreshed = append(refreshed, ev) })

	b.Publish(events.Event{Kind: events.CartUpdated, MiniCartID: "mini-1"})

	require.Len(t, updated, 1)
	assert.Empty(t, refreshed)
	assert.Equal(t, "mini-1", updated[0].MiniCartID)
	assert.NotEmpty(t, updated[0].ID)
	assert.Equal(t, fixed, updated[0].At)
}

func TestBridge_MultipleSubscribersInOrder(t *testing.T) {
	t.Parallel()

	b := events.New(events.WithLogger(quietLogger()))

	var order []int
	for i := range 3 {
		b.Subscribe(events.CartUpdated, func(events.Event) { order = append(order, i) })
	}
	b.Publish(events.Event{Kind: events.CartUpdated})

	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Equal(t, 3, b.Subscribers(events.CartUpdated))
}

func TestBridge_Unsubscribe(t *testing.T) {
	t.Parallel()

	b := events.New(events.WithLogger(quietLogger()))

	calls := 0
	unsub := b.Subscribe(events.CartUpdated, func(events.Event) { calls++ })
	b.Publish(events.Event{Kind: events.CartUpdated})
	unsub()
	unsub()
	b.Publish(events.Event{Kind: events.CartUpdated})

	assert.Equal(t, 1, calls)
	assert.Zero(t, b.Subscribers(events.CartUpdated))
}

func TestBridge_PanickingHandlerIsIsolated(t *testing.T) {
	t.Parallel()

	b := events.New(events.WithLogger(quietLogger()))

	reached := false
	b.Subscribe(events.CartUpdated, func(events.Event) { panic("boom") })
	b.Subscribe(events.CartUpdated, func(events.Event) { reached = true })

	assert.NotPanics(t, func() {
		b.Publish(events.Event{Kind: events.CartUpdated})
	})
	assert.True(t, reached)
}

func TestBridge_Stream(t *testing.T) {
	t.Parallel()

	b := events.New(events.WithLogger(quietLogger()))
	ctx, cancel := context.WithCancel(context.Background())

	ch := b.Stream(ctx, 4, events.CartUpdated, events.RefreshLockState)

	b.Publish(events.Event{Kind: events.CartUpdated, MiniCartID: "m"})
	b.Publish(events.Event{Kind: events.RefreshLockState})

	first := <-ch
	second := <-ch
	assert.Equal(t, events.CartUpdated, first.Kind)
	assert.Equal(t, events.RefreshLockState, second.Kind)

	cancel()
	_, ok := <-ch
	assert.False(t, ok, "stream must close once the context is done")
	assert.Zero(t, b.Subscribers(events.CartUpdated))
}

func TestBridge_StreamDropsWhenFull(t *testing.T) {
	t.Parallel()

	b := events.New(events.WithLogger(quietLogger()))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Stream(ctx, 1, events.CartUpdated)
	for range 3 {
		b.Publish(events.Event{Kind: events.CartUpdated})
	}

	<-ch
	select {
	case <-ch:
		t.Fatal("expected overflow events to be dropped")
	default:
	}
}
