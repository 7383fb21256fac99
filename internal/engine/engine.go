// Package engine keeps every cart widget on a page consistent with the remote
// cart. It owns the debounce timers, the request lifecycle, lock state across
// widgets and reconciliation of server snapshots.
//
// All engine state is confined to one event-loop goroutine. Public methods
// post work onto the loop; timers and gateway completions post back onto it,
// so lock, request, unlock and reconcile always happen in that order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/donaldgifford/cartsync/internal/events"
	"github.com/donaldgifford/cartsync/internal/gateway"
	"github.com/donaldgifford/cartsync/internal/state"
	domain "github.com/donaldgifford/cartsync/pkg/types"
)

const (
	defaultDebounce   = 500 * time.Millisecond
	defaultTaskBuffer = 64
)

// ErrStopped is returned by calls that need the loop after it has exited.
var ErrStopped = errors.New("engine stopped")

// View is the rendering collaborator: the live document the engine writes
// lock state, totals and row changes into.
type View interface {
	Widgets() []domain.Widget
	SetLocked(widgetID string, locked bool)
	SetItemTotal(widgetID, itemID, formatted string) bool
	SetTotals(widgetID, subtotal, tax string)
	AddItem(ctx context.Context, widgetID, itemID string, item domain.SnapshotItem) error
	RemoveItem(widgetID, itemID string) bool
	ShowEmpty(ctx context.Context, widgetID string) error
	SetErrorBanner(message string, active bool)
	SetItemCount(count int)
}

type pendingEdit struct {
	value string
	timer *time.Timer
}

// Engine is the cart synchronization engine for one page.
type Engine struct {
	gateway gateway.Gateway
	view    View
	fetch   *state.Fetch
	client  state.ClientState
	bridge  *events.Bridge
	log     *slog.Logger

	endpoint      gateway.Endpoint
	quantityParam string
	debounce      time.Duration
	message502    string
	taskBuffer    int

	index   *Index
	pending map[domain.Control]*pendingEdit

	tasks     chan func()
	done      chan struct{}
	ctx       context.Context
	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	exited    chan struct{}
	unsub     func()
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithDebounce sets the quiet period before a quantity edit is sent.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) {
		e.debounce = d
	}
}

// WithEndpoint sets how line item URLs are built.
func WithEndpoint(ep gateway.Endpoint) Option {
	return func(e *Engine) {
		e.endpoint = ep
	}
}

// WithQuantityParam sets the query parameter carrying the new quantity.
func WithQuantityParam(p string) Option {
	return func(e *Engine) {
		e.quantityParam = p
	}
}

// WithBadGatewayMessage sets the banner text shown on a 502 response.
func WithBadGatewayMessage(msg string) Option {
	return func(e *Engine) {
		e.message502 = msg
	}
}

// WithFetchState shares an in-flight flag with other page actors.
func WithFetchState(f *state.Fetch) Option {
	return func(e *Engine) {
		e.fetch = f
	}
}

// WithClientState sets where the cart identity and item count live.
func WithClientState(s state.ClientState) Option {
	return func(e *Engine) {
		e.client = s
	}
}

// WithBridge sets the event bridge shared with sibling widgets.
func WithBridge(b *events.Bridge) Option {
	return func(e *Engine) {
		e.bridge = b
	}
}

// WithTaskBuffer sets the capacity of the loop's task queue.
func WithTaskBuffer(n int) Option {
	return func(e *Engine) {
		e.taskBuffer = n
	}
}

// NewEngine creates an Engine over a gateway and a view. The widget index is
// built from the view immediately.
func NewEngine(gw gateway.Gateway, v View, opts ...Option) *Engine {
	e := &Engine{
		gateway:       gw,
		view:          v,
		log:           slog.Default(),
		quantityParam: "quantity",
		debounce:      defaultDebounce,
		message502:    "There was an error updating your cart. Please try again.",
		taskBuffer:    defaultTaskBuffer,
		pending:       make(map[domain.Control]*pendingEdit),
		done:          make(chan struct{}),
		exited:        make(chan struct{}),
		ctx:           context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fetch == nil {
		e.fetch = state.NewFetch()
	}
	if e.client == nil {
		e.client = state.NewMemory("", 0)
	}
	if e.bridge == nil {
		e.bridge = events.New(events.WithLogger(e.log))
	}
	e.tasks = make(chan func(), e.taskBuffer)
	e.index = NewIndex(v.Widgets())
	return e
}

// Bridge returns the event bridge the engine publishes on.
func (e *Engine) Bridge() *events.Bridge {
	return e.bridge
}

// Fetch returns the in-flight flag.
func (e *Engine) Fetch() *state.Fetch {
	return e.fetch
}

// Start runs the event loop until ctx is done or Stop is called. Gateway
// requests inherit ctx.
func (e *Engine) Start(ctx context.Context) {
	e.startOnce.Do(func() {
		select {
		case <-e.done:
			return
		default:
		}
		ctx, e.cancel = context.WithCancel(ctx)
		e.ctx = ctx
		e.unsub = e.bridge.Subscribe(events.RefreshLockState, func(ev events.Event) {
			e.post(func() { e.applyLockState(ev.MiniCartID) })
		})
		go e.loop(ctx)
		e.log.Info("cart engine started", "widgets", len(e.index.IDs()))
	})
}

// Stop ends the loop and waits for it to exit. Requests already in flight
// are not cancelled by Stop itself; their completions are discarded.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		if e.cancel == nil {
			close(e.done)
			close(e.exited)
			return
		}
		e.cancel()
		<-e.exited
	})
}

func (e *Engine) loop(ctx context.Context) {
	defer close(e.exited)
	defer e.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-e.tasks:
			fn()
		}
	}
}

func (e *Engine) shutdown() {
	close(e.done)
	if e.unsub != nil {
		e.unsub()
	}
	for c, p := range e.pending {
		p.timer.Stop()
		delete(e.pending, c)
	}
	e.log.Info("cart engine stopped")
}

// post queues fn for the loop. It is dropped once the loop has exited.
func (e *Engine) post(fn func()) bool {
	select {
	case <-e.done:
		return false
	default:
	}
	select {
	case e.tasks <- fn:
		return true
	case <-e.done:
		return false
	}
}

// call runs fn on the loop and waits for it.
func (e *Engine) call(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	if !e.post(func() { fn(); close(ran) }) {
		return ErrStopped
	}
	select {
	case <-ran:
		return nil
	case <-e.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits until every task posted before it has run.
func (e *Engine) Flush(ctx context.Context) error {
	return e.call(ctx, func() {})
}

// Snapshot is a consistent view of engine state.
type Snapshot struct {
	Fetching     bool            `json:"fetching"`
	PendingEdits int             `json:"pending_edits"`
	Widgets      []domain.Widget `json:"widgets"`
	CartID       string          `json:"cart_id,omitempty"`
	ItemCount    int             `json:"item_count"`
}

// State reads the engine state on the loop.
func (e *Engine) State(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := e.call(ctx, func() {
		s = Snapshot{
			Fetching:     e.fetch.IsFetching(),
			PendingEdits: len(e.pending),
			Widgets:      e.index.Widgets(),
			CartID:       e.client.CartID(),
			ItemCount:    e.client.ItemCount(),
		}
	})
	return s, err
}

// WaitIdle blocks until no edit is pending and no mutation is in flight.
func (e *Engine) WaitIdle(ctx context.Context, poll time.Duration) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		s, err := e.State(ctx)
		if err != nil {
			return fmt.Errorf("reading engine state: %w", err)
		}
		if !s.Fetching && s.PendingEdits == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ApplyLockState re-renders lock state across widgets, skipping the
// mini-cart named by excludeMiniCartID. It performs no mutation.
func (e *Engine) ApplyLockState(excludeMiniCartID string) {
	e.post(func() { e.applyLockState(excludeMiniCartID) })
}

func (e *Engine) publishUpdated(miniCartID string) {
	e.bridge.Publish(events.Event{Kind: events.CartUpdated, MiniCartID: miniCartID})
}
