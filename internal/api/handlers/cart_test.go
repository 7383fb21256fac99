package handlers_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/cartsync/internal/api/handlers"
	"github.com/donaldgifford/cartsync/internal/engine"
	"github.com/donaldgifford/cartsync/internal/events"
	domain "github.com/donaldgifford/cartsync/pkg/types"
)

type quantityCall struct {
	control domain.Control
	value   string
}

type fakeCart struct {
	mu       sync.Mutex
	state    engine.Snapshot
	err      error
	edits    []quantityCall
	removals []domain.Control
}

func (f *fakeCart) OnQuantityInput(c domain.Control, raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, quantityCall{control: c, value: raw})
}

func (f *fakeCart) OnRemoveClick(c domain.Control) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removals = append(f.removals, c)
}

func (f *fakeCart) State(context.Context) (engine.Snapshot, error) {
	return f.state, f.err
}

type fakePublisher struct {
	mu  sync.Mutex
	got []events.Event
}

func (f *fakePublisher) Publish(ev events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, ev)
}

func newFakeCart() *fakeCart {
	return &fakeCart{state: engine.Snapshot{
		CartID:    "C1",
		ItemCount: 3,
		Widgets: []domain.Widget{
			{ID: "mini-1", MiniCartID: "mini-1", Items: []string{"L1", "L2"}},
			{ID: "cart-1", Items: []string{"L1", "L2"}},
		},
	}}
}

func TestQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		body       map[string]any
		wantStatus int
		wantEdit   *quantityCall
	}{
		{
			name:       "queues edit",
			path:       "/api/v1/widgets/cart-1/items/L1/quantity",
			body:       map[string]any{"value": "3"},
			wantStatus: http.StatusAccepted,
			wantEdit:   &quantityCall{control: domain.Control{WidgetID: "cart-1", LineItemID: "L1"}, value: "3"},
		},
		{
			name:       "empty value is passed through",
			path:       "/api/v1/widgets/mini-1/items/L2/quantity",
			body:       map[string]any{"value": ""},
			wantStatus: http.StatusAccepted,
			wantEdit:   &quantityCall{control: domain.Control{WidgetID: "mini-1", LineItemID: "L2"}, value: ""},
		},
		{
			name:       "non numeric value rejected",
			path:       "/api/v1/widgets/cart-1/items/L1/quantity",
			body:       map[string]any{"value": "three"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown widget",
			path:       "/api/v1/widgets/cart-9/items/L1/quantity",
			body:       map[string]any{"value": "3"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "item not in widget",
			path:       "/api/v1/widgets/cart-1/items/L7/quantity",
			body:       map[string]any{"value": "3"},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cart := newFakeCart()
			_, api := humatest.New(t)
			handlers.RegisterCartRoutes(api, handlers.NewCartHandler(cart, &fakePublisher{}))

			resp := api.Post(tt.path, tt.body)
			require.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())

			if tt.wantEdit == nil {
				assert.Empty(t, cart.edits)
				return
			}
			require.Len(t, cart.edits, 1)
			assert.Equal(t, *tt.wantEdit, cart.edits[0])
			assert.Contains(t, resp.Body.String(), `"status":"accepted"`)
		})
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	cart := newFakeCart()
	_, api := humatest.New(t)
	handlers.RegisterCartRoutes(api, handlers.NewCartHandler(cart, &fakePublisher{}))

	resp := api.Post("/api/v1/widgets/mini-1/items/L2/remove")
	require.Equal(t, http.StatusAccepted, resp.Code)
	assert.Equal(t, []domain.Control{{WidgetID: "mini-1", LineItemID: "L2"}}, cart.removals)

	resp = api.Post("/api/v1/widgets/nope/items/L2/remove")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Len(t, cart.removals, 1)
}

func TestRefreshLock(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	_, api := humatest.New(t)
	handlers.RegisterCartRoutes(api, handlers.NewCartHandler(newFakeCart(), pub))

	resp := api.Post("/api/v1/lock-state/refresh", map[string]any{"mini_cart_id": "mini-1"})
	require.Equal(t, http.StatusAccepted, resp.Code)

	resp = api.Post("/api/v1/lock-state/refresh")
	require.Equal(t, http.StatusAccepted, resp.Code)

	require.Len(t, pub.got, 2)
	assert.Equal(t, events.RefreshLockState, pub.got[0].Kind)
	assert.Equal(t, "mini-1", pub.got[0].MiniCartID)
	assert.Empty(t, pub.got[1].MiniCartID)
}

func TestState(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterCartRoutes(api, handlers.NewCartHandler(newFakeCart(), &fakePublisher{}))

	resp := api.Get("/api/v1/state")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"fetching":false`)
	assert.Contains(t, resp.Body.String(), `"cart_id":"C1"`)
	assert.Contains(t, resp.Body.String(), `"mini_cart_id":"mini-1"`)
}

func TestState_EngineStopped(t *testing.T) {
	t.Parallel()

	cart := newFakeCart()
	cart.err = engine.ErrStopped

	_, api := humatest.New(t)
	handlers.RegisterCartRoutes(api, handlers.NewCartHandler(cart, &fakePublisher{}))

	resp := api.Get("/api/v1/state")
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)

	resp = api.Post("/api/v1/widgets/cart-1/items/L1/remove")
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Empty(t, cart.removals)
}
