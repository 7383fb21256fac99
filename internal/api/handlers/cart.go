package handlers

import (
	"context"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/cartsync/internal/engine"
	"github.com/donaldgifford/cartsync/internal/events"
	domain "github.com/donaldgifford/cartsync/pkg/types"
)

// Cart is the synchronization engine as seen by the HTTP surface.
type Cart interface {
	OnQuantityInput(c domain.Control, raw string)
	OnRemoveClick(c domain.Control)
	State(ctx context.Context) (engine.Snapshot, error)
}

// Publisher puts events on the in-page bridge.
type Publisher interface {
	Publish(ev events.Event)
}

// CartHandler turns shopper actions into engine input.
type CartHandler struct {
	cart   Cart
	bridge Publisher
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(c Cart, p Publisher) *CartHandler {
	return &CartHandler{cart: c, bridge: p}
}

// QuantityInput is the request for a quantity edit.
type QuantityInput struct {
	Widget string `path:"widget" maxLength:"128" doc:"Cart widget id"`
	Item   string `path:"item" maxLength:"128" doc:"Line item id"`
	Body   struct {
		Value string `json:"value" pattern:"^[0-9]*$" maxLength:"6" doc:"New quantity. An empty value is an incomplete edit and is ignored."`
	}
}

// RemoveInput is the request for a line item removal.
type RemoveInput struct {
	Widget string `path:"widget" maxLength:"128" doc:"Cart widget id"`
	Item   string `path:"item" maxLength:"128" doc:"Line item id"`
}

// RefreshLockInput is the request for a lock-state refresh.
type RefreshLockInput struct {
	Body struct {
		MiniCartID string `json:"mini_cart_id,omitempty" doc:"Mini-cart that manages its own lock state and is skipped"`
	} `required:"false"`
}

// AcceptedOutput acknowledges queued work.
type AcceptedOutput struct {
	Body struct {
		Status string `json:"status" example:"accepted" doc:"Always accepted; the outcome is reported on the event stream"`
	}
}

// StateOutput is the response for GET /api/v1/state.
type StateOutput struct {
	Body engine.Snapshot
}

func accepted() *AcceptedOutput {
	out := &AcceptedOutput{}
	out.Body.Status = "accepted"
	return out
}

// control validates that the widget exists and shows the line item.
func (h *CartHandler) control(ctx context.Context, widget, item string) (domain.Control, error) {
	s, err := h.cart.State(ctx)
	if err != nil {
		return domain.Control{}, huma.Error503ServiceUnavailable("cart engine unavailable")
	}
	for _, w := range s.Widgets {
		if w.ID != widget {
			continue
		}
		if !slices.Contains(w.Items, item) {
			return domain.Control{}, huma.Error404NotFound("line item not shown in widget " + widget)
		}
		return domain.Control{WidgetID: widget, LineItemID: item}, nil
	}
	return domain.Control{}, huma.Error404NotFound("unknown cart widget " + widget)
}

// Quantity queues a debounced quantity edit.
func (h *CartHandler) Quantity(ctx context.Context, in *QuantityInput) (*AcceptedOutput, error) {
	c, err := h.control(ctx, in.Widget, in.Item)
	if err != nil {
		return nil, err
	}
	h.cart.OnQuantityInput(c, in.Body.Value)
	return accepted(), nil
}

// Remove queues a line item removal. It is dropped by the engine when a
// mutation is already in flight.
func (h *CartHandler) Remove(ctx context.Context, in *RemoveInput) (*AcceptedOutput, error) {
	c, err := h.control(ctx, in.Widget, in.Item)
	if err != nil {
		return nil, err
	}
	h.cart.OnRemoveClick(c)
	return accepted(), nil
}

// RefreshLock publishes cart/refresh-lock-state.
func (h *CartHandler) RefreshLock(_ context.Context, in *RefreshLockInput) (*AcceptedOutput, error) {
	h.bridge.Publish(events.Event{Kind: events.RefreshLockState, MiniCartID: in.Body.MiniCartID})
	return accepted(), nil
}

// State returns the engine state.
func (h *CartHandler) State(ctx context.Context, _ *struct{}) (*StateOutput, error) {
	s, err := h.cart.State(ctx)
	if err != nil {
		return nil, huma.Error503ServiceUnavailable("cart engine unavailable")
	}
	return &StateOutput{Body: s}, nil
}

// RegisterCartRoutes registers the cart endpoints with the Huma API.
func RegisterCartRoutes(api huma.API, h *CartHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "update-quantity",
		Method:        http.MethodPost,
		Path:          "/api/v1/widgets/{widget}/items/{item}/quantity",
		Summary:       "Edit a line item quantity",
		Description:   "Restarts the debounce for the control; the update is sent once edits stop.",
		Tags:          []string{"cart"},
		DefaultStatus: http.StatusAccepted,
		Errors:        []int{http.StatusNotFound, http.StatusServiceUnavailable},
	}, h.Quantity)

	huma.Register(api, huma.Operation{
		OperationID:   "remove-item",
		Method:        http.MethodPost,
		Path:          "/api/v1/widgets/{widget}/items/{item}/remove",
		Summary:       "Remove a line item",
		Description:   "Dropped without error while another mutation is in flight.",
		Tags:          []string{"cart"},
		DefaultStatus: http.StatusAccepted,
		Errors:        []int{http.StatusNotFound, http.StatusServiceUnavailable},
	}, h.Remove)

	huma.Register(api, huma.Operation{
		OperationID:   "refresh-lock-state",
		Method:        http.MethodPost,
		Path:          "/api/v1/lock-state/refresh",
		Summary:       "Refresh lock state",
		Description:   "Re-renders lock state across widgets without mutating the cart.",
		Tags:          []string{"cart"},
		DefaultStatus: http.StatusAccepted,
	}, h.RefreshLock)

	huma.Register(api, huma.Operation{
		OperationID: "get-state",
		Method:      http.MethodGet,
		Path:        "/api/v1/state",
		Summary:     "Get synchronization state",
		Description: "Returns the in-flight flag, pending edits, widget index and client tokens.",
		Tags:        []string{"cart"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, h.State)
}
