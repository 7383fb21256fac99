package client

import (
	"context"
	"net/url"

	"github.com/donaldgifford/cartsync/internal/engine"
)

type accepted struct {
	Status string `json:"status"`
}

func itemPath(widget, item, action string) string {
	return "/api/v1/widgets/" + url.PathEscape(widget) + "/items/" + url.PathEscape(item) + "/" + action
}

// Quantity queues a quantity edit for a line item in a widget. The server
// debounces edits, so the change is applied asynchronously.
func (c *Client) Quantity(ctx context.Context, widget, item, value string) error {
	body := map[string]string{"value": value}
	return c.post(ctx, itemPath(widget, item, "quantity"), body, &accepted{})
}

// Remove queues removal of a line item.
func (c *Client) Remove(ctx context.Context, widget, item string) error {
	return c.post(ctx, itemPath(widget, item, "remove"), nil, &accepted{})
}

// RefreshLock asks every widget except miniCartID to re-render its lock
// state. An empty miniCartID refreshes all of them.
func (c *Client) RefreshLock(ctx context.Context, miniCartID string) error {
	body := map[string]string{}
	if miniCartID != "" {
		body["mini_cart_id"] = miniCartID
	}
	return c.post(ctx, "/api/v1/lock-state/refresh", body, &accepted{})
}

// State returns the engine's synchronization state.
func (c *Client) State(ctx context.Context) (*engine.Snapshot, error) {
	var s engine.Snapshot
	if err := c.get(ctx, "/api/v1/state", &s); err != nil {
		return nil, err
	}
	return &s, nil
}
