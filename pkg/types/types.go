// Package domain defines the core cart synchronization types shared by the
// gateway, engine and view layers.
package domain

import (
	"net/http"
	"slices"
)

// Money is a server-formatted amount. The client never computes money
// values itself; it only displays what the cart service returns.
type Money struct {
	Formatted string `json:"formatted"`
}

// SnapshotItem is the per line item portion of a cart snapshot.
type SnapshotItem struct {
	TotalSalePrice Money  `json:"total_sale_price"`
	Quantity       int    `json:"quantity,omitempty"`
	ProductName    string `json:"product_name,omitempty"`
}

// CartSnapshot is the authoritative cart state returned by the remote cart
// resource after a mutation.
type CartSnapshot struct {
	Items     map[string]SnapshotItem `json:"items"`
	Subtotal  Money                   `json:"subtotal"`
	TaxAmount Money                   `json:"tax_amount"`
}

// ItemIDs returns the snapshot's line item ids in sorted order.
func (s *CartSnapshot) ItemIDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.Items))
	for id := range s.Items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ItemCount sums the quantities reported in the snapshot.
func (s *CartSnapshot) ItemCount() int {
	if s == nil {
		return 0
	}
	var n int
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// OutcomeKind classifies a mutation result.
type OutcomeKind string

// Outcome kind constants.
const (
	OutcomeOK         OutcomeKind = "ok"
	OutcomeEmptied    OutcomeKind = "emptied"
	OutcomeBadGateway OutcomeKind = "bad_gateway"
	OutcomeOther      OutcomeKind = "other"
	OutcomeTransport  OutcomeKind = "transport"
	OutcomeMalformed  OutcomeKind = "malformed"
)

// Outcome is the result of one gateway call that reached the server.
// Snapshot is nil for failures and for 204 responses.
type Outcome struct {
	StatusCode int           `json:"status_code"`
	Snapshot   *CartSnapshot `json:"snapshot,omitempty"`
}

// Kind maps the status code onto the outcome taxonomy.
func (o *Outcome) Kind() OutcomeKind {
	if o == nil {
		return OutcomeTransport
	}
	switch {
	case o.StatusCode == http.StatusNoContent:
		return OutcomeEmptied
	case o.StatusCode == http.StatusBadGateway:
		return OutcomeBadGateway
	case o.StatusCode >= 200 && o.StatusCode < 300:
		return OutcomeOK
	default:
		return OutcomeOther
	}
}

// Failed reports whether the outcome is an error response.
func (o *Outcome) Failed() bool {
	k := o.Kind()
	return k != OutcomeOK && k != OutcomeEmptied
}

// Widget describes one cart rendering on the page.
type Widget struct {
	ID         string   `json:"id"`
	MiniCartID string   `json:"mini_cart_id,omitempty"`
	Items      []string `json:"items"`
	Locked     bool     `json:"locked"`
	Empty      bool     `json:"empty"`
}

// IsMiniCart reports whether the widget is a compact variant.
func (w *Widget) IsMiniCart() bool {
	return w.MiniCartID != ""
}

// Control identifies the interactive element that originated a user action:
// the widget it lives in and the line item it targets.
type Control struct {
	WidgetID   string `json:"widget_id"`
	LineItemID string `json:"line_item_id"`
}
