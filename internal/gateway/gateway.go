// Package gateway issues the two remote cart mutations: update a line item's
// quantity and delete a line item.
package gateway

import (
	"context"
	"errors"
	"net/url"
	"strings"

	domain "github.com/donaldgifford/cartsync/pkg/types"
)

// ErrEmptyURL is returned when a mutation is attempted without a resolved
// cart endpoint.
var ErrEmptyURL = errors.New("cart endpoint URL is empty")

// Gateway is the remote cart API as seen by the synchronization engine.
// A non-nil error means no response was received; any HTTP status,
// including failures, is reported through the Outcome.
type Gateway interface {
	UpdateQuantity(ctx context.Context, url, query string) (*domain.Outcome, error)
	DeleteItem(ctx context.Context, url string) (*domain.Outcome, error)
}

// Endpoint builds line item URLs of the form
// <base>/<cartID><itemsPath><itemID>.
type Endpoint struct {
	Base      string
	ItemsPath string
}

// ItemURL returns the line item endpoint, or "" when either identifier is
// missing.
func (e Endpoint) ItemURL(cartID, itemID string) string {
	if cartID == "" || itemID == "" {
		return ""
	}
	itemsPath := e.ItemsPath
	if itemsPath == "" {
		itemsPath = "/items/"
	}
	return strings.TrimRight(e.Base, "/") + "/" +
		url.PathEscape(cartID) + itemsPath + url.PathEscape(itemID)
}

// QuantityQuery encodes "<param>=<value>", or "" for an empty value.
func QuantityQuery(param, value string) string {
	if value == "" {
		return ""
	}
	return url.QueryEscape(param) + "=" + url.QueryEscape(value)
}
