package view

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	domain "github.com/donaldgifford/cartsync/pkg/types"
)

// EmptyCart renders the placeholder inserted into a cart body once the
// cart has no line items left.
func EmptyCart(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w,
			`<div class="`+classEmpty+`"><h2 class="bc-cart__title--empty">`+
				templ.EscapeString(message)+
				`</h2></div>`)
		return err
	})
}

// LineItemRow renders a row for a line item the page has not shown before.
func LineItemRow(id string, item domain.SnapshotItem) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		eid := templ.EscapeString(id)
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		name := item.ProductName
		if name == "" {
			name = id
		}
		_, err := fmt.Fprintf(w,
			`<div class="bc-cart-item" data-js="%[1]s">`+
				`<div class="bc-cart-item-meta"><h3 class="bc-cart-item__product-title">%[2]s</h3></div>`+
				`<div class="bc-cart-item-quantity">`+
				`<input type="number" class="bc-cart-item__quantity-input" data-js="`+jsQuantity+`" data-cart_item_id="%[1]s" value="%[3]s" min="1">`+
				`<button class="`+classRemoveButton+`" data-js="`+jsRemove+`" data-cart_item_id="%[1]s" type="button">Remove</button>`+
				`</div>`+
				`<div class="bc-cart-item-total-price">%[4]s</div>`+
				`</div>`,
			eid,
			templ.EscapeString(name),
			strconv.Itoa(qty),
			templ.EscapeString(item.TotalSalePrice.Formatted),
		)
		return err
	})
}

// renderNodes renders c and parses the result as children of a div.
func renderNodes(ctx context.Context, c templ.Component) ([]*html.Node, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("rendering template: %w", err)
	}
	parent := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(&buf, parent)
	if err != nil {
		return nil, fmt.Errorf("parsing rendered template: %w", err)
	}
	return nodes, nil
}

// Component exposes the live document as a templ component so it can be
// served with templ.Handler.
func (p *Page) Component() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return p.Render(w)
	})
}
