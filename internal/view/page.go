// Package view is the DOM side of cart synchronization: it parses storefront
// markup, locates cart widgets and their controls, and applies lock state,
// totals and row changes to the document.
package view

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	xhtml "golang.org/x/net/html"

	domain "github.com/donaldgifford/cartsync/pkg/types"
)

type widget struct {
	id         string
	miniCartID string
	node       *xhtml.Node
	empty      bool
}

// Page is a parsed storefront document. All methods are safe for concurrent
// use; writes are expected to come from a single engine loop.
type Page struct {
	mu        sync.RWMutex
	root      *xhtml.Node
	widgets   []*widget
	byID      map[string]*widget
	emptyText string
	log       *slog.Logger
}

// Option configures a Page.
type Option func(*Page)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Page) {
		p.log = l
	}
}

// WithEmptyCartMessage sets the text of the empty-cart placeholder.
func WithEmptyCartMessage(msg string) Option {
	return func(p *Page) {
		p.emptyText = msg
	}
}

// Parse reads a full HTML document and indexes its cart widgets.
func Parse(r io.Reader, opts ...Option) (*Page, error) {
	root, err := xhtml.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	p := &Page{
		root:      root,
		byID:      make(map[string]*widget),
		emptyText: "Your cart is empty.",
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.locateWidgets()
	return p, nil
}

// ParseString is Parse over a string.
func ParseString(doc string, opts ...Option) (*Page, error) {
	return Parse(strings.NewReader(doc), opts...)
}

func (p *Page) locateWidgets() {
	for i, n := range findAll(p.root, byDataJS(jsCart)) {
		w := &widget{node: n}
		if mini := closest(n, byDataJS(jsMiniCart)); mini != nil {
			w.miniCartID = attr(mini, attrMiniCartID)
		}

		w.id = w.miniCartID
		if _, taken := p.byID[w.id]; w.id == "" || taken {
			w.id = "cart-" + strconv.Itoa(i)
		}

		p.widgets = append(p.widgets, w)
		p.byID[w.id] = w
	}
}

// Widgets reports every cart widget in document order with the line items
// its markup currently shows.
func (p *Page) Widgets() []domain.Widget {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]domain.Widget, 0, len(p.widgets))
	for _, w := range p.widgets {
		out = append(out, domain.Widget{
			ID:         w.id,
			MiniCartID: w.miniCartID,
			Items:      itemIDs(w.node),
			Locked:     hasClass(w.node, classUpdating),
			Empty:      w.empty,
		})
	}
	return out
}

// itemIDs collects the line item ids whose controls and row both exist.
func itemIDs(root *xhtml.Node) []string {
	seen := make(map[string]struct{})
	var ids []string
	controls := findAll(root, func(n *xhtml.Node) bool {
		v := attr(n, attrDataJS)
		return v == jsQuantity || v == jsRemove
	})
	for _, c := range controls {
		id, ok := getAttr(c, attrCartItemID)
		if !ok || id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		if closest(c, byDataJS(id)) == nil {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func (p *Page) widget(id string) (*widget, bool) {
	w, ok := p.byID[id]
	if !ok {
		p.log.Debug("unknown cart widget", "widget", id)
	}
	return w, ok
}

// SetLocked disables or re-enables every interactive control of a widget and
// toggles its updating state.
func (p *Page) SetLocked(widgetID string, locked bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.widget(widgetID)
	if !ok {
		return
	}

	var controls []*xhtml.Node
	controls = append(controls, findAll(w.node, byDataJS(jsQuantity))...)
	controls = append(controls, findAll(w.node, byClass(classRemoveButton))...)
	if checkout := findFirst(w.node, byDataJS(jsCheckout)); checkout != nil {
		controls = append(controls, checkout)
	}

	for _, c := range controls {
		if locked {
			setAttr(c, attrDisabled, attrDisabled)
		} else {
			removeAttr(c, attrDisabled)
		}
	}

	if locked {
		addClass(w.node, classUpdating)
	} else {
		removeClass(w.node, classUpdating)
	}
}

// SetItemTotal writes a line item's formatted total. It reports whether the
// widget shows that line item.
func (p *Page) SetItemTotal(widgetID, itemID, formatted string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.widget(widgetID)
	if !ok {
		return false
	}
	row := findFirst(w.node, byDataJS(itemID))
	if row == nil {
		return false
	}
	if total := findFirst(row, byClass(classItemTotal)); total != nil {
		setText(total, html.UnescapeString(formatted))
	}
	return true
}

// SetTotals writes the cart subtotal and, when the widget has one, the tax.
func (p *Page) SetTotals(widgetID, subtotal, tax string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.widget(widgetID)
	if !ok {
		return
	}
	if n := findFirst(w.node, byClass(classSubtotal)); n != nil {
		setText(n, subtotal)
	}
	if n := findFirst(w.node, byClass(classTax)); n != nil {
		setText(n, tax)
	}
}

// AddItem renders a row for a line item the widget does not show yet.
func (p *Page) AddItem(ctx context.Context, widgetID, itemID string, item domain.SnapshotItem) error {
	nodes, err := renderNodes(ctx, LineItemRow(itemID, item))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.widget(widgetID)
	if !ok {
		return fmt.Errorf("unknown cart widget %q", widgetID)
	}
	if findFirst(w.node, byDataJS(itemID)) != nil {
		return nil
	}

	container := w.node
	if existing := itemIDs(w.node); len(existing) > 0 {
		if row := findFirst(w.node, byDataJS(existing[len(existing)-1])); row != nil && row.Parent != nil {
			container = row.Parent
		}
	} else if body := findFirst(w.node, byClass(classBody)); body != nil {
		container = body
	}

	if placeholder := findFirst(w.node, byClass(classEmpty)); placeholder != nil {
		detach(placeholder)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	w.empty = false
	return nil
}

// RemoveItem detaches a line item row. It reports whether a row was removed.
func (p *Page) RemoveItem(widgetID, itemID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.widget(widgetID)
	if !ok {
		return false
	}
	return detach(findFirst(w.node, byDataJS(itemID)))
}

// ShowEmpty turns a widget into its empty state: remaining rows are removed,
// the placeholder is inserted at the top of the cart body and the footer with
// the checkout control is dropped.
func (p *Page) ShowEmpty(ctx context.Context, widgetID string) error {
	nodes, err := renderNodes(ctx, EmptyCart(p.emptyText))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.widget(widgetID)
	if !ok {
		return fmt.Errorf("unknown cart widget %q", widgetID)
	}

	for _, id := range itemIDs(w.node) {
		detach(findFirst(w.node, byDataJS(id)))
	}

	if findFirst(w.node, byClass(classEmpty)) == nil {
		body := findFirst(w.node, byClass(classBody))
		if body == nil {
			body = w.node
		}
		first := body.FirstChild
		for _, n := range nodes {
			body.InsertBefore(n, first)
		}
	}

	detach(findFirst(w.node, byClass(classFooter)))
	w.empty = true
	return nil
}

// SetErrorBanner updates every error banner on the page.
func (p *Page) SetErrorBanner(message string, active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, n := range findAll(p.root, byDataJS(jsErrorMessage)) {
		container := closest(n, byClass(classError))
		if active {
			setText(n, message)
			if container != nil {
				addClass(container, classMessage)
			}
			continue
		}
		setText(n, "")
		if container != nil {
			removeClass(container, classMessage)
		}
	}
}

// ErrorBanner returns the first banner's text and whether it is active.
func (p *Page) ErrorBanner() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	n := findFirst(p.root, byDataJS(jsErrorMessage))
	if n == nil {
		return "", false
	}
	container := closest(n, byClass(classError))
	return textContent(n), container != nil && hasClass(container, classMessage)
}

// SetItemCount refreshes the cart menu badge.
func (p *Page) SetItemCount(count int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, n := range findAll(p.root, byDataJS(jsMenuItemCount)) {
		if count > 0 {
			setText(n, strconv.Itoa(count))
			addClass(n, classMenuFull)
			continue
		}
		setText(n, "")
		removeClass(n, classMenuFull)
	}
}

// Classes accepted by Text.
const (
	ClassSubtotal = classSubtotal
	ClassTax      = classTax
)

// Text returns the text content of the first element in a widget matching
// the class. It is meant for inspection and tests.
func (p *Page) Text(widgetID, class string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	w, ok := p.byID[widgetID]
	if !ok {
		return ""
	}
	n := findFirst(w.node, byClass(class))
	if n == nil {
		return ""
	}
	return textContent(n)
}

// ItemTotal returns the displayed total of a line item row.
func (p *Page) ItemTotal(widgetID, itemID string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	w, ok := p.byID[widgetID]
	if !ok {
		return ""
	}
	row := findFirst(w.node, byDataJS(itemID))
	if row == nil {
		return ""
	}
	if n := findFirst(row, byClass(classItemTotal)); n != nil {
		return textContent(n)
	}
	return ""
}

// HasFooter reports whether the widget still has its footer region.
func (p *Page) HasFooter(widgetID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	w, ok := p.byID[widgetID]
	return ok && findFirst(w.node, byClass(classFooter)) != nil
}

// Render writes the document as HTML.
func (p *Page) Render(w io.Writer) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := xhtml.Render(w, p.root); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}

// HTML renders the document to a string.
func (p *Page) HTML() (string, error) {
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
