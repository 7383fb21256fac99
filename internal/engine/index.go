package engine

import (
	"slices"

	domain "github.com/donaldgifford/cartsync/pkg/types"
)

type indexEntry struct {
	widget domain.Widget
	items  []string
}

// Index maps each cart widget to the line items it shows. The engine keeps
// it current on every reconciliation instead of re-querying the document.
type Index struct {
	order   []string
	entries map[string]*indexEntry
}

// NewIndex builds an index from the widgets a view reports.
func NewIndex(widgets []domain.Widget) *Index {
	x := &Index{entries: make(map[string]*indexEntry, len(widgets))}
	for _, w := range widgets {
		if _, dup := x.entries[w.ID]; dup {
			continue
		}
		x.order = append(x.order, w.ID)
		x.entries[w.ID] = &indexEntry{
			widget: domain.Widget{ID: w.ID, MiniCartID: w.MiniCartID},
			items:  slices.Clone(w.Items),
		}
	}
	return x
}

// IDs returns widget ids in document order.
func (x *Index) IDs() []string {
	return slices.Clone(x.order)
}

// MiniCartID returns the mini-cart identifier of a widget, or "".
func (x *Index) MiniCartID(widgetID string) string {
	if e, ok := x.entries[widgetID]; ok {
		return e.widget.MiniCartID
	}
	return ""
}

// Items returns the line items a widget shows.
func (x *Index) Items(widgetID string) []string {
	if e, ok := x.entries[widgetID]; ok {
		return slices.Clone(e.items)
	}
	return nil
}

// Has reports whether a widget shows a line item.
func (x *Index) Has(widgetID, itemID string) bool {
	e, ok := x.entries[widgetID]
	return ok && slices.Contains(e.items, itemID)
}

// Add records a line item for a widget.
func (x *Index) Add(widgetID, itemID string) {
	if e, ok := x.entries[widgetID]; ok && !slices.Contains(e.items, itemID) {
		e.items = append(e.items, itemID)
	}
}

// Remove drops a line item from a widget.
func (x *Index) Remove(widgetID, itemID string) {
	if e, ok := x.entries[widgetID]; ok {
		e.items = slices.DeleteFunc(e.items, func(id string) bool { return id == itemID })
	}
}

// Clear drops every line item of a widget.
func (x *Index) Clear(widgetID string) {
	if e, ok := x.entries[widgetID]; ok {
		e.items = nil
	}
}

// Widgets returns a copy of every entry in document order.
func (x *Index) Widgets() []domain.Widget {
	out := make([]domain.Widget, 0, len(x.order))
	for _, id := range x.order {
		e := x.entries[id]
		w := e.widget
		w.Items = slices.Clone(e.items)
		out = append(out, w)
	}
	return out
}
