package engine

import (
	"time"

	"github.com/donaldgifford/cartsync/internal/gateway"
	"github.com/donaldgifford/cartsync/internal/metrics"
	domain "github.com/donaldgifford/cartsync/pkg/types"
)

const (
	opQuantity = "quantity"
	opRemove   = "remove"
)

// OnQuantityInput records a quantity edit. An empty value is an incomplete
// edit and is ignored. Each edit on the same control restarts its debounce.
func (e *Engine) OnQuantityInput(c domain.Control, raw string) {
	if raw == "" {
		return
	}
	e.post(func() { e.handleQuantityInput(c, raw) })
}

// OnRemoveClick removes a line item unless another mutation is in flight,
// in which case the click is dropped.
func (e *Engine) OnRemoveClick(c domain.Control) {
	e.post(func() { e.handleRemove(c) })
}

func (e *Engine) handleQuantityInput(c domain.Control, raw string) {
	if prev, ok := e.pending[c]; ok {
		prev.timer.Stop()
		metrics.QuantityEditsCoalescedTotal.Inc()
	}

	p := &pendingEdit{value: raw}
	p.timer = time.AfterFunc(e.debounce, func() {
		e.post(func() { e.fireQuantity(c, p) })
	})
	e.pending[c] = p
}

func (e *Engine) fireQuantity(c domain.Control, p *pendingEdit) {
	if e.pending[c] != p {
		// superseded by a later edit
		return
	}

	url := e.endpoint.ItemURL(e.client.CartID(), c.LineItemID)
	if url == "" {
		delete(e.pending, c)
		e.log.Debug("quantity edit has no cart endpoint",
			"widget", c.WidgetID,
			"item", c.LineItemID,
		)
		return
	}

	if !e.fetch.TryBegin() {
		metrics.QuantityEditsDeferredTotal.Inc()
		p.timer.Reset(e.debounce)
		return
	}
	delete(e.pending, c)

	exclude := e.index.MiniCartID(c.WidgetID)
	e.applyLockState(exclude)
	metrics.MutationsInFlight.Set(1)

	query := gateway.QuantityQuery(e.quantityParam, p.value)
	start := time.Now()
	ctx := e.ctx

	e.log.Debug("sending quantity update", "item", c.LineItemID, "value", p.value)
	go func() {
		out, err := e.gateway.UpdateQuantity(ctx, url, query)
		if !e.post(func() { e.finishQuantity(c, exclude, start, out, err) }) {
			e.fetch.SetFetching(false)
			metrics.MutationsInFlight.Set(0)
		}
	}()
}

func (e *Engine) finishQuantity(
	c domain.Control,
	exclude string,
	start time.Time,
	out *domain.Outcome,
	err error,
) {
	e.unwind(opQuantity, exclude, start, out, err)

	if !e.succeeded(opQuantity, c, out, err) {
		return
	}

	if out.Kind() == domain.OutcomeEmptied {
		e.applyEmptied(c.WidgetID, "")
	} else if out.Snapshot != nil {
		e.applySnapshot(out.Snapshot)
	}
	e.publishUpdated(exclude)
}

func (e *Engine) handleRemove(c domain.Control) {
	if !e.fetch.TryBegin() {
		metrics.RemoveClicksDroppedTotal.Inc()
		e.log.Debug("remove click dropped, mutation in flight", "item", c.LineItemID)
		return
	}

	exclude := e.index.MiniCartID(c.WidgetID)
	e.applyLockState(exclude)
	metrics.MutationsInFlight.Set(1)
	start := time.Now()

	url := e.endpoint.ItemURL(e.client.CartID(), c.LineItemID)
	if url == "" {
		e.log.Warn("remove control has no cart endpoint, unlocking",
			"widget", c.WidgetID,
			"item", c.LineItemID,
		)
		e.fetch.SetFetching(false)
		metrics.MutationsInFlight.Set(0)
		e.applyLockState(exclude)
		metrics.MutationsTotal.WithLabelValues(opRemove, string(domain.OutcomeMalformed)).Inc()
		metrics.MutationDuration.WithLabelValues(opRemove).Observe(time.Since(start).Seconds())
		return
	}

	ctx := e.ctx
	e.log.Debug("sending line item removal", "item", c.LineItemID)
	go func() {
		out, err := e.gateway.DeleteItem(ctx, url)
		if !e.post(func() { e.finishRemove(c, exclude, start, out, err) }) {
			e.fetch.SetFetching(false)
			metrics.MutationsInFlight.Set(0)
		}
	}()
}

func (e *Engine) finishRemove(
	c domain.Control,
	exclude string,
	start time.Time,
	out *domain.Outcome,
	err error,
) {
	e.unwind(opRemove, exclude, start, out, err)

	if !e.succeeded(opRemove, c, out, err) {
		return
	}

	if out.Kind() == domain.OutcomeEmptied {
		e.applyEmptied(c.WidgetID, c.LineItemID)
	} else {
		for _, id := range e.index.IDs() {
			if e.index.Has(id, c.LineItemID) || id == c.WidgetID {
				e.view.RemoveItem(id, c.LineItemID)
				e.index.Remove(id, c.LineItemID)
			}
		}
		if out.Snapshot != nil {
			e.applySnapshot(out.Snapshot)
		}
	}
	e.publishUpdated(exclude)
}

// unwind runs the completion steps shared by both mutations: clear the flag,
// unlock, record the outcome and reconcile the error banner.
func (e *Engine) unwind(op, exclude string, start time.Time, out *domain.Outcome, err error) {
	e.fetch.SetFetching(false)
	metrics.MutationsInFlight.Set(0)
	e.applyLockState(exclude)

	kind := out.Kind()
	if err != nil {
		kind = domain.OutcomeTransport
	}
	metrics.MutationsTotal.WithLabelValues(op, string(kind)).Inc()
	metrics.MutationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err == nil && out != nil {
		e.reconcileErrorBanner(out)
	}
}

// succeeded logs failures and reports whether the snapshot should be applied.
func (e *Engine) succeeded(op string, c domain.Control, out *domain.Outcome, err error) bool {
	if err != nil {
		e.log.Error("cart mutation failed",
			"op", op,
			"item", c.LineItemID,
			"kind", domain.OutcomeTransport,
			"error", err,
		)
		return false
	}
	if out.Failed() {
		e.log.Error("cart mutation rejected",
			"op", op,
			"item", c.LineItemID,
			"kind", out.Kind(),
			"status", out.StatusCode,
		)
		return false
	}
	return true
}

// applyLockState renders the in-flight flag onto every widget except the
// mini-cart whose id equals exclude.
func (e *Engine) applyLockState(exclude string) {
	locked := e.fetch.IsFetching()
	label := "unlocked"
	if locked {
		label = "locked"
	}

	for _, w := range e.index.Widgets() {
		if w.IsMiniCart() && w.MiniCartID == exclude {
			continue
		}
		e.view.SetLocked(w.ID, locked)
		metrics.LockStateRendersTotal.WithLabelValues(label).Inc()
	}
}

// reconcileErrorBanner shows the bad-gateway message on a 502 and clears the
// banners for every other status.
func (e *Engine) reconcileErrorBanner(out *domain.Outcome) {
	if out.Kind() == domain.OutcomeBadGateway {
		e.view.SetErrorBanner(e.message502, true)
		return
	}
	e.view.SetErrorBanner("", false)
}

// applySnapshot reconciles every widget against an authoritative snapshot.
// Applying the same snapshot twice leaves the page unchanged.
func (e *Engine) applySnapshot(snap *domain.CartSnapshot) {
	ids := snap.ItemIDs()

	for _, wid := range e.index.IDs() {
		if snap.Items != nil {
			for _, item := range e.index.Items(wid) {
				if _, ok := snap.Items[item]; !ok {
					e.view.RemoveItem(wid, item)
					e.index.Remove(wid, item)
				}
			}
		}

		for _, item := range ids {
			it := snap.Items[item]
			if !e.index.Has(wid, item) {
				if err := e.view.AddItem(e.ctx, wid, item, it); err != nil {
					e.log.Error("rendering line item", "widget", wid, "item", item, "error", err)
					continue
				}
				e.index.Add(wid, item)
			}
			e.view.SetItemTotal(wid, item, it.TotalSalePrice.Formatted)
		}

		e.view.SetTotals(wid, snap.Subtotal.Formatted, snap.TaxAmount.Formatted)

		if snap.Items != nil && len(e.index.Items(wid)) == 0 {
			if err := e.view.ShowEmpty(e.ctx, wid); err != nil {
				e.log.Error("rendering empty cart", "widget", wid, "error", err)
			}
		}
	}

	if count, ok := itemCount(snap); ok {
		e.view.SetItemCount(count)
		if err := e.client.SetItemCount(count); err != nil {
			e.log.Warn("saving item count", "error", err)
		}
	}
}

// applyEmptied moves every widget to the empty state, the owning widget first,
// and clears the client tokens.
func (e *Engine) applyEmptied(owner, itemID string) {
	if itemID != "" {
		e.view.RemoveItem(owner, itemID)
		e.index.Remove(owner, itemID)
	}

	var order []string
	for _, id := range e.index.IDs() {
		if id == owner {
			order = append([]string{id}, order...)
			continue
		}
		order = append(order, id)
	}
	for _, id := range order {
		if err := e.view.ShowEmpty(e.ctx, id); err != nil {
			e.log.Error("rendering empty cart", "widget", id, "error", err)
			continue
		}
		e.index.Clear(id)
	}

	if err := e.client.Clear(); err != nil {
		e.log.Warn("clearing cart tokens", "error", err)
	}
	e.view.SetItemCount(0)
	e.log.Info("cart emptied", "widget", owner)
}

// itemCount returns the badge count a snapshot implies. Snapshots without
// quantities leave the badge alone unless they are empty.
func itemCount(snap *domain.CartSnapshot) (int, bool) {
	if snap.Items == nil {
		return 0, false
	}
	if len(snap.Items) == 0 {
		return 0, true
	}
	n := snap.ItemCount()
	return n, n > 0
}
