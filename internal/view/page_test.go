package view_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/cartsync/internal/view"
	domain "github.com/donaldgifford/cartsync/pkg/types"
)

func loadPage(t *testing.T) *view.Page {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", "storefront.html"))
	require.NoError(t, err)
	defer f.Close()

	p, err := view.Parse(f, view.WithEmptyCartMessage("Nothing in your cart"))
	require.NoError(t, err)
	return p
}

func render(t *testing.T, p *view.Page) string {
	t.Helper()
	out, err := p.HTML()
	require.NoError(t, err)
	return out
}

func TestParse_LocatesWidgets(t *testing.T) {
	t.Parallel()

	p := loadPage(t)
	widgets := p.Widgets()
	require.Len(t, widgets, 2)

	assert.Equal(t, "mini-1", widgets[0].ID)
	assert.Equal(t, "mini-1", widgets[0].MiniCartID)
	assert.True(t, widgets[0].IsMiniCart())
	assert.Equal(t, []string{"L1", "L2"}, widgets[0].Items)

	assert.Equal(t, "cart-1", widgets[1].ID)
	assert.Empty(t, widgets[1].MiniCartID)
	assert.Equal(t, []string{"L1", "L2"}, widgets[1].Items)
	assert.False(t, widgets[1].Locked)
}

func TestParse_DuplicateMiniCartIDs(t *testing.T) {
	t.Parallel()

	p, err := view.ParseString(`<div data-js="bc-mini-cart" data-mini-cart-id="m"><div data-js="bc-cart"></div></div>
<div data-js="bc-mini-cart" data-mini-cart-id="m"><div data-js="bc-cart"></div></div>`)
	require.NoError(t, err)

	widgets := p.Widgets()
	require.Len(t, widgets, 2)
	assert.Equal(t, "m", widgets[0].ID)
	assert.Equal(t, "cart-1", widgets[1].ID)
	assert.Equal(t, "m", widgets[1].MiniCartID)
}

func TestParse_IgnoresControlsWithoutRow(t *testing.T) {
	t.Parallel()

	p, err := view.ParseString(`<section data-js="bc-cart">
<input data-js="bc-cart-item__quantity" data-cart_item_id="orphan">
<input data-js="bc-cart-item__quantity">
</section>`)
	require.NoError(t, err)
	assert.Empty(t, p.Widgets()[0].Items)
}

func TestSetLocked(t *testing.T) {
	t.Parallel()

	p := loadPage(t)

	p.SetLocked("cart-1", true)
	out := render(t, p)
	assert.Contains(t, out, `class="bc-cart bc-updating-cart"`)
	assert.Equal(t, 5, strings.Count(out, `disabled="disabled"`),
		"two inputs, two remove buttons and the checkout button")
	assert.True(t, p.Widgets()[1].Locked)
	assert.False(t, p.Widgets()[0].Locked)

	p.SetLocked("cart-1", false)
	out = render(t, p)
	assert.NotContains(t, out, "bc-updating-cart")
	assert.NotContains(t, out, "disabled")
}

func TestSetTotals(t *testing.T) {
	t.Parallel()

	p := loadPage(t)

	p.SetTotals("cart-1", "$9.00", "$0.72")
	assert.Equal(t, "$9.00", p.Text("cart-1", view.ClassSubtotal))
	assert.Equal(t, "$0.72", p.Text("cart-1", view.ClassTax))

	p.SetTotals("mini-1", "$9.00", "$0.72")
	assert.Equal(t, "$9.00", p.Text("mini-1", view.ClassSubtotal))
	assert.Empty(t, p.Text("mini-1", view.ClassTax), "mini cart has no tax display")
}

func TestSetItemTotal(t *testing.T) {
	t.Parallel()

	p := loadPage(t)

	assert.True(t, p.SetItemTotal("cart-1", "L1", "&#36;9.00"))
	assert.Equal(t, "$9.00", p.ItemTotal("cart-1", "L1"))
	assert.Equal(t, "$3.00", p.ItemTotal("mini-1", "L1"))

	assert.False(t, p.SetItemTotal("cart-1", "L9", "$1.00"))
	assert.False(t, p.SetItemTotal("missing", "L1", "$1.00"))
}

func TestRemoveItem(t *testing.T) {
	t.Parallel()

	p := loadPage(t)

	assert.True(t, p.RemoveItem("cart-1", "L1"))
	assert.False(t, p.RemoveItem("cart-1", "L1"))
	assert.Equal(t, []string{"L2"}, p.Widgets()[1].Items)
	assert.Equal(t, []string{"L1", "L2"}, p.Widgets()[0].Items)
}

func TestAddItem(t *testing.T) {
	t.Parallel()

	p := loadPage(t)
	ctx := context.Background()

	item := domain.SnapshotItem{
		TotalSalePrice: domain.Money{Formatted: "$4.50"},
		Quantity:       2,
		ProductName:    "Green <Bowl>",
	}
	require.NoError(t, p.AddItem(ctx, "cart-1", "L3", item))
	require.NoError(t, p.AddItem(ctx, "cart-1", "L3", item), "adding twice is a no-op")

	assert.Equal(t, []string{"L1", "L2", "L3"}, p.Widgets()[1].Items)
	assert.Equal(t, "$4.50", p.ItemTotal("cart-1", "L3"))
	out := render(t, p)
	assert.Contains(t, out, "Green &lt;Bowl&gt;")
	assert.Equal(t, 1, strings.Count(out, `data-js="L3"`))

	require.Error(t, p.AddItem(ctx, "nope", "L3", item))
}

func TestShowEmpty(t *testing.T) {
	t.Parallel()

	p := loadPage(t)

	require.NoError(t, p.ShowEmpty(context.Background(), "cart-1"))
	require.NoError(t, p.ShowEmpty(context.Background(), "cart-1"))

	w := p.Widgets()[1]
	assert.Empty(t, w.Items)
	assert.True(t, w.Empty)
	assert.False(t, p.HasFooter("cart-1"))
	assert.True(t, p.HasFooter("mini-1"))

	out := render(t, p)
	assert.Equal(t, 1, strings.Count(out, "Nothing in your cart"))
	assert.Contains(t, out, `<div class="bc-cart-body"><div class="bc-cart__empty">`)
}

func TestAddItemAfterEmptyRemovesPlaceholder(t *testing.T) {
	t.Parallel()

	p := loadPage(t)
	ctx := context.Background()

	require.NoError(t, p.ShowEmpty(ctx, "cart-1"))
	require.NoError(t, p.AddItem(ctx, "cart-1", "L5", domain.SnapshotItem{}))

	assert.False(t, p.Widgets()[1].Empty)
	assert.NotContains(t, render(t, p), "Nothing in your cart")
}

func TestSetErrorBanner(t *testing.T) {
	t.Parallel()

	p := loadPage(t)

	p.SetErrorBanner("Cart unavailable", true)
	msg, active := p.ErrorBanner()
	assert.Equal(t, "Cart unavailable", msg)
	assert.True(t, active)
	out := render(t, p)
	assert.Equal(t, 2, strings.Count(out, `class="bc-cart-error message-active"`))

	p.SetErrorBanner("", false)
	msg, active = p.ErrorBanner()
	assert.Empty(t, msg)
	assert.False(t, active)
	assert.NotContains(t, render(t, p), "message-active")
}

func TestSetItemCount(t *testing.T) {
	t.Parallel()

	p := loadPage(t)

	p.SetItemCount(7)
	assert.Contains(t, render(t, p), `data-js="bc-cart-menu-item__count">7</span>`)

	p.SetItemCount(0)
	out := render(t, p)
	assert.Contains(t, out, `<span class="bc-cart-menu-item__count" data-js="bc-cart-menu-item__count"></span>`)
}

func TestComponentRendersDocument(t *testing.T) {
	t.Parallel()

	p := loadPage(t)

	var b strings.Builder
	require.NoError(t, p.Component().Render(context.Background(), &b))
	assert.Contains(t, b.String(), `data-mini-cart-id="mini-1"`)
}
