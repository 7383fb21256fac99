package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/cartsync/internal/api/handlers"
	"github.com/donaldgifford/cartsync/internal/view"
)

func TestPage(t *testing.T) {
	t.Parallel()

	page, err := view.ParseString(`<html><body><section data-js="bc-cart"><span class="bc-cart-subtotal__amount">$1.00</span></section></body></html>`)
	require.NoError(t, err)
	h := handlers.NewPageHandler(page.Component())

	e := echo.New()
	e.GET("/page", h.Page)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/page", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "$1.00")

	page.SetTotals("cart-0", "$2.00", "")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/page", http.NoBody))
	assert.Contains(t, rec.Body.String(), "$2.00", "each request renders the live document")
}
