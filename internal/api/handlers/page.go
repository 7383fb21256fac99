package handlers

import (
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// PageHandler serves the live storefront document.
type PageHandler struct {
	component templ.Component
}

// NewPageHandler creates a PageHandler rendering c on every request.
func NewPageHandler(c templ.Component) *PageHandler {
	return &PageHandler{component: c}
}

// Page renders the current document as HTML.
func (h *PageHandler) Page(c echo.Context) error {
	templ.Handler(h.component).ServeHTTP(c.Response(), c.Request())
	return nil
}
