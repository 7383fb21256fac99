// Package main implements a mock storefront cart API for local development.
// It keeps carts in memory, seeded from a JSON fixture, and answers quantity
// updates and removals the way the real cart service does: a snapshot on
// success, 204 once the cart is empty, and an optional injected 502.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

type fixtureItem struct {
	ProductName    string `json:"product_name"`
	UnitPriceCents int    `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}

type fixtureCart struct {
	TaxRateBps int                    `json:"tax_rate_bps"`
	Items      map[string]fixtureItem `json:"items"`
}

type money struct {
	Formatted string `json:"formatted"`
}

type snapshotItem struct {
	TotalSalePrice money  `json:"total_sale_price"`
	Quantity       int    `json:"quantity"`
	ProductName    string `json:"product_name,omitempty"`
}

type snapshot struct {
	Items     map[string]snapshotItem `json:"items"`
	Subtotal  money                   `json:"subtotal"`
	TaxAmount money                   `json:"tax_amount"`
}

// store is the in-memory cart service.
type store struct {
	mu          sync.Mutex
	carts       map[string]*fixtureCart
	latency     time.Duration
	failEvery   int64
	requests    atomic.Int64
	logger      *slog.Logger
	quantityKey string
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/cart.json", "path to cart seed fixture")
	latency := flag.Duration("latency", 0, "delay added to every mutation")
	failEvery := flag.Int64("fail-every", 0, "answer every Nth mutation with 502 (0 disables)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	carts, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "carts", len(carts))

	s := newStore(carts, logger)
	s.latency = *latency
	s.failEvery = *failEvery

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock cart server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, s.routes()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadFixture(path string) (map[string]*fixtureCart, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var carts map[string]*fixtureCart
	if err := json.Unmarshal(data, &carts); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return carts, nil
}

func newStore(carts map[string]*fixtureCart, logger *slog.Logger) *store {
	return &store{carts: carts, logger: logger, quantityKey: "quantity"}
}

func (s *store) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /carts/{cart}/items/{item}", s.updateHandler)
	mux.HandleFunc("DELETE /carts/{cart}/items/{item}", s.deleteHandler)
	mux.HandleFunc("GET /carts/{cart}", s.getHandler)
	return mux
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

// inject applies the configured latency and reports whether this mutation
// should fail with 502.
func (s *store) inject() bool {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
	n := s.requests.Add(1)
	return s.failEvery > 0 && n%s.failEvery == 0
}

func (s *store) updateHandler(w http.ResponseWriter, r *http.Request) {
	if s.inject() {
		writeError(w, http.StatusBadGateway, "upstream cart service unavailable")
		return
	}

	qty, err := strconv.Atoi(r.URL.Query().Get(s.quantityKey))
	if err != nil || qty < 0 {
		writeError(w, http.StatusBadRequest, "quantity must be a non-negative integer")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, item, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if qty == 0 {
		delete(cart.Items, item)
	} else {
		it := cart.Items[item]
		it.Quantity = qty
		cart.Items[item] = it
	}
	s.logger.Info("quantity updated", "cart", r.PathValue("cart"), "item", item, "quantity", qty)
	s.respond(w, cart)
}

func (s *store) deleteHandler(w http.ResponseWriter, r *http.Request) {
	if s.inject() {
		writeError(w, http.StatusBadGateway, "upstream cart service unavailable")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, item, ok := s.lookup(w, r)
	if !ok {
		return
	}
	delete(cart.Items, item)
	s.logger.Info("item removed", "cart", r.PathValue("cart"), "item", item, "remaining", len(cart.Items))
	s.respond(w, cart)
}

func (s *store) getHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[r.PathValue("cart")]
	if !ok {
		writeError(w, http.StatusNotFound, "cart not found")
		return
	}
	writeJSON(w, http.StatusOK, buildSnapshot(cart))
}

// lookup resolves the cart and line item of r. The caller holds s.mu.
func (s *store) lookup(w http.ResponseWriter, r *http.Request) (*fixtureCart, string, bool) {
	cart, ok := s.carts[r.PathValue("cart")]
	if !ok {
		writeError(w, http.StatusNotFound, "cart not found")
		return nil, "", false
	}
	item := r.PathValue("item")
	if _, ok := cart.Items[item]; !ok {
		writeError(w, http.StatusNotFound, "line item not found")
		return nil, "", false
	}
	return cart, item, true
}

func (s *store) respond(w http.ResponseWriter, cart *fixtureCart) {
	if len(cart.Items) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, buildSnapshot(cart))
}

func buildSnapshot(cart *fixtureCart) snapshot {
	snap := snapshot{Items: make(map[string]snapshotItem, len(cart.Items))}

	ids := make([]string, 0, len(cart.Items))
	for id := range cart.Items {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var subtotal int
	for _, id := range ids {
		it := cart.Items[id]
		line := it.UnitPriceCents * it.Quantity
		subtotal += line
		snap.Items[id] = snapshotItem{
			TotalSalePrice: money{Formatted: formatCents(line)},
			Quantity:       it.Quantity,
			ProductName:    it.ProductName,
		}
	}
	snap.Subtotal = money{Formatted: formatCents(subtotal)}
	snap.TaxAmount = money{Formatted: formatCents(subtotal * cart.TaxRateBps / 10000)}
	return snap
}

func formatCents(c int) string {
	return fmt.Sprintf("$%d.%02d", c/100, c%100)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
