package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/donaldgifford/cartsync/internal/config"
	"github.com/donaldgifford/cartsync/internal/engine"
	"github.com/donaldgifford/cartsync/internal/events"
	"github.com/donaldgifford/cartsync/internal/gateway"
	"github.com/donaldgifford/cartsync/internal/state"
	"github.com/donaldgifford/cartsync/internal/view"
)

func loadPage(path string, cfg *config.Config, log *slog.Logger) (*view.Page, error) {
	f, err := os.Open(path) //nolint:gosec // page path from trusted CLI flag or config
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer f.Close()

	opts := []view.Option{view.WithLogger(log)}
	if cfg != nil {
		opts = append(opts, view.WithEmptyCartMessage(cfg.Cart.Messages.EmptyCart))
	}
	return view.Parse(f, opts...)
}

func openClientState(cfg config.StateConfig) (state.ClientState, error) {
	if cfg.Backend != config.StateBackendFile {
		return state.NewMemory(cfg.CartID, cfg.ItemCount), nil
	}

	f, err := state.OpenFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening state file: %w", err)
	}
	if f.CartID() == "" && cfg.CartID != "" {
		if err := f.SetCartID(cfg.CartID); err != nil {
			return nil, fmt.Errorf("seeding cart id: %w", err)
		}
	}
	return f, nil
}

func newGateway(cfg config.GatewayConfig) *gateway.HTTPGateway {
	return gateway.NewHTTPGateway(
		gateway.WithTimeout(cfg.Timeout),
		gateway.WithRateLimit(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst),
	)
}

func newEngine(
	cfg *config.Config,
	gw gateway.Gateway,
	page *view.Page,
	cs state.ClientState,
	bridge *events.Bridge,
	log *slog.Logger,
) *engine.Engine {
	return engine.NewEngine(gw, page,
		engine.WithLogger(log),
		engine.WithBridge(bridge),
		engine.WithClientState(cs),
		engine.WithDebounce(cfg.Cart.Debounce),
		engine.WithEndpoint(gateway.Endpoint{Base: cfg.Cart.APIBase, ItemsPath: cfg.Cart.ItemsPath}),
		engine.WithQuantityParam(cfg.Cart.QuantityParam),
		engine.WithBadGatewayMessage(cfg.Cart.Messages.CartError502),
	)
}
