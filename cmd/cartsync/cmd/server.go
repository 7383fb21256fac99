package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donaldgifford/cartsync/internal/api/handlers"
	"github.com/donaldgifford/cartsync/internal/api/middleware"
	"github.com/donaldgifford/cartsync/internal/config"
	"github.com/donaldgifford/cartsync/internal/engine"
	"github.com/donaldgifford/cartsync/internal/events"
	"github.com/donaldgifford/cartsync/internal/gateway"
	"github.com/donaldgifford/cartsync/internal/notify"
	"github.com/donaldgifford/cartsync/internal/state"
	"github.com/donaldgifford/cartsync/internal/view"
)

// server owns everything serve starts and stops.
type server struct {
	echo      *echo.Echo
	engine    *engine.Engine
	bridge    *events.Bridge
	scheduler *engine.Scheduler
	forwarder *notify.Forwarder
	log       *slog.Logger
}

func newServer(
	cfg *config.Config,
	gw gateway.Gateway,
	page *view.Page,
	cs state.ClientState,
	log *slog.Logger,
) (*server, error) {
	bridge := events.New(events.WithLogger(log.With("component", "bridge")))
	eng := newEngine(cfg, gw, page, cs, bridge, log.With("component", "engine"))

	s := &server{
		engine: eng,
		bridge: bridge,
		log:    log,
	}

	if cfg.Watchdog.Interval > 0 {
		sched, err := engine.NewScheduler(bridge, cfg.Watchdog.Interval, log.With("component", "watchdog"))
		if err != nil {
			return nil, fmt.Errorf("creating watchdog: %w", err)
		}
		s.scheduler = sched
	}

	var n notify.Notifier = notify.NewNoOpNotifier(log)
	if wh := cfg.Notifications.Webhook; wh.Enabled {
		n = notify.NewWebhookNotifier(wh.URL, notify.WithHeaders(wh.Headers))
	}
	s.forwarder = notify.NewForwarder(bridge, n, log.With("component", "notify"))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(eng)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/page", handlers.NewPageHandler(page.Component()).Page)
	e.GET("/api/v1/events", handlers.NewEventsHandler(bridge, log).Stream)

	humaCfg := huma.DefaultConfig("cartsync API", Version)
	humaCfg.Info.Description = "Shopper actions and synchronization state for the hosted storefront page."
	api := humaecho.New(e, humaCfg)
	handlers.RegisterCartRoutes(api, handlers.NewCartHandler(eng, bridge))

	s.echo = e
	return s, nil
}

// start runs the engine and the watchdog. The HTTP listener is started by
// the caller.
func (s *server) start(ctx context.Context) {
	s.engine.Start(ctx)
	if s.scheduler != nil {
		s.scheduler.Start()
	}
}

// stop shuts down in reverse dependency order: listener, watchdog, engine,
// then the webhook forwarder so the last cart/updated events are delivered.
func (s *server) stop(ctx context.Context) error {
	var errs []error
	if err := s.echo.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down server: %w", err))
	}
	if s.scheduler != nil {
		select {
		case <-s.scheduler.Stop().Done():
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("stopping watchdog: %w", ctx.Err()))
		}
	}
	s.engine.Stop()
	s.forwarder.Close()
	return errors.Join(errs...)
}
