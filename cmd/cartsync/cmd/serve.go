package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/cartsync/internal/config"
	"github.com/donaldgifford/cartsync/internal/tracing"
	"github.com/donaldgifford/cartsync/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var pagePath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the storefront page and the cart API",
		RunE: func(c *cobra.Command, _ []string) error {
			return runServe(c.Context(), pagePath)
		},
	}
	cmd.Flags().StringVar(&pagePath, "page", "", "storefront HTML to host (overrides page.path)")
	return cmd
}

func runServe(ctx context.Context, pagePath string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	if pagePath == "" {
		pagePath = cfg.Page.Path
	}
	if pagePath == "" {
		return errors.New("no page to host: set page.path or pass --page")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("flushing traces", "error", err)
		}
	}()

	page, err := loadPage(pagePath, cfg, log)
	if err != nil {
		return err
	}
	cs, err := openClientState(cfg.State)
	if err != nil {
		return err
	}

	srv, err := newServer(cfg, newGateway(cfg.Gateway), page, cs, log)
	if err != nil {
		return err
	}
	srv.start(context.WithoutCancel(ctx))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr, "page", pagePath, "widgets", len(page.Widgets()))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("server error", "error", err)
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.stop(shutdownCtx); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}
