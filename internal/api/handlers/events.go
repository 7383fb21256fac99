package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/cartsync/internal/events"
)

const (
	streamBuffer     = 16
	defaultKeepAlive = 15 * time.Second
)

// Streamer exposes bridge events as a channel.
type Streamer interface {
	Stream(ctx context.Context, buffer int, kinds ...events.Kind) <-chan events.Event
}

// EventsHandler serves the bridge as a server-sent event stream.
type EventsHandler struct {
	bridge    Streamer
	log       *slog.Logger
	keepAlive time.Duration
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(s Streamer, log *slog.Logger) *EventsHandler {
	return &EventsHandler{bridge: s, log: log, keepAlive: defaultKeepAlive}
}

// WithKeepAlive overrides the comment ping interval.
func (h *EventsHandler) WithKeepAlive(d time.Duration) *EventsHandler {
	h.keepAlive = d
	return h
}

// Stream writes every cart/updated and cart/refresh-lock-state event until
// the client goes away.
func (h *EventsHandler) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	ch := h.bridge.Stream(ctx, streamBuffer, events.CartUpdated, events.RefreshLockState)

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.log.Error("encoding event", "event_id", ev.ID, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(res, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Kind, data); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
