package handlers_test

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/cartsync/internal/api/handlers"
	"github.com/donaldgifford/cartsync/internal/events"
)

func TestEventsStream(t *testing.T) {
	t.Parallel()

	bridge := events.New(events.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	h := handlers.NewEventsHandler(bridge, slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithKeepAlive(time.Hour)

	e := echo.New()
	e.GET("/api/v1/events", h.Stream)
	srv := httptest.NewServer(e)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events", http.NoBody)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// the handler subscribes before writing headers
	require.Equal(t, 1, bridge.Subscribers(events.CartUpdated))
	bridge.Publish(events.Event{ID: "ev-1", Kind: events.CartUpdated, MiniCartID: "mini-1"})

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 3 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	assert.Equal(t, "id: ev-1", lines[0])
	assert.Equal(t, "event: cart/updated", lines[1])
	assert.Contains(t, lines[2], `"mini_cart_id":"mini-1"`)

	cancel()
	assert.Eventually(t, func() bool {
		return bridge.Subscribers(events.CartUpdated) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
