package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/cartsync/internal/engine"
	domain "github.com/donaldgifford/cartsync/pkg/types"
)

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.State(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"unknown cart widget x"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Remove(context.Background(), "x", "L1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error (HTTP 404)")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestClient_Requests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		call     func(*Client) error
		wantPath string
		wantBody map[string]string
	}{
		{
			name:     "quantity",
			call:     func(c *Client) error { return c.Quantity(context.Background(), "cart-1", "L1", "4") },
			wantPath: "/api/v1/widgets/cart-1/items/L1/quantity",
			wantBody: map[string]string{"value": "4"},
		},
		{
			name:     "quantity escapes ids",
			call:     func(c *Client) error { return c.Quantity(context.Background(), "a b", "L/1", "1") },
			wantPath: "/api/v1/widgets/a b/items/L/1/quantity",
			wantBody: map[string]string{"value": "1"},
		},
		{
			name:     "remove",
			call:     func(c *Client) error { return c.Remove(context.Background(), "mini-1", "L2") },
			wantPath: "/api/v1/widgets/mini-1/items/L2/remove",
		},
		{
			name:     "refresh lock with exclusion",
			call:     func(c *Client) error { return c.RefreshLock(context.Background(), "mini-1") },
			wantPath: "/api/v1/lock-state/refresh",
			wantBody: map[string]string{"mini_cart_id": "mini-1"},
		},
		{
			name:     "refresh lock for everyone",
			call:     func(c *Client) error { return c.RefreshLock(context.Background(), "") },
			wantPath: "/api/v1/lock-state/refresh",
			wantBody: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, tt.wantPath, r.URL.Path)

				if tt.wantBody != nil {
					assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
					var got map[string]string
					assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
					assert.Equal(t, tt.wantBody, got)
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusAccepted)
				_, _ = w.Write([]byte(`{"status":"accepted"}`))
			}))
			defer srv.Close()

			require.NoError(t, tt.call(New(srv.URL)))
		})
	}
}

func TestClient_State(t *testing.T) {
	t.Parallel()

	want := engine.Snapshot{
		Fetching:  true,
		CartID:    "C1",
		ItemCount: 2,
		Widgets: []domain.Widget{
			{ID: "mini-1", MiniCartID: "mini-1", Items: []string{"L1"}, Locked: true},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/state", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	got, err := New(srv.URL, WithHTTPClient(srv.Client())).State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want.CartID, got.CartID)
	assert.True(t, got.Fetching)
	assert.Equal(t, 2, got.ItemCount)
	require.Len(t, got.Widgets, 1)
	assert.True(t, got.Widgets[0].Locked)
}
