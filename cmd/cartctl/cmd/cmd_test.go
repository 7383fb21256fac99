package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/cartsync/internal/engine"
	domain "github.com/donaldgifford/cartsync/pkg/types"
)

// These tests share the package-level viper and root command, so they do
// not run in parallel.

type request struct {
	method string
	path   string
	body   string
}

func fakeServer(t *testing.T, got *[]request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*got = append(*got, request{method: r.Method, path: r.URL.Path, body: string(body)})

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/v1/state" {
			_ = json.NewEncoder(w).Encode(engine.Snapshot{
				CartID:    "C1",
				ItemCount: 3,
				Widgets: []domain.Widget{
					{ID: "mini-1", MiniCartID: "mini-1", Items: []string{"L1", "L2"}},
					{ID: "cart-1", Items: []string{"L1", "L2"}, Locked: true},
				},
			})
			return
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"status":"accepted"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	viper.Set("server", server)
	viper.Set("output", "table")
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		want     request
		wantText string
	}{
		{
			name:     "quantity",
			args:     []string{"quantity", "cart-1", "L1", "3"},
			want:     request{method: http.MethodPost, path: "/api/v1/widgets/cart-1/items/L1/quantity", body: `{"value":"3"}`},
			wantText: "Quantity edit for L1 in cart-1 queued.",
		},
		{
			name:     "remove",
			args:     []string{"remove", "mini-1", "L2"},
			want:     request{method: http.MethodPost, path: "/api/v1/widgets/mini-1/items/L2/remove"},
			wantText: "Removal of L2 from mini-1 queued.",
		},
		{
			name:     "refresh lock",
			args:     []string{"refresh-lock", "--exclude", "mini-1"},
			want:     request{method: http.MethodPost, path: "/api/v1/lock-state/refresh", body: `{"mini_cart_id":"mini-1"}`},
			wantText: "Lock-state refresh requested.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []request
			srv := fakeServer(t, &got)

			out, err := run(t, srv.URL, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantText)

			require.Len(t, got, 1)
			assert.Equal(t, tt.want.method, got[0].method)
			assert.Equal(t, tt.want.path, got[0].path)
			if tt.want.body != "" {
				assert.JSONEq(t, tt.want.body, got[0].body)
			}
		})
	}
}

func TestStateCommand(t *testing.T) {
	var got []request
	srv := fakeServer(t, &got)

	out, err := run(t, srv.URL, "state")
	require.NoError(t, err)
	assert.Contains(t, out, "C1")
	assert.Contains(t, out, "Pending edits:")
	assert.Contains(t, out, "L1,L2")
	assert.Contains(t, out, "mini-1")
}

func TestStateCommand_ServerDown(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1", "state")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}
