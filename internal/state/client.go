package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Token names, kept identical to the storefront cookie names.
const (
	CartIDToken    = "bigcommerce_cart_id"
	ItemCountToken = "bigcommerce_cart_item_count"
)

// ClientState is the small key/value state a storefront keeps on the
// shopper's side: the cart identity and the cached item count.
type ClientState interface {
	CartID() string
	ItemCount() int
	SetCartID(id string) error
	SetItemCount(n int) error
	// Clear removes both tokens.
	Clear() error
}

type tokens struct {
	CartID    string `yaml:"bigcommerce_cart_id,omitempty"    json:"cart_id,omitempty"`
	ItemCount int    `yaml:"bigcommerce_cart_item_count,omitempty" json:"item_count,omitempty"`
}

// Memory is a process-local ClientState.
type Memory struct {
	mu sync.RWMutex
	t  tokens
}

// NewMemory creates a Memory seeded with the given tokens.
func NewMemory(cartID string, itemCount int) *Memory {
	return &Memory{t: tokens{CartID: cartID, ItemCount: itemCount}}
}

func (m *Memory) CartID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.CartID
}

func (m *Memory) ItemCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.ItemCount
}

func (m *Memory) SetCartID(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t.CartID = id
	return nil
}

func (m *Memory) SetItemCount(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t.ItemCount = n
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t = tokens{}
	return nil
}

// File is a ClientState persisted as a YAML document. Every write replaces
// the file through a temp file and rename.
type File struct {
	path string
	mu   sync.RWMutex
	t    tokens
}

// OpenFile loads path, or starts empty when it does not exist yet.
func OpenFile(path string) (*File, error) {
	f := &File{path: path}

	data, err := os.ReadFile(path) //nolint:gosec // state path from trusted config
	switch {
	case errors.Is(err, os.ErrNotExist):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("reading client state: %w", err)
	}

	if err := yaml.Unmarshal(data, &f.t); err != nil {
		return nil, fmt.Errorf("parsing client state %s: %w", path, err)
	}
	return f, nil
}

func (f *File) CartID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.t.CartID
}

func (f *File) ItemCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.t.ItemCount
}

func (f *File) SetCartID(id string) error {
	return f.update(func(t *tokens) { t.CartID = id })
}

func (f *File) SetItemCount(n int) error {
	return f.update(func(t *tokens) { t.ItemCount = n })
}

func (f *File) Clear() error {
	return f.update(func(t *tokens) { *t = tokens{} })
}

func (f *File) update(fn func(*tokens)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.t
	fn(&next)

	data, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("encoding client state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".cartsync-state-*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("writing client state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing client state: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replacing client state: %w", err)
	}

	f.t = next
	return nil
}

var (
	_ ClientState = (*Memory)(nil)
	_ ClientState = (*File)(nil)
)
