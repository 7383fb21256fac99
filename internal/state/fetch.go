// Package state holds the page-wide shared state read and written by the
// synchronization engine: the in-flight flag and the persisted client tokens.
package state

import "sync/atomic"

// Fetch is the page-wide in-flight flag. One Fetch is shared by every cart
// widget on a page; it is never partitioned per widget.
type Fetch struct {
	fetching atomic.Bool
}

// NewFetch returns an idle flag.
func NewFetch() *Fetch {
	return &Fetch{}
}

// IsFetching reports whether a mutation is outstanding.
func (f *Fetch) IsFetching() bool {
	return f.fetching.Load()
}

// SetFetching overwrites the flag.
func (f *Fetch) SetFetching(v bool) {
	f.fetching.Store(v)
}

// TryBegin sets the flag if it is clear and reports whether it did.
func (f *Fetch) TryBegin() bool {
	return f.fetching.CompareAndSwap(false, true)
}
