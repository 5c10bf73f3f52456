// Package watcher translates filesystem notifications into debounced,
// hash-deduplicated parse requests for one or more justfile-bearing
// directories.
package watcher

import (
	"sync"
	"time"
)

// DebounceWindow is the per-path re-arm window: any matching event
// (re)arms a file's timer by this much before its bytes are read and
// hashed. Exposed as a named constant so the tuning value is easy to
// revisit rather than a buried magic number.
const DebounceWindow = 500 * time.Millisecond

// maxWatchRetries bounds how many times a target's filesystem
// registration is retried (with exponential backoff) before it is
// degraded to manual-sync-only updates.
const maxWatchRetries = 3

// WatchTarget is one `--watch-dir` registration: a root directory, an
// optional display name used in tool-name derivation, and the set of
// content hashes last observed for files under it.
type WatchTarget struct {
	// ID is a stable identifier for this target (its cleaned absolute
	// root path), used to attribute registry entries back to it.
	ID string
	// Root is the absolute directory path being watched.
	Root string
	// Name is the optional display name from PATH:NAME; empty means
	// unnamed.
	Name string

	mu       sync.Mutex
	hashes   map[string][32]byte
	degraded bool
}

// NewWatchTarget constructs a WatchTarget rooted at root.
func NewWatchTarget(root, name string) *WatchTarget {
	return &WatchTarget{
		ID:     root,
		Root:   root,
		Name:   name,
		hashes: make(map[string][32]byte),
	}
}

// Degraded reports whether this target's filesystem watch failed
// permanently and it now only updates via manual _admin_sync calls.
// Written only by the watcher task.
func (t *WatchTarget) Degraded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.degraded
}

func (t *WatchTarget) setDegraded(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.degraded = v
}

// lastHash returns the last known content hash for path and whether
// one was recorded.
func (t *WatchTarget) lastHash(path string) ([32]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.hashes[path]
	return h, ok
}

func (t *WatchTarget) setHash(path string, h [32]byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hashes[path] = h
}

func (t *WatchTarget) clearHash(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.hashes, path)
}

// ParseRequest is emitted when a watched file's content hash changes.
// An empty Bytes with Deleted=true signals the registry should remove
// the file's contributions.
type ParseRequest struct {
	Target  *WatchTarget
	Path    string
	Bytes   []byte
	Deleted bool
}
