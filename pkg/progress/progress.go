// Package progress implements the engine's Progress Registry (C2): a
// process-wide, in-memory map from opaque keys to human-readable status
// lines, used purely for operator visibility. It is never persisted.
package progress

import (
	"sort"
	"strings"
	"sync"
)

// Registry is a concurrency-safe map from dotted keys (e.g. "worker.2",
// "controller.queue") to a status line. Writes are last-writer-wins; reads
// are a point-in-time snapshot.
type Registry struct {
	mu    sync.RWMutex
	lines map[string]string
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{lines: make(map[string]string)}
}

// Add records or replaces the status line for key. Key segments are joined
// with "." so callers can namespace by component, e.g. Add([]string{"worker", "2"}, "...").
func (r *Registry) Add(key []string, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[joinKey(key)] = text
}

// Clear removes the status line for key, if present.
func (r *Registry) Clear(key []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lines, joinKey(key))
}

// Snapshot returns every current status line, sorted by key for stable output.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.lines))
	for k := range r.lines {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, r.lines[k])
	}
	return lines
}

func joinKey(key []string) string {
	return strings.Join(key, ".")
}
