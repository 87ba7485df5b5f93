package journal

import (
	"context"
	"sort"
	"sync"
)

// MemJournal is an in-memory Journal for tests and single-process use.
// Safe for concurrent use.
type MemJournal struct {
	mu      sync.RWMutex
	entries map[string][]Entry // runID -> entries
}

// NewMemJournal creates an empty in-memory journal.
func NewMemJournal() *MemJournal {
	return &MemJournal{
		entries: make(map[string][]Entry),
	}
}

// Append implements Journal.
func (m *MemJournal) Append(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[e.RunID] = append(m.entries[e.RunID], e)
	return nil
}

// Entries implements Journal.
func (m *MemJournal) Entries(_ context.Context, runID string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.entries[runID]
	if !ok || len(stored) == 0 {
		return nil, ErrNotFound
	}

	out := make([]Entry, len(stored))
	copy(out, stored)
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}
