package compare

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/iliyamo/dorm-finder/internal/model"
)

// Capacity is the maximum number of entries in one comparison set.
const Capacity = 4

// Outcome is the result of a Toggle.
type Outcome string

const (
	Added   Outcome = "added"
	Removed Outcome = "removed"
	Full    Outcome = "full"
)

// KeyForUser is the storage key of an authenticated user's set.
func KeyForUser(userID uint64) string {
	return "compare:user:" + strconv.FormatUint(userID, 10)
}

// KeyForAnon is the storage key of an anonymous session's set.
func KeyForAnon(sessionID string) string {
	return "compare:anon:" + sessionID
}

// lockStripes is the number of mutexes a Registry shares among all keys.
const lockStripes = 64

// Registry hands out Managers over one Store. Keys hash onto a fixed set of
// mutexes, so read-modify-write cycles on one set never interleave in-process
// and the number of locks stays constant however many sessions appear.
type Registry struct {
	store Store
	locks [lockStripes]sync.Mutex
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Manager returns the Manager for key.
func (r *Registry) Manager(key string) *Manager {
	return &Manager{store: r.store, key: key, mu: r.lockFor(key)}
}

func (r *Registry) lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &r.locks[h.Sum32()%lockStripes]
}

// Manager mutates one persisted comparison set. Every mutation is a single
// read-modify-write of the whole set, so callers never observe a partial
// update.
type Manager struct {
	store Store
	key   string
	mu    *sync.Mutex
}

// Key returns the storage key the manager works on.
func (m *Manager) Key() string { return m.key }

// Toggle removes the listing when present, refuses it when the set is full,
// and appends a new entry otherwise.
func (m *Manager) Toggle(ctx context.Context, l model.Listing) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, err := m.load(ctx)
	if err != nil {
		return "", err
	}
	if i := indexOf(entries, l.ID); i >= 0 {
		entries = append(entries[:i], entries[i+1:]...)
		return Removed, m.save(ctx, entries)
	}
	if len(entries) >= Capacity {
		return Full, nil
	}
	entries = append(entries, NewEntry(l))
	return Added, m.save(ctx, entries)
}

// Remove drops the entry with id. Removing a non-member is a no-op.
func (m *Manager) Remove(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, err := m.load(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(entries, id)
	if i < 0 {
		return false, nil
	}
	entries = append(entries[:i], entries[i+1:]...)
	return true, m.save(ctx, entries)
}

// Clear empties the set.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(ctx, nil)
}

// Enrich merges detail into the raw record of entry id, keeping its position.
// It reports false without error when the entry is no longer in the set.
func (m *Manager) Enrich(ctx context.Context, id string, detail model.RawRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, err := m.load(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(entries, id)
	if i < 0 {
		return false, nil
	}
	if entries[i].Raw == nil {
		entries[i].Raw = model.RawRecord{}
	}
	entries[i].Raw.Merge(detail)
	entries[i].Enriched = true
	return true, m.save(ctx, entries)
}

// Entries returns the set in insertion order.
func (m *Manager) Entries(ctx context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

// Has reports whether id is in the set.
func (m *Manager) Has(ctx context.Context, id string) (bool, error) {
	entries, err := m.Entries(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(entries, id) >= 0, nil
}

// Count returns the set size.
func (m *Manager) Count(ctx context.Context) (int, error) {
	entries, err := m.Entries(ctx)
	return len(entries), err
}

// load reads the set. Unparseable data reads as an empty set.
func (m *Manager) load(ctx context.Context) ([]Entry, error) {
	raw, ok, err := m.store.Get(ctx, m.key)
	if err != nil {
		return nil, fmt.Errorf("compare: load %s: %w", m.key, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, nil
	}
	out := entries[:0]
	for _, e := range entries {
		if e.ID != "" && indexOf(out, e.ID) < 0 {
			out = append(out, e)
		}
	}
	if len(out) > Capacity {
		out = out[:Capacity]
	}
	return out, nil
}

func (m *Manager) save(ctx context.Context, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("compare: encode %s: %w", m.key, err)
	}
	if err := m.store.Set(ctx, m.key, string(b)); err != nil {
		return fmt.Errorf("compare: save %s: %w", m.key, err)
	}
	return nil
}

func indexOf(entries []Entry, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
