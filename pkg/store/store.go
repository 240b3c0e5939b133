// Package store provides the synchronous key-value storage that starjar keeps
// its durable state in, along with a simulated clock for time-dependent behavior.
// Values are opaque strings; callers own their encoding.
package store

import (
	"encoding/json"
	"sort"
	"sync"
)

// KV is a synchronous string key-value store.
type KV interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set stores value under key, overwriting any previous value.
	Set(key, value string) error
}

// Updater is implemented by stores that can run a read-modify-write atomically.
// Writes made through tx are applied only if fn returns nil.
type Updater interface {
	Update(fn func(tx KV) error) error
}

// Snapshotter is implemented by stores that support whole-state inspection
// and replacement for the admin control plane.
type Snapshotter interface {
	Snapshot() (map[string]string, error)
	LoadSnapshot(snapshot map[string]string) error
	Reset() error
}

// Memory is a thread-safe, in-memory KV.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
	order []string // insertion order for deterministic listing
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		items: make(map[string]string),
		order: make([]string, 0),
	}
}

// Get retrieves a value by key.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

// Set stores a value. Overwriting keeps the key's position in the insertion order.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(key, value)
	return nil
}

func (m *Memory) setLocked(key, value string) {
	if _, exists := m.items[key]; !exists {
		m.order = append(m.order, key)
	}
	m.items[key] = value
}

// Delete removes a key. Returns true if it existed.
func (m *Memory) Delete(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[key]; !exists {
		return false
	}
	delete(m.items, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns all keys in insertion order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Count returns the number of keys in the store.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Update runs fn while holding the write lock. Writes are buffered and only
// applied when fn returns nil.
func (m *Memory) Update(fn func(tx KV) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{m: m, pending: make(map[string]string)}
	if err := fn(tx); err != nil {
		return err
	}
	for _, k := range tx.written {
		m.setLocked(k, tx.pending[k])
	}
	return nil
}

// memoryTx reads through to the parent map; the parent lock is already held.
type memoryTx struct {
	m       *Memory
	pending map[string]string
	written []string
}

func (tx *memoryTx) Get(key string) (string, bool, error) {
	if v, ok := tx.pending[key]; ok {
		return v, true, nil
	}
	v, ok := tx.m.items[key]
	return v, ok, nil
}

func (tx *memoryTx) Set(key, value string) error {
	if _, ok := tx.pending[key]; !ok {
		tx.written = append(tx.written, key)
	}
	tx.pending[key] = value
	return nil
}

// Reset clears all keys.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]string)
	m.order = make([]string, 0)
	return nil
}

// Snapshot returns a copy of all keys and values.
func (m *Memory) Snapshot() (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot := make(map[string]string, len(m.items))
	for k, v := range m.items {
		snapshot[k] = v
	}
	return snapshot, nil
}

// LoadSnapshot replaces all keys from snapshot.
// Keys are sorted to maintain deterministic order.
func (m *Memory) LoadSnapshot(snapshot map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]string, len(snapshot))
	m.order = make([]string, 0, len(snapshot))
	for k, v := range snapshot {
		m.items[k] = v
		m.order = append(m.order, k)
	}
	sort.Strings(m.order)
	return nil
}

// MarshalJSON serializes the store as a JSON object of key to value.
func (m *Memory) MarshalJSON() ([]byte, error) {
	snap, _ := m.Snapshot()
	return json.Marshal(snap)
}

// UnmarshalJSON replaces the store contents from a JSON object.
func (m *Memory) UnmarshalJSON(data []byte) error {
	var snapshot map[string]string
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}
	return m.LoadSnapshot(snapshot)
}
