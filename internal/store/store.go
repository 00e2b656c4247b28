// Package store is the durable keyed-blob layer under the game: high
// scores, lifetime stats, pity counters, and the device id all live behind
// one small interface so tests can substitute an in-memory store.
//
// Contract: writes are synchronous from the caller's perspective; getters
// never fail — a missing or corrupt key yields the caller's default and a
// warning; a full or broken backend makes Set report false, never panic.
package store

import "sync"

// Well-known keys.
const (
	KeyHighScores       = "highScores"
	KeyLifetimeStats    = "lifetimeStats"
	KeyPityState        = "pityState"
	KeyPerformanceState = "performanceState"
	KeyDeviceID         = "deviceId"
	KeyEditorDrafts     = "levelEditorDrafts"
	KeyOwnedTanks       = "ownedTanks"
)

// Store is a keyed string→blob map.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) bool
	Remove(key string)
	Export() map[string][]byte
	Import(data map[string][]byte)
}

// MemoryStore is the in-process Store used by tests and headless tools.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

func (m *MemoryStore) Set(key string, value []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return true
}

func (m *MemoryStore) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func (m *MemoryStore) Export() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		c := make([]byte, len(v))
		copy(c, v)
		out[k] = c
	}
	return out
}

func (m *MemoryStore) Import(data map[string][]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range data {
		c := make([]byte, len(v))
		copy(c, v)
		m.data[k] = c
	}
}
