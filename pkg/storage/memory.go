package storage

import (
	"bytes"
	"errors"
	"slices"
	"sync"
)

var errReadOnly = errors.New("write in a read-only transaction")

// MemoryBackend implements Backend using in-memory maps (not persistent).
// It stands in for bbolt in tests. Update holds the write lock for the whole
// of fn but is not atomic: a failing fn leaves earlier writes in place.
type MemoryBackend struct {
	buckets map[string]map[string][]byte
	mu      sync.RWMutex
}

// NewMemoryBackend creates a new in-memory storage backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		buckets: make(map[string]map[string][]byte),
	}
}

func (m *MemoryBackend) Update(fn func(tx Transaction) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return fn(memoryTransaction{backend: m, writable: true})
}

func (m *MemoryBackend) View(fn func(tx Transaction) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fn(memoryTransaction{backend: m})
}

// Close is a no-op for memory backend
func (m *MemoryBackend) Close() error {
	return nil
}

// memoryTransaction runs under the backend lock taken by Update or View.
type memoryTransaction struct {
	backend  *MemoryBackend
	writable bool
}

func (t memoryTransaction) CreateBucket(name []byte) error {
	if !t.writable {
		return errReadOnly
	}

	if _, exists := t.backend.buckets[string(name)]; !exists {
		t.backend.buckets[string(name)] = make(map[string][]byte)
	}

	return nil
}

func (t memoryTransaction) Bucket(name []byte) Bucket {
	bkt, exists := t.backend.buckets[string(name)]
	if !exists {
		return nil
	}

	return memoryBucket{data: bkt, writable: t.writable}
}

type memoryBucket struct {
	data     map[string][]byte
	writable bool
}

func (b memoryBucket) Put(key, value []byte) error {
	if !b.writable {
		return errReadOnly
	}

	// Copy value to prevent external modifications
	b.data[string(key)] = append([]byte(nil), value...)

	return nil
}

func (b memoryBucket) Get(key []byte) []byte {
	return b.data[string(key)]
}

// ForEach visits keys in sorted order, matching bbolt's cursor order.
func (b memoryBucket) ForEach(fn func(k, v []byte) error) error {
	return b.ForEachPrefix(nil, fn)
}

func (b memoryBucket) ForEachPrefix(prefix []byte, fn func(k, v []byte) error) error {
	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	for _, k := range keys {
		if err := fn([]byte(k), b.data[k]); err != nil {
			return err
		}
	}

	return nil
}
