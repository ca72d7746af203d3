package kv

import (
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when the key is absent, matching the
// goleveldb backend's sentinel so callers can treat both backends
// identically.
var ErrNotFound = errors.New("kv: not found")

// MemoryDatabase is a map-backed Database, used for tests and for the
// in-process node before a disk path is configured. Grounded on
// db/src/kv/memorydb.rs in the original source.
type MemoryDatabase struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{data: make(map[string][]byte)}
}

func (m *MemoryDatabase) Get(col Column, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[string(KeyFor(col, key))]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryDatabase) Has(col Column, key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[string(KeyFor(col, key))]
	return ok, nil
}

func (m *MemoryDatabase) Put(col Column, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[string(KeyFor(col, key))] = v
	return nil
}

func (m *MemoryDatabase) Delete(col Column, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(KeyFor(col, key)))
	return nil
}

func (m *MemoryDatabase) Close() error { return nil }

func (m *MemoryDatabase) NewBatch() Batch { return &memoryBatch{db: m} }

type memoryOp struct {
	col    Column
	key    []byte
	value  []byte
	delete bool
}

type memoryBatch struct {
	db  *MemoryDatabase
	ops []memoryOp
}

func (b *memoryBatch) Put(col Column, key, value []byte) error {
	b.ops = append(b.ops, memoryOp{col: col, key: append([]byte{}, key...), value: append([]byte{}, value...)})
	return nil
}

func (b *memoryBatch) Delete(col Column, key []byte) error {
	b.ops = append(b.ops, memoryOp{col: col, key: append([]byte{}, key...), delete: true})
	return nil
}

func (b *memoryBatch) Write() error {
	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	for _, op := range b.ops {
		k := string(KeyFor(op.col, op.key))
		if op.delete {
			delete(b.db.data, k)
		} else {
			b.db.data[k] = op.value
		}
	}
	return nil
}

func (b *memoryBatch) Reset() { b.ops = b.ops[:0] }
func (b *memoryBatch) Len() int { return len(b.ops) }
