package kv

import "sync"

// overlayEntry distinguishes "pending put" from "pending delete" so a
// delete of a key never present on disk still short-circuits reads.
type overlayEntry struct {
	value   []byte
	deleted bool
}

// OverlayDatabase accumulates a pending write set atop a backing
// Database, reading through the overlay first (spec.md §4.2: "overlay
// accumulates a pending write set and short-circuits reads"). Flush
// commits the pending set to the backing store as a single batch.
type OverlayDatabase struct {
	mu      sync.RWMutex
	backing Database
	pending map[string]overlayEntry
}

// NewOverlayDatabase wraps backing with an empty pending write set.
func NewOverlayDatabase(backing Database) *OverlayDatabase {
	return &OverlayDatabase{backing: backing, pending: make(map[string]overlayEntry)}
}

func (o *OverlayDatabase) Get(col Column, key []byte) ([]byte, error) {
	o.mu.RLock()
	e, ok := o.pending[string(KeyFor(col, key))]
	o.mu.RUnlock()
	if ok {
		if e.deleted {
			return nil, ErrNotFound
		}
		out := make([]byte, len(e.value))
		copy(out, e.value)
		return out, nil
	}
	return o.backing.Get(col, key)
}

func (o *OverlayDatabase) Has(col Column, key []byte) (bool, error) {
	o.mu.RLock()
	e, ok := o.pending[string(KeyFor(col, key))]
	o.mu.RUnlock()
	if ok {
		return !e.deleted, nil
	}
	return o.backing.Has(col, key)
}

func (o *OverlayDatabase) Put(col Column, key, value []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	o.pending[string(KeyFor(col, key))] = overlayEntry{value: v}
	return nil
}

func (o *OverlayDatabase) Delete(col Column, key []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending[string(KeyFor(col, key))] = overlayEntry{deleted: true}
	return nil
}

// Len reports the number of pending entries, used by AutoFlushingOverlay
// to decide when to flush.
func (o *OverlayDatabase) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.pending)
}

// Flush commits every pending entry to the backing store as one atomic
// batch, then clears the pending set. Either the whole batch lands, or
// (on a backing-store error) none of it does and the pending set is left
// untouched so the caller can retry — this is what makes block chain DB
// reorganizations atomic from the caller's perspective (spec.md §4.2).
func (o *OverlayDatabase) Flush() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.pending) == 0 {
		return nil
	}
	batch := o.backing.NewBatch()
	for k, e := range o.pending {
		col := Column(k[0])
		key := []byte(k[1:])
		if e.deleted {
			if err := batch.Delete(col, key); err != nil {
				return err
			}
		} else {
			if err := batch.Put(col, key, e.value); err != nil {
				return err
			}
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	o.pending = make(map[string]overlayEntry)
	return nil
}

// Discard drops every pending entry without committing it, used to roll
// back a speculative fork overlay that was never switched to.
func (o *OverlayDatabase) Discard() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = make(map[string]overlayEntry)
}

// Close flushes any pending writes and closes the backing store.
func (o *OverlayDatabase) Close() error {
	if err := o.Flush(); err != nil {
		return err
	}
	return o.backing.Close()
}

// NewBatch returns a batch that writes directly into the overlay's
// pending set on Write, rather than into the backing store — callers
// composing overlays (e.g. CacheDatabase) still get atomic-looking batch
// semantics relative to this layer.
func (o *OverlayDatabase) NewBatch() Batch { return &overlayBatch{overlay: o} }

type overlayOp struct {
	col    Column
	key    []byte
	value  []byte
	delete bool
}

type overlayBatch struct {
	overlay *OverlayDatabase
	ops     []overlayOp
}

func (b *overlayBatch) Put(col Column, key, value []byte) error {
	b.ops = append(b.ops, overlayOp{col: col, key: append([]byte{}, key...), value: append([]byte{}, value...)})
	return nil
}

func (b *overlayBatch) Delete(col Column, key []byte) error {
	b.ops = append(b.ops, overlayOp{col: col, key: append([]byte{}, key...), delete: true})
	return nil
}

func (b *overlayBatch) Write() error {
	for _, op := range b.ops {
		if op.delete {
			_ = b.overlay.Delete(op.col, op.key)
		} else {
			_ = b.overlay.Put(op.col, op.key, op.value)
		}
	}
	return nil
}

func (b *overlayBatch) Reset()   { b.ops = b.ops[:0] }
func (b *overlayBatch) Len() int { return len(b.ops) }
