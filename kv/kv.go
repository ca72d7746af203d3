// Package kv implements the typed key/value façade over an on-disk
// columnar store, layered as spec.md §4.2 describes:
//
//	DiskDatabase <- OverlayDatabase <- AutoFlushingOverlay <- CacheDatabase
//
// The overlay accumulates a pending write set and short-circuits reads;
// the auto-flushing overlay flushes when the overlay size reaches a
// threshold; the cache layer holds an LRU of recently-touched entries.
// Read path: cache -> overlay -> disk. Write path: mutate overlay,
// propagate on flush.
package kv

// Column names the logical column families spec.md §4.2 describes. The
// physical store has no native column support (both the memory and
// leveldb backends are flat key spaces), so a Column is folded into the
// key via KeyFor.
type Column byte

const (
	ColumnMeta         Column = 'm'
	ColumnBlockHashes  Column = 'h'
	ColumnBlocks       Column = 'b'
	ColumnBlockNumbers Column = 'n'
)

// KeyFor prefixes key with its column, giving a flat keyspace the same
// disambiguation a true column family would.
func KeyFor(col Column, key []byte) []byte {
	out := make([]byte, 1+len(key))
	out[0] = byte(col)
	copy(out[1:], key)
	return out
}

// KeyValueReader reads from a column/key addressed store.
type KeyValueReader interface {
	Get(col Column, key []byte) ([]byte, error)
	Has(col Column, key []byte) (bool, error)
}

// KeyValueWriter writes to a column/key addressed store.
type KeyValueWriter interface {
	Put(col Column, key, value []byte) error
	Delete(col Column, key []byte) error
}

// Batch accumulates a set of writes applied atomically on Write.
type Batch interface {
	KeyValueWriter
	Write() error
	Reset()
	Len() int
}

// Database is a full read/write store capable of producing atomic
// batches, per spec.md §4.2 ("any key/value engine that supports
// multi-column atomic batches").
type Database interface {
	KeyValueReader
	KeyValueWriter
	NewBatch() Batch
	Close() error
}
