package kv

// DefaultAutoFlushThreshold is the pending-entry count at which an
// AutoFlushingOverlay flushes itself to the backing store, bounding how
// much uncommitted state a long-running sync can accumulate in memory.
const DefaultAutoFlushThreshold = 4096

// AutoFlushingOverlay wraps an OverlayDatabase, flushing automatically
// once the pending write set reaches Threshold entries (spec.md §4.2).
type AutoFlushingOverlay struct {
	*OverlayDatabase
	Threshold int
}

// NewAutoFlushingOverlay wraps backing in an overlay that flushes itself
// once threshold writes are pending.
func NewAutoFlushingOverlay(backing Database, threshold int) *AutoFlushingOverlay {
	if threshold <= 0 {
		threshold = DefaultAutoFlushThreshold
	}
	return &AutoFlushingOverlay{OverlayDatabase: NewOverlayDatabase(backing), Threshold: threshold}
}

func (a *AutoFlushingOverlay) Put(col Column, key, value []byte) error {
	if err := a.OverlayDatabase.Put(col, key, value); err != nil {
		return err
	}
	return a.maybeFlush()
}

func (a *AutoFlushingOverlay) Delete(col Column, key []byte) error {
	if err := a.OverlayDatabase.Delete(col, key); err != nil {
		return err
	}
	return a.maybeFlush()
}

func (a *AutoFlushingOverlay) maybeFlush() error {
	if a.Len() >= a.Threshold {
		return a.Flush()
	}
	return nil
}
