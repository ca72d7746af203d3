package kv

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	ldbutil "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/rand-chain/go-randchain/internal/rlog"
)

// DiskDatabase is the bottom of the storage stack (spec.md §4.2): a
// crash-safe, on-disk columnar store. Grounded on the teacher's
// core/rawdb use of goleveldb as the physical engine.
type DiskDatabase struct {
	db *leveldb.DB
}

// OpenDiskDatabase opens (creating if absent) a LevelDB store at path.
func OpenDiskDatabase(path string) (*DiskDatabase, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &DiskDatabase{db: db}, nil
}

func (d *DiskDatabase) Get(col Column, key []byte) ([]byte, error) {
	v, err := d.db.Get(KeyFor(col, key), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return v, err
}

func (d *DiskDatabase) Has(col Column, key []byte) (bool, error) {
	return d.db.Has(KeyFor(col, key), nil)
}

func (d *DiskDatabase) Put(col Column, key, value []byte) error {
	return d.db.Put(KeyFor(col, key), value, nil)
}

func (d *DiskDatabase) Delete(col Column, key []byte) error {
	return d.db.Delete(KeyFor(col, key), nil)
}

// Close flushes any pending OS buffers and releases the file lock. Scoped
// resource acquisition (spec.md §9): the disk DB must flush on shutdown.
func (d *DiskDatabase) Close() error {
	if err := d.db.Close(); err != nil && err != errors.ErrClosed {
		rlog.Error("failed to close disk database cleanly", "err", err)
		return err
	}
	return nil
}

func (d *DiskDatabase) NewBatch() Batch { return &diskBatch{db: d.db, b: new(leveldb.Batch)} }

// IteratePrefix walks the keys of a column that start with prefix, in key
// order.
func (d *DiskDatabase) IteratePrefix(col Column, prefix []byte) *leveldb.Iterator {
	r := ldbutil.BytesPrefix(KeyFor(col, prefix))
	it := d.db.NewIterator(r, nil)
	return it
}

type diskBatch struct {
	db *leveldb.DB
	b  *leveldb.Batch
}

func (b *diskBatch) Put(col Column, key, value []byte) error {
	b.b.Put(KeyFor(col, key), value)
	return nil
}

func (b *diskBatch) Delete(col Column, key []byte) error {
	b.b.Delete(KeyFor(col, key))
	return nil
}

func (b *diskBatch) Write() error { return b.db.Write(b.b, nil) }
func (b *diskBatch) Reset()       { b.b.Reset() }
func (b *diskBatch) Len() int     { return b.b.Len() }
