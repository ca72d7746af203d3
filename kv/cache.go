package kv

import (
	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the LRU entry count for CacheDatabase, grounded on
// the teacher's pervasive use of small (a few thousand entry)
// hashicorp/golang-lru caches in front of disk accessors.
const DefaultCacheSize = 2048

// CacheDatabase is the top of the storage stack (spec.md §4.2): an LRU of
// recently-touched entries in front of another Database. Read path:
// cache -> backing; write path: write through to backing and refresh the
// cache entry.
type CacheDatabase struct {
	backing Database
	cache   *lru.Cache
}

// NewCacheDatabase wraps backing with an LRU front of the given size.
func NewCacheDatabase(backing Database, size int) (*CacheDatabase, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CacheDatabase{backing: backing, cache: c}, nil
}

func (c *CacheDatabase) Get(col Column, key []byte) ([]byte, error) {
	ck := string(KeyFor(col, key))
	if v, ok := c.cache.Get(ck); ok {
		if v == nil {
			return nil, ErrNotFound
		}
		b := v.([]byte)
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	}
	v, err := c.backing.Get(col, key)
	if err == ErrNotFound {
		c.cache.Add(ck, nil)
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.cache.Add(ck, v)
	return v, nil
}

func (c *CacheDatabase) Has(col Column, key []byte) (bool, error) {
	_, err := c.Get(col, key)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *CacheDatabase) Put(col Column, key, value []byte) error {
	if err := c.backing.Put(col, key, value); err != nil {
		return err
	}
	v := make([]byte, len(value))
	copy(v, value)
	c.cache.Add(string(KeyFor(col, key)), v)
	return nil
}

func (c *CacheDatabase) Delete(col Column, key []byte) error {
	if err := c.backing.Delete(col, key); err != nil {
		return err
	}
	c.cache.Remove(string(KeyFor(col, key)))
	return nil
}

func (c *CacheDatabase) Close() error { return c.backing.Close() }

func (c *CacheDatabase) NewBatch() Batch { return &cacheBatch{cache: c, inner: c.backing.NewBatch()} }

type cacheOp struct {
	col    Column
	key    []byte
	value  []byte
	delete bool
}

type cacheBatch struct {
	cache *CacheDatabase
	inner Batch
	ops   []cacheOp
}

func (b *cacheBatch) Put(col Column, key, value []byte) error {
	b.ops = append(b.ops, cacheOp{col: col, key: append([]byte{}, key...), value: append([]byte{}, value...)})
	return b.inner.Put(col, key, value)
}

func (b *cacheBatch) Delete(col Column, key []byte) error {
	b.ops = append(b.ops, cacheOp{col: col, key: append([]byte{}, key...), delete: true})
	return b.inner.Delete(col, key)
}

func (b *cacheBatch) Write() error {
	if err := b.inner.Write(); err != nil {
		return err
	}
	for _, op := range b.ops {
		ck := string(KeyFor(op.col, op.key))
		if op.delete {
			b.cache.cache.Remove(ck)
		} else {
			b.cache.cache.Add(ck, op.value)
		}
	}
	return nil
}

func (b *cacheBatch) Reset() { b.ops = b.ops[:0]; b.inner.Reset() }
func (b *cacheBatch) Len() int { return b.inner.Len() }
