package peers

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/rand-chain/go-randchain/common"
)

// KnownHashType names what kind of item a peer is known to have seen.
type KnownHashType int

const (
	KnownBlock KnownHashType = iota
	KnownTransaction
	KnownCompactBlock
)

const defaultFilterSize = 4096

// KnownHashFilter is a bounded LRU of hashes a peer is known to have
// seen, kept separately per KnownHashType so that forgetting an old
// block hash never evicts a still-relevant transaction hash (spec.md
// §4.6: "a KnownHashFilter (bounded LRU of hashes we know the peer has
// seen, by type)"). Grounded on utils::ConnectionFilter
// (original_source), adapted onto hashicorp/golang-lru (already wired
// by the kv package's block cache) instead of a hand-rolled ring buffer.
type KnownHashFilter struct {
	byType map[KnownHashType]*lru.Cache
}

// NewKnownHashFilter builds a filter with defaultFilterSize entries per
// type.
func NewKnownHashFilter() *KnownHashFilter {
	return &KnownHashFilter{byType: make(map[KnownHashType]*lru.Cache)}
}

func (f *KnownHashFilter) cacheFor(t KnownHashType) *lru.Cache {
	c, ok := f.byType[t]
	if !ok {
		c, _ = lru.New(defaultFilterSize)
		f.byType[t] = c
	}
	return c
}

// Remember marks hash as known to the peer as the given type.
func (f *KnownHashFilter) Remember(hash common.Hash, t KnownHashType) {
	f.cacheFor(t).Add(hash, struct{}{})
}

// IsKnown reports whether the peer is known to have seen hash as type t.
func (f *KnownHashFilter) IsKnown(hash common.Hash, t KnownHashType) bool {
	return f.cacheFor(t).Contains(hash)
}
