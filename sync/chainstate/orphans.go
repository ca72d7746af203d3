package chainstate

import (
	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/common"
)

// OrphanPool holds blocks whose parent is not yet known or not yet
// verified, indexed both by their own hash and by their parent's hash so
// a later arrival of the parent can promote the whole descendant chain
// at once (spec.md §9: "keep them separate" from the best-headers chain
// — headers are cheap and may run ahead of bodies).
type OrphanPool struct {
	byHash   map[common.Hash]*chain.IndexedBlock
	byParent map[common.Hash][]common.Hash
}

// NewOrphanPool builds an empty pool.
func NewOrphanPool() *OrphanPool {
	return &OrphanPool{
		byHash:   make(map[common.Hash]*chain.IndexedBlock),
		byParent: make(map[common.Hash][]common.Hash),
	}
}

// Insert parks block under its parent hash.
func (p *OrphanPool) Insert(block *chain.IndexedBlock) {
	hash := block.Header.Hash
	parent := block.Header.Raw.PreviousHeaderHash
	p.byHash[hash] = block
	p.byParent[parent] = append(p.byParent[parent], hash)
}

// Take removes and returns the orphan stored at hash, if any.
func (p *OrphanPool) Take(hash common.Hash) (*chain.IndexedBlock, bool) {
	b, ok := p.byHash[hash]
	if !ok {
		return nil, false
	}
	delete(p.byHash, hash)
	parent := b.Header.Raw.PreviousHeaderHash
	siblings := p.byParent[parent]
	for i, h := range siblings {
		if h == hash {
			p.byParent[parent] = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	return b, true
}

// Children returns the orphans directly parented by hash, without
// removing them.
func (p *OrphanPool) Children(hash common.Hash) []common.Hash {
	return append([]common.Hash(nil), p.byParent[hash]...)
}

// RemoveSubtree removes hash and every descendant orphan rooted at it,
// returning the full set of removed hashes — used both to promote a
// chain to Verifying and to drop a dead subtree (spec.md §4.5 on_block).
func (p *OrphanPool) RemoveSubtree(root common.Hash) []common.Hash {
	var removed []common.Hash
	queue := []common.Hash{root}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if b, ok := p.Take(h); ok {
			removed = append(removed, h)
			queue = append(queue, p.byParent[b.Header.Hash]...)
		} else {
			// root itself may not be an orphan entry (e.g. the block that
			// just arrived and unblocked its children); still walk its
			// recorded children.
			children := p.byParent[h]
			delete(p.byParent, h)
			queue = append(queue, children...)
		}
	}
	return removed
}

// Clear empties the pool (spec.md §4.5: "forget sync-orphans" on
// entering Saturated).
func (p *OrphanPool) Clear() {
	p.byHash = make(map[common.Hash]*chain.IndexedBlock)
	p.byParent = make(map[common.Hash][]common.Hash)
}

// Len reports how many orphans are parked.
func (p *OrphanPool) Len() int { return len(p.byHash) }
