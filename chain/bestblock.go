package chain

import "github.com/rand-chain/go-randchain/common"

// BestBlock is the store's current canonical tip (spec.md §3). Invariant:
// Number == 0 iff the block's previous_header_hash was zero (genesis);
// at all times store.BlockHash(best.Number) == Some(best.Hash).
type BestBlock struct {
	Number uint32
	Hash   common.Hash
}
