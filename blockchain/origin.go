package blockchain

import (
	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/common"
)

// storeView adapts Store's column accessors to the small reader
// interface below (chainView), so BlockOrigin classification can be reused verbatim
// by ForkChain's overlay view (blockchain/fork.go).
type storeView struct{ s *Store }

func (v storeView) blockNumberOf(h common.Hash) (uint32, bool) { return v.s.blockNumberIn(v.s.db, h) }
func (v storeView) blockHashOf(n uint32) (common.Hash, bool)   { return v.s.blockHashIn(v.s.db, n) }
func (v storeView) header(h common.Hash) (*chain.BlockHeader, bool) { return v.s.headerIn(v.s.db, h) }

// BlockOrigin classifies header against the store's current state
// (spec.md §3, §4.2).
func (s *Store) BlockOrigin(header *chain.IndexedBlockHeader) (chain.BlockOrigin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return classify(storeView{s}, s.best, s.hasBest, header)
}

type chainView interface {
	blockNumberOf(common.Hash) (uint32, bool)
	blockHashOf(uint32) (common.Hash, bool)
	header(common.Hash) (*chain.BlockHeader, bool)
}

func classify(v chainView, best chain.BestBlock, hasBest bool, header *chain.IndexedBlockHeader) (chain.BlockOrigin, error) {
	if _, ok := v.header(header.Hash); ok {
		return chain.BlockOrigin{Kind: chain.OriginKnownBlock}, nil
	}

	if header.Raw.IsGenesis() {
		return chain.BlockOrigin{Kind: chain.OriginCanonChain, BlockNumber: 0}, nil
	}

	if hasBest && header.Raw.PreviousHeaderHash == best.Hash {
		return chain.BlockOrigin{Kind: chain.OriginCanonChain, BlockNumber: best.Number + 1}, nil
	}

	// Side chain: walk back from the parent until we hit a block that is
	// canonical at its indexed height (the common ancestor), bounded by
	// MaxForkRoute.
	var canonizedRoute []common.Hash
	cursor := header.Raw.PreviousHeaderHash
	var ancestorNumber uint32
	found := false
	for depth := 0; depth <= MaxForkRoute; depth++ {
		if n, ok := v.blockNumberOf(cursor); ok {
			if h, ok2 := v.blockHashOf(n); ok2 && h == cursor {
				ancestorNumber = n
				found = true
				break
			}
		}
		h, ok := v.header(cursor)
		if !ok {
			return chain.BlockOrigin{}, ErrUnknownParent
		}
		canonizedRoute = append([]common.Hash{cursor}, canonizedRoute...)
		if h.IsGenesis() {
			ancestorNumber = 0
			found = true
			cursor = h.PreviousHeaderHash
			break
		}
		cursor = h.PreviousHeaderHash
	}
	if !found {
		return chain.BlockOrigin{Kind: chain.OriginAncientFork}, nil
	}
	blockNumber := ancestorNumber + uint32(len(canonizedRoute)) + 1

	var decanonizedRoute []common.Hash
	if hasBest {
		for n := best.Number; n > ancestorNumber; n-- {
			h, ok := v.blockHashOf(n)
			if !ok {
				break
			}
			decanonizedRoute = append(decanonizedRoute, h)
		}
	}

	origin := chain.BlockOrigin{
		Ancestor:         cursor,
		CanonizedRoute:   canonizedRoute,
		DecanonizedRoute: decanonizedRoute,
		NewBlock:         header.Hash,
		BlockNumber:      blockNumber,
	}
	if !hasBest || blockNumber > best.Number {
		origin.Kind = chain.OriginSideChainBecomingCanonChain
	} else {
		origin.Kind = chain.OriginSideChain
	}
	return origin, nil
}
