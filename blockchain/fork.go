package blockchain

import (
	"errors"

	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/kv"
)

// ErrNotAFork is returned by Fork when given a BlockOrigin that does not
// describe a side-chain extension.
var ErrNotAFork = errors.New("blockchain: origin is not a side chain")

// ForkChain is an in-memory overlay staging a reorganization: the
// decanonized route has been replayed (removed from the canonical index)
// and the canonized route replayed (added), all inside an overlay that
// has not yet touched the backing store. Flush commits it atomically;
// discarding it (never calling Flush) leaves the live store untouched.
type ForkChain struct {
	store   *Store
	overlay *kv.OverlayDatabase
	newBest chain.BestBlock
}

// Fork builds the overlay described by origin: replay decanonize over
// DecanonizedRoute (tip-first), then canonize over CanonizedRoute
// (ancestor-first), per spec.md §4.2.
func (s *Store) Fork(origin chain.BlockOrigin) (*ForkChain, error) {
	if origin.Kind != chain.OriginSideChain && origin.Kind != chain.OriginSideChainBecomingCanonChain {
		return nil, ErrNotAFork
	}
	s.mu.RLock()
	best := s.best
	hasBest := s.hasBest
	s.mu.RUnlock()

	overlay := kv.NewOverlayDatabase(s.db)

	cur := best
	for range origin.DecanonizedRoute {
		if !hasBest {
			break
		}
		header, ok := s.headerIn(overlay, cur.Hash)
		if !ok {
			return nil, ErrUnknownParent
		}
		if err := overlay.Delete(kv.ColumnBlockHashes, numberKey(cur.Number)); err != nil {
			return nil, err
		}
		if err := overlay.Delete(kv.ColumnBlockNumbers, hashKey(cur.Hash)); err != nil {
			return nil, err
		}
		if cur.Number == 0 {
			cur = chain.BestBlock{}
			hasBest = false
			break
		}
		cur = chain.BestBlock{Number: cur.Number - 1, Hash: header.PreviousHeaderHash}
	}

	ancestorNumber := cur.Number
	for i, h := range origin.CanonizedRoute {
		number := ancestorNumber + uint32(i) + 1
		if i == 0 && !hasBest && origin.Ancestor.IsZero() {
			// Canonizing the genesis block itself.
			number = 0
		}
		if err := s.canonizeInto(overlay, h, number); err != nil {
			return nil, err
		}
		cur = chain.BestBlock{Number: number, Hash: h}
	}

	// CanonizedRoute holds only the already-stored side chain blocks
	// (spec.md §3 S3: canonized_route excludes the new block); the block
	// that triggered this fork still needs canonizing on top of it.
	if origin.Kind == chain.OriginSideChainBecomingCanonChain {
		number := cur.Number + 1
		if len(origin.CanonizedRoute) == 0 && !hasBest && origin.Ancestor.IsZero() {
			number = 0
		}
		if err := s.canonizeInto(overlay, origin.NewBlock, number); err != nil {
			return nil, err
		}
		cur = chain.BestBlock{Number: number, Hash: origin.NewBlock}
	}

	return &ForkChain{store: s, overlay: overlay, newBest: cur}, nil
}

// Store exposes a Store view over the fork's overlay, so a caller can
// e.g. verify further blocks against the tentative fork state before
// committing to it.
func (f *ForkChain) Store() *Store {
	return &Store{db: f.overlay, best: f.newBest, hasBest: true}
}

// Flush commits the overlay to the backing store atomically: either
// every decanonize/canonize lands, or (on error) none of it does and the
// live best-block pointer is unchanged (spec.md §4.2 reorg invariant).
func (f *ForkChain) Flush() error {
	return f.overlay.Flush()
}

// SwitchToFork adopts fork's best block and flushes it into the live
// store, completing a reorganization.
func (s *Store) SwitchToFork(fork *ForkChain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fork.Flush(); err != nil {
		return err
	}
	s.best = fork.newBest
	s.hasBest = true
	return nil
}

// NewBest reports the best block the fork would install if switched to,
// without committing anything.
func (f *ForkChain) NewBest() chain.BestBlock { return f.newBest }
