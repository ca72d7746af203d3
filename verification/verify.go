package verification

import (
	"time"

	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/common"
	"github.com/rand-chain/go-randchain/work"
)

// ChainState is the subset of *blockchain.Store the verifier needs:
// duplicate/parent lookups and header history for retargeting and
// median-time-past. Expressed as an interface so tests can substitute a
// fake without spinning up a real store.
type ChainState interface {
	Contains(hash common.Hash) bool
	Header(hash common.Hash) (*chain.BlockHeader, bool)
	BlockOrigin(header *chain.IndexedBlockHeader) (chain.BlockOrigin, error)
}

type headerProvider struct{ s ChainState }

func (p headerProvider) HeaderByHash(hash common.Hash) (*chain.BlockHeader, bool) {
	return p.s.Header(hash)
}

// Verify runs the full two-phase pipeline of spec.md §4.4 against block:
// duplicate check, pre-verification, and — once the parent is resolved —
// contextual acceptance. It does not itself insert or canonize; callers
// drive the store from the BlockOrigin this returns alongside a nil
// error.
func Verify(state ChainState, block *chain.IndexedBlockHeader, pk []byte, network work.Network, now uint32) (chain.BlockOrigin, error) {
	if state.Contains(block.Hash) {
		return chain.BlockOrigin{}, newErr(KindDuplicate)
	}

	if err := PreVerify(block.Raw, pk, now); err != nil {
		return chain.BlockOrigin{}, err
	}

	origin, err := state.BlockOrigin(block)
	if err != nil {
		return chain.BlockOrigin{}, wrapErr(KindUnknownParent, err)
	}
	if origin.Kind == chain.OriginKnownBlock {
		return origin, newErr(KindDuplicate)
	}

	if block.Raw.IsGenesis() {
		return origin, nil
	}

	parent, ok := state.Header(block.Raw.PreviousHeaderHash)
	if !ok {
		return chain.BlockOrigin{}, wrapErr(KindUnknownParent, nil)
	}

	if err := ContextualVerify(block.Raw, parent, origin.BlockNumber, headerProvider{state}, network); err != nil {
		return chain.BlockOrigin{}, err
	}

	return origin, nil
}

// PipelineVerifier adapts Verify to the single-argument shape the sync
// client's Verifier interface expects, supplying the chain state, miner
// public key, network parameters, and wall clock it needs on every call.
type PipelineVerifier struct {
	State   ChainState
	PK      []byte
	Network work.Network
}

// Verify implements sync/client.Verifier.
func (v PipelineVerifier) Verify(block *chain.IndexedBlockHeader) (chain.BlockOrigin, error) {
	now := uint32(time.Now().Unix())
	return Verify(v.State, block, v.PK, v.Network, now)
}
