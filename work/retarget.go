package work

import (
	"math/big"

	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/common"
)

// HeaderProvider looks up stored headers by hash, used to walk back
// through ancestors for retargeting and median-time calculations.
type HeaderProvider interface {
	HeaderByHash(hash common.Hash) (*chain.BlockHeader, bool)
}

// IsValidProofOfWorkHash reports whether hash, reversed into a
// big-endian u256, is at or below the compact target bits encodes
// (spec.md §4.3: "u256(reverse(hash)) <= target(bits)").
func IsValidProofOfWorkHash(bits common.Compact, hash common.Hash) bool {
	reversed := hash.Reversed()
	h := new(big.Int).SetBytes(reversed[:])
	return h.Cmp(bits.ToBig()) <= 0
}

// clampBig clamps x into [lo, hi].
func clampBig(x, lo, hi *big.Int) *big.Int {
	if x.Cmp(lo) < 0 {
		return lo
	}
	if x.Cmp(hi) > 0 {
		return hi
	}
	return x
}

// WorkRequired computes the bits a block at height must carry, given its
// parent header and a provider to walk further back when a retarget
// interval boundary is crossed (spec.md §4.3).
func WorkRequired(parent *chain.BlockHeader, height uint32, headers HeaderProvider, network Network) common.Compact {
	if height == 0 {
		return network.MaxBits
	}
	if height%network.RetargetInterval != 0 {
		return parent.Bits
	}

	// Walk back RetargetInterval-1 blocks from parent to find the first
	// block of the just-completed interval.
	first := parent
	for i := uint32(0); i < network.RetargetInterval-1; i++ {
		prev, ok := headers.HeaderByHash(first.PreviousHeaderHash)
		if !ok {
			// Not enough history (e.g. near genesis in a test chain);
			// leave difficulty unchanged rather than panic.
			return parent.Bits
		}
		first = prev
	}

	actualTimespan := int64(parent.Time) - int64(first.Time)
	if actualTimespan <= 0 {
		actualTimespan = 1
	}
	targetTimespan := int64(network.TargetTimespan)
	minTimespan := targetTimespan / int64(network.MaxAdjustFactor)
	maxTimespan := targetTimespan * int64(network.MaxAdjustFactor)
	if actualTimespan < minTimespan {
		actualTimespan = minTimespan
	}
	if actualTimespan > maxTimespan {
		actualTimespan = maxTimespan
	}

	prevTarget := parent.Bits.ToBig()
	newTarget := new(big.Int).Mul(prevTarget, big.NewInt(actualTimespan))
	newTarget.Div(newTarget, big.NewInt(targetTimespan))

	newTarget = clampBig(newTarget, big.NewInt(1), network.MaxBits.ToBig())
	return common.FromBig(newTarget)
}
