package verification

import (
	"sort"

	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/work"
)

// MedianTimeSpan is how many ancestors (inclusive of the parent) feed the
// median-time-past rule (spec.md §4.4: "median-of-last-11-timestamps").
const MedianTimeSpan = 11

// ContextualVerify runs the chain-state-dependent checks of spec.md
// §4.4 against header, given its already-validated parent and height.
func ContextualVerify(header *chain.BlockHeader, parent *chain.BlockHeader, height uint32, headers work.HeaderProvider, network work.Network) error {
	expected := work.WorkRequired(parent, height, headers, network)
	if header.Bits != expected {
		return &Error{Kind: KindDifficulty, Expected: expected, Actual: header.Bits}
	}

	if header.Version < network.MinVersionAtHeight(height) {
		return newErr(KindOldVersionBlock)
	}

	mtp := medianTimePast(parent, headers)
	if header.Time <= mtp {
		return newErr(KindTimestamp)
	}

	return nil
}

// medianTimePast walks back up to MedianTimeSpan headers starting at
// (and including) from, and returns the median of their time fields —
// the value a candidate block's own time must strictly exceed.
func medianTimePast(from *chain.BlockHeader, headers work.HeaderProvider) uint32 {
	times := make([]uint32, 0, MedianTimeSpan)
	cur := from
	for i := 0; i < MedianTimeSpan; i++ {
		times = append(times, cur.Time)
		if cur.IsGenesis() {
			break
		}
		prev, ok := headers.HeaderByHash(cur.PreviousHeaderHash)
		if !ok {
			break
		}
		cur = prev
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times[len(times)/2]
}

// checkBlockVersion reports whether version meets the per-height floor,
// as a standalone helper; ContextualVerify performs the same comparison
// inline and does not call it.
func checkBlockVersion(version uint32, height uint32, network work.Network) bool {
	return version >= network.MinVersionAtHeight(height)
}
