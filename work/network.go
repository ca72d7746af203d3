// Package work implements the difficulty retargeting rule and PoW hash
// check (spec.md §4.3). Grounded on network/src/consensus.rs
// (original_source) for the retarget interval/clamp rule, and on the
// teacher's consensus/dpos package for the Go shape of a pluggable,
// params-driven consensus-rule package.
package work

import "github.com/rand-chain/go-randchain/common"

// Network names the retarget parameters of a SeqPoW network.
type Network struct {
	// RetargetInterval is how many blocks elapse between difficulty
	// adjustments.
	RetargetInterval uint32
	// TargetTimespan is the intended wall-clock duration, in seconds, of
	// RetargetInterval blocks.
	TargetTimespan uint32
	// MaxAdjustFactor clamps how far a single retarget may move the
	// target in either direction (e.g. 4 means at most 4x easier or
	// harder).
	MaxAdjustFactor uint32
	// MaxBits is the easiest (highest-target) difficulty the network
	// will ever require; every retarget result is floored to this.
	MaxBits common.Compact
	// MinVersionAtHeight returns the minimum acceptable header version
	// for a block at the given height (spec.md §4.4 "version floor").
	MinVersionAtHeight func(height uint32) uint32
}

// Mainnet holds illustrative retarget parameters: 2-week equivalent
// windows over 2016-block intervals, matching the cadence convention
// most PoW chains in this family use (and which the original source's
// consensus.rs mirrors).
var Mainnet = Network{
	RetargetInterval: 2016,
	TargetTimespan:   2016 * 600, // 600s block spacing target
	MaxAdjustFactor:  4,
	MaxBits:          common.MaxBits,
	MinVersionAtHeight: func(height uint32) uint32 {
		return 1
	},
}
