// Package client implements the sync core's state machine (spec.md
// §4.5): Saturated/NearlySaturated/Synchronizing transitions, the
// on_connect/on_headers/on_block/on_notfound message handlers, the
// per-tick scheduling algorithm, and the block-locator construction.
//
// Grounded on sync/src/synchronization_client_core.rs (original_source)
// for the state machine and scheduling constants, and on the teacher's
// tos/handler.go for the Go shape of a protocol handler owning peer
// bookkeeping and dispatching into a verification pipeline.
package client

import "time"

// State is the sync core's coarse-grained mode (spec.md §4.5).
type State int

const (
	Saturated State = iota
	NearlySaturated
	Synchronizing
)

func (s State) String() string {
	switch s {
	case NearlySaturated:
		return "nearly_saturated"
	case Synchronizing:
		return "synchronizing"
	default:
		return "saturated"
	}
}

// SyncState is the current mode plus the extra fields Synchronizing
// carries (spec.md §4.5: "Synchronizing(since_ts, best_known_height)").
type SyncState struct {
	Kind            State
	Since           time.Time
	BestKnownHeight uint32
}

// Scheduling constants (spec.md §4.5), tunable but given the spec's
// suggested defaults.
const (
	MaxScheduledHashes = 4096
	MaxRequestedBlocks = 256
	MaxVerifyingBlocks = 256
	MinBlocksInRequest = 32
	MaxBlocksInRequest = 128

	DuplicationInterval  = 10 * time.Second
	MinDuplicationBatch  = 4
	MaxDuplicationBatch  = 8
	NearEmptyQueueWindow = 20 * time.Second

	// NearEmptyQueueBlocks is the block-count analogue of
	// NearEmptyQueueWindow: below this many checkpoints, a meter hasn't
	// seen enough of the stream yet to call its speed reliable.
	NearEmptyQueueBlocks = 20

	SpeedWindowBlocks = 512
)
