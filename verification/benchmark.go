package verification

import (
	"time"

	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/work"
)

// BenchmarkResult reports how long a batch of blocks took to pass the
// full verification pipeline.
type BenchmarkResult struct {
	Blocks   int
	Elapsed  time.Duration
	PerBlock time.Duration
}

// BenchmarkBlocks times Verify across a pre-built sequence of blocks
// against state, stopping at the first verification error. Grounded on
// bencher/src/verifier.rs (original_source), which wraps a tight loop of
// chain_verifier.verify(...) calls in a timer; here a pure function
// instead of a standalone binary, so it composes into Go's own testing
// and benchmarking tools rather than duplicating a CLI harness.
func BenchmarkBlocks(state ChainState, blocks []*chain.IndexedBlockHeader, pks [][]byte, network work.Network) (BenchmarkResult, error) {
	now := uint32(time.Now().Unix())
	start := time.Now()
	for i, block := range blocks {
		var pk []byte
		if i < len(pks) {
			pk = pks[i]
		}
		if _, err := Verify(state, block, pk, network, now); err != nil {
			return BenchmarkResult{}, err
		}
	}
	elapsed := time.Since(start)
	result := BenchmarkResult{Blocks: len(blocks), Elapsed: elapsed}
	if len(blocks) > 0 {
		result.PerBlock = elapsed / time.Duration(len(blocks))
	}
	return result, nil
}
