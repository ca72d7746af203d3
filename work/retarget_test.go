package work

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/common"
)

type fakeHeaders map[common.Hash]*chain.BlockHeader

func (f fakeHeaders) HeaderByHash(hash common.Hash) (*chain.BlockHeader, bool) {
	h, ok := f[hash]
	return h, ok
}

func hashFor(n byte) common.Hash {
	var h common.Hash
	h[0] = n
	return h
}

func TestWorkRequiredGenesisIsMaxBits(t *testing.T) {
	got := WorkRequired(&chain.BlockHeader{}, 0, fakeHeaders{}, Mainnet)
	assert.Equal(t, Mainnet.MaxBits, got)
}

func TestWorkRequiredUnchangedMidInterval(t *testing.T) {
	parent := &chain.BlockHeader{Bits: common.Compact(0x1d00aaaa)}
	got := WorkRequired(parent, 5, fakeHeaders{}, Mainnet)
	assert.Equal(t, parent.Bits, got)
}

func TestWorkRequiredRetargetsOnSchedule(t *testing.T) {
	network := Mainnet
	network.RetargetInterval = 4
	network.TargetTimespan = 400
	network.MaxAdjustFactor = 4

	firstHash := hashFor(1)
	first := &chain.BlockHeader{Time: 1000, Bits: common.MaxBits}
	headers := fakeHeaders{firstHash: first}

	mid1 := &chain.BlockHeader{PreviousHeaderHash: firstHash, Time: 1100, Bits: common.MaxBits}
	mid1Hash := hashFor(2)
	headers[mid1Hash] = mid1

	mid2 := &chain.BlockHeader{PreviousHeaderHash: mid1Hash, Time: 1200, Bits: common.MaxBits}
	mid2Hash := hashFor(3)
	headers[mid2Hash] = mid2

	parent := &chain.BlockHeader{PreviousHeaderHash: mid2Hash, Time: 1800, Bits: common.MaxBits}

	// actual timespan = 1800-1000 = 800, double the 400s target, so the
	// new target should be twice as easy (roughly double the numeric
	// value of MaxBits, then clamped back down since MaxBits is already
	// the easiest allowed target).
	got := WorkRequired(parent, 4, headers, network)
	assert.Equal(t, network.MaxBits, got, "clamped to MaxBits since it is already the easiest target")
}

func TestWorkRequiredClampsExtremeTimespan(t *testing.T) {
	network := Mainnet
	network.RetargetInterval = 2
	network.TargetTimespan = 1000
	network.MaxAdjustFactor = 4

	firstHash := hashFor(9)
	first := &chain.BlockHeader{Time: 0, Bits: common.FromBig(big.NewInt(1_000_000))}
	headers := fakeHeaders{firstHash: first}
	parent := &chain.BlockHeader{PreviousHeaderHash: firstHash, Time: 1_000_000, Bits: first.Bits}

	got := WorkRequired(parent, 2, headers, network)

	expectedTimespan := network.TargetTimespan * network.MaxAdjustFactor
	expectedTarget := new(big.Int).Mul(first.Bits.ToBig(), big.NewInt(int64(expectedTimespan)))
	expectedTarget.Div(expectedTarget, big.NewInt(int64(network.TargetTimespan)))
	assert.Equal(t, common.FromBig(expectedTarget), got)
}

func TestWorkRequiredFallsBackWithoutEnoughHistory(t *testing.T) {
	network := Mainnet
	network.RetargetInterval = 10

	parent := &chain.BlockHeader{Bits: common.Compact(0x1d00bbbb)}
	got := WorkRequired(parent, 10, fakeHeaders{}, network)
	assert.Equal(t, parent.Bits, got)
}

func TestIsValidProofOfWorkHash(t *testing.T) {
	var low common.Hash
	low[0] = 0x01 // reversed: the only set byte is the least significant, value 1
	assert.True(t, IsValidProofOfWorkHash(common.MaxBits, low))

	var high common.Hash
	for i := range high {
		high[i] = 0xff
	}
	assert.False(t, IsValidProofOfWorkHash(common.MaxBits, high))
}

func TestCompactRoundTrip(t *testing.T) {
	values := []int64{0, 1, 255, 256, 65535, 1 << 20, 1 << 30}
	for _, v := range values {
		target := big.NewInt(v)
		c := common.FromBig(target)
		got := c.ToBig()
		require.Equal(t, 0, target.Cmp(got), "value=%d compact=%x got=%s", v, uint32(c), got)
	}
}
