package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand-chain/go-randchain/common"
)

func sampleHeader() *BlockHeader {
	return &BlockHeader{
		Version:            1,
		PreviousHeaderHash: common.BytesToHash(make([]byte, 32)),
		Time:               1700000000,
		Bits:               common.MaxBits,
		SPoW: SPoWResult{
			Iterations: 100000,
			Randomness: big.NewInt(987654321),
			Proof:      []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)},
		},
	}
}

func TestHeaderSerializeRoundTrip(t *testing.T) {
	h := sampleHeader()
	encoded := h.Serialize()

	decoded, err := DeserializeBlockHeader(encoded)
	require.NoError(t, err)

	assert.Equal(t, h.Version, decoded.Version)
	assert.Equal(t, h.PreviousHeaderHash, decoded.PreviousHeaderHash)
	assert.Equal(t, h.Time, decoded.Time)
	assert.Equal(t, h.Bits, decoded.Bits)
	assert.Equal(t, h.SPoW.Iterations, decoded.SPoW.Iterations)
	assert.Equal(t, 0, h.SPoW.Randomness.Cmp(decoded.SPoW.Randomness))
	require.Len(t, decoded.SPoW.Proof, len(h.SPoW.Proof))
	for i := range h.SPoW.Proof {
		assert.Equal(t, 0, h.SPoW.Proof[i].Cmp(decoded.SPoW.Proof[i]))
	}
}

func TestHeaderHashStability(t *testing.T) {
	h := sampleHeader()
	hash1 := HeaderHash(h)
	hash2 := HeaderHash(h)
	assert.Equal(t, hash1, hash2)

	indexed := NewIndexedBlockHeader(h)
	assert.Equal(t, hash1, indexed.Hash)
}

func TestDeserializeRejectsTruncatedInput(t *testing.T) {
	h := sampleHeader()
	encoded := h.Serialize()

	_, err := DeserializeBlockHeader(encoded[:len(encoded)-1])
	assert.Error(t, err)
}

func TestDeserializeRejectsTrailingBytes(t *testing.T) {
	h := sampleHeader()
	encoded := append(h.Serialize(), 0xFF)

	_, err := DeserializeBlockHeader(encoded)
	assert.Error(t, err)
}

func TestIsGenesis(t *testing.T) {
	h := sampleHeader()
	assert.False(t, h.IsGenesis())

	h.PreviousHeaderHash = common.Hash{}
	assert.True(t, h.IsGenesis())
}
