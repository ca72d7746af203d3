package blockchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/common"
	"github.com/rand-chain/go-randchain/kv"
)

func genesisHeader() *chain.BlockHeader {
	return &chain.BlockHeader{
		Version: 1,
		Bits:    common.MaxBits,
		Time:    1600000000,
	}
}

func childOf(parent common.Hash, t uint32) *chain.BlockHeader {
	return &chain.BlockHeader{
		Version:            1,
		PreviousHeaderHash: parent,
		Bits:               common.MaxBits,
		Time:               t,
	}
}

func openTestStore(t *testing.T) (*Store, *chain.IndexedBlockHeader) {
	t.Helper()
	genesis := chain.NewIndexedBlockHeader(genesisHeader())
	s, err := Open(kv.NewMemoryDatabase(), genesis.Raw)
	require.NoError(t, err)
	return s, genesis
}

func TestOpenInitializesGenesis(t *testing.T) {
	s, genesis := openTestStore(t)

	assert.True(t, s.Contains(genesis.Hash))
	best := s.BestBlock()
	assert.Equal(t, uint32(0), best.Number)
	assert.Equal(t, genesis.Hash, best.Hash)
}

func TestCanonizeExtendsChainLinearly(t *testing.T) {
	s, genesis := openTestStore(t)

	b1 := chain.NewIndexedBlockHeader(childOf(genesis.Hash, 1600000010))
	require.NoError(t, s.Insert(b1))
	require.NoError(t, s.Canonize(b1.Hash))

	best := s.BestBlock()
	assert.Equal(t, uint32(1), best.Number)
	assert.Equal(t, b1.Hash, best.Hash)

	hash, ok := s.BlockHash(1)
	assert.True(t, ok)
	assert.Equal(t, b1.Hash, hash)
}

func TestCanonizeRejectsNonTipParent(t *testing.T) {
	s, genesis := openTestStore(t)

	b1 := chain.NewIndexedBlockHeader(childOf(genesis.Hash, 1600000010))
	b2 := chain.NewIndexedBlockHeader(childOf(genesis.Hash, 1600000020))
	require.NoError(t, s.Insert(b1))
	require.NoError(t, s.Insert(b2))
	require.NoError(t, s.Canonize(b1.Hash))

	err := s.Canonize(b2.Hash)
	assert.Equal(t, ErrCannotCanonize, err)
}

func TestInsertRejectsUnknownParent(t *testing.T) {
	s, _ := openTestStore(t)

	orphan := chain.NewIndexedBlockHeader(childOf(common.BytesToHash([]byte("nonexistent")), 1))
	err := s.Insert(orphan)
	assert.Equal(t, ErrUnknownParent, err)
}

func TestDecanonizeReversesCanonize(t *testing.T) {
	s, genesis := openTestStore(t)

	b1 := chain.NewIndexedBlockHeader(childOf(genesis.Hash, 1600000010))
	require.NoError(t, s.Insert(b1))
	require.NoError(t, s.Canonize(b1.Hash))

	decanonized, err := s.Decanonize()
	require.NoError(t, err)
	assert.Equal(t, b1.Hash, decanonized)

	best := s.BestBlock()
	assert.Equal(t, uint32(0), best.Number)
	assert.Equal(t, genesis.Hash, best.Hash)

	_, ok := s.BlockHash(1)
	assert.False(t, ok)
}

func TestBlockOriginClassification(t *testing.T) {
	s, genesis := openTestStore(t)

	b1 := chain.NewIndexedBlockHeader(childOf(genesis.Hash, 1600000010))

	origin, err := s.BlockOrigin(b1)
	require.NoError(t, err)
	assert.Equal(t, chain.OriginCanonChain, origin.Kind)
	assert.Equal(t, uint32(1), origin.BlockNumber)

	require.NoError(t, s.Insert(b1))
	require.NoError(t, s.Canonize(b1.Hash))

	known, err := s.BlockOrigin(b1)
	require.NoError(t, err)
	assert.Equal(t, chain.OriginKnownBlock, known.Kind)

	fork1 := chain.NewIndexedBlockHeader(childOf(genesis.Hash, 1600000011))
	forkOrigin, err := s.BlockOrigin(fork1)
	require.NoError(t, err)
	assert.Equal(t, chain.OriginSideChain, forkOrigin.Kind)
	assert.Equal(t, genesis.Hash, forkOrigin.Ancestor)
	require.NoError(t, s.Insert(fork1))
}

func TestBlockOriginSideChainBecomingCanonical(t *testing.T) {
	s, genesis := openTestStore(t)

	main1 := chain.NewIndexedBlockHeader(childOf(genesis.Hash, 1600000010))
	require.NoError(t, s.Insert(main1))
	require.NoError(t, s.Canonize(main1.Hash))

	fork1 := chain.NewIndexedBlockHeader(childOf(genesis.Hash, 1600000011))
	require.NoError(t, s.Insert(fork1))
	fork2 := chain.NewIndexedBlockHeader(childOf(fork1.Hash, 1600000012))

	origin, err := s.BlockOrigin(fork2)
	require.NoError(t, err)
	assert.Equal(t, chain.OriginSideChainBecomingCanonChain, origin.Kind)
	assert.Equal(t, uint32(2), origin.BlockNumber)
	assert.Equal(t, []common.Hash{main1.Hash}, origin.DecanonizedRoute)
	assert.Equal(t, []common.Hash{fork1.Hash}, origin.CanonizedRoute)
	assert.Equal(t, fork2.Hash, origin.NewBlock)
	require.NoError(t, s.Insert(fork2))
}

func TestForkAndSwitchReorganizesAtomically(t *testing.T) {
	s, genesis := openTestStore(t)

	main1 := chain.NewIndexedBlockHeader(childOf(genesis.Hash, 1600000010))
	require.NoError(t, s.Insert(main1))
	require.NoError(t, s.Canonize(main1.Hash))

	fork1 := chain.NewIndexedBlockHeader(childOf(genesis.Hash, 1600000011))
	require.NoError(t, s.Insert(fork1))
	fork2 := chain.NewIndexedBlockHeader(childOf(fork1.Hash, 1600000012))

	origin, err := s.BlockOrigin(fork2)
	require.NoError(t, err)
	require.True(t, origin.RequiresReorganization())
	require.NoError(t, s.Insert(fork2))

	forkChain, err := s.Fork(origin)
	require.NoError(t, err)

	// Before switching, the live store is untouched.
	liveBest := s.BestBlock()
	assert.Equal(t, main1.Hash, liveBest.Hash)

	require.NoError(t, s.SwitchToFork(forkChain))

	newBest := s.BestBlock()
	assert.Equal(t, uint32(2), newBest.Number)
	assert.Equal(t, fork2.Hash, newBest.Hash)

	hash1, ok := s.BlockHash(1)
	require.True(t, ok)
	assert.Equal(t, fork1.Hash, hash1)

	hash2, ok := s.BlockHash(2)
	require.True(t, ok)
	assert.Equal(t, fork2.Hash, hash2)
}

func TestForkRejectsNonForkOrigin(t *testing.T) {
	s, genesis := openTestStore(t)

	b1 := chain.NewIndexedBlockHeader(childOf(genesis.Hash, 1600000010))
	require.NoError(t, s.Insert(b1))
	origin, err := s.BlockOrigin(b1)
	require.NoError(t, err)

	_, err = s.Fork(origin)
	assert.Equal(t, ErrNotAFork, err)
}
