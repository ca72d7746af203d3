package peers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rand-chain/go-randchain/common"
)

func hashN(n byte) common.Hash {
	var h common.Hash
	h[0] = n
	return h
}

func TestInsertAndEnumerate(t *testing.T) {
	s := NewSet()
	s.Insert("a")
	s.Insert("b")
	s.Insert("a") // idempotent

	assert.ElementsMatch(t, []string{"a", "b"}, s.Enumerate())
}

func TestIdleReportsPeersWithNoOutstandingBlocks(t *testing.T) {
	s := NewSet()
	s.Insert("a")
	s.Insert("b")
	s.OnBlocksRequested("a", []common.Hash{hashN(1)})

	assert.ElementsMatch(t, []string{"b"}, s.Idle())
}

func TestOnHeadersRequestedThenReceivedTogglesUseful(t *testing.T) {
	s := NewSet()
	s.Insert("a")

	s.OnHeadersRequested("a")
	assert.False(t, s.IsUseful("a"))

	s.OnHeadersReceived("a")
	assert.True(t, s.IsUseful("a"))
}

func TestLastResponseUnknownPeerIsZero(t *testing.T) {
	s := NewSet()
	assert.True(t, s.LastResponse("ghost").IsZero())
}

func TestLastResponseUpdatesOnHeadersAndBlockReceived(t *testing.T) {
	s := NewSet()
	s.Insert("a")
	assert.True(t, s.LastResponse("a").IsZero())

	s.OnHeadersReceived("a")
	first := s.LastResponse("a")
	assert.False(t, first.IsZero())

	s.OnBlockReceived("a", hashN(1))
	assert.False(t, s.LastResponse("a").Before(first))
}

func TestBlockRequestLifecycle(t *testing.T) {
	s := NewSet()
	s.Insert("a")

	s.OnBlocksRequested("a", []common.Hash{hashN(1), hashN(2)})
	assert.Equal(t, 2, s.OutstandingBlocks("a"))
	assert.True(t, s.HasRequested("a", hashN(1)))

	s.OnBlockReceived("a", hashN(1))
	assert.Equal(t, 1, s.OutstandingBlocks("a"))
	assert.False(t, s.HasRequested("a", hashN(1)))
	assert.True(t, s.IsUseful("a"))
}

func TestResetBlocksTasksReturnsOutstandingAndClears(t *testing.T) {
	s := NewSet()
	s.Insert("a")
	s.OnBlocksRequested("a", []common.Hash{hashN(1), hashN(2)})

	returned := s.ResetBlocksTasks("a")
	assert.ElementsMatch(t, []common.Hash{hashN(1), hashN(2)}, returned)
	assert.Equal(t, 0, s.OutstandingBlocks("a"))
}

func TestRemoveReturnsOutstandingHashesForRecycling(t *testing.T) {
	s := NewSet()
	s.Insert("a")
	s.OnBlocksRequested("a", []common.Hash{hashN(1), hashN(2)})

	hashes := s.Remove("a")
	assert.ElementsMatch(t, []common.Hash{hashN(1), hashN(2)}, hashes)
	assert.NotContains(t, s.Enumerate(), "a")
}

func TestPenalizeDisconnectsAtThreshold(t *testing.T) {
	s := NewSet()
	s.Insert("a")

	for i := 0; i < MaxPenalty-1; i++ {
		assert.False(t, s.Penalize("a"), "penalty %d should not yet disconnect", i+1)
	}
	assert.True(t, s.Penalize("a"), "reaching MaxPenalty must disconnect")
}

func TestPenalizeUnknownPeerIsNoop(t *testing.T) {
	s := NewSet()
	assert.False(t, s.Penalize("ghost"))
}

func TestAnnouncementTypeDefaultsAndOverrides(t *testing.T) {
	s := NewSet()
	s.Insert("a")
	assert.Equal(t, AnnounceInventory, s.AnnouncementType("a"))

	s.SetAnnouncementType("a", AnnounceHeaders)
	assert.Equal(t, AnnounceHeaders, s.AnnouncementType("a"))

	assert.Equal(t, AnnounceNone, s.AnnouncementType("ghost"))
}

func TestFilterPerPeerIsolation(t *testing.T) {
	s := NewSet()
	s.Insert("a")
	s.Insert("b")

	s.Filter("a").Remember(hashN(1), KnownBlock)

	assert.True(t, s.Filter("a").IsKnown(hashN(1), KnownBlock))
	assert.False(t, s.Filter("b").IsKnown(hashN(1), KnownBlock))
	assert.Nil(t, s.Filter("ghost"))
}

func TestKnownHashFilterSeparatesTypes(t *testing.T) {
	f := NewKnownHashFilter()
	f.Remember(hashN(1), KnownBlock)

	assert.True(t, f.IsKnown(hashN(1), KnownBlock))
	assert.False(t, f.IsKnown(hashN(1), KnownTransaction))
}
