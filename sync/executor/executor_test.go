package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/common"
	"github.com/rand-chain/go-randchain/message"
	"github.com/rand-chain/go-randchain/sync/peers"
)

type fakeConnection struct {
	getHeaders []*message.GetHeaders
	getData    []*message.GetData
	inv        []*message.Inv
	headers    []*message.Headers
}

func (c *fakeConnection) SendGetHeaders(m *message.GetHeaders) { c.getHeaders = append(c.getHeaders, m) }
func (c *fakeConnection) SendGetData(m *message.GetData)       { c.getData = append(c.getData, m) }
func (c *fakeConnection) SendInv(m *message.Inv)               { c.inv = append(c.inv, m) }
func (c *fakeConnection) SendHeaders(m *message.Headers)       { c.headers = append(c.headers, m) }
func (c *fakeConnection) SendBlock(*message.Block)             {}
func (c *fakeConnection) SendNotFound(*message.NotFound)       {}

type fakeConnSource struct {
	conns map[string]*fakeConnection
}

func newFakeConnSource() *fakeConnSource {
	return &fakeConnSource{conns: make(map[string]*fakeConnection)}
}

func (s *fakeConnSource) Connection(peerID string) (Connection, bool) {
	c, ok := s.conns[peerID]
	if !ok {
		return nil, false
	}
	return c, true
}

func TestRequestHeadersSendsGetHeadersWithLocator(t *testing.T) {
	conns := newFakeConnSource()
	conn := &fakeConnection{}
	conns.conns["p1"] = conn
	e := New(conns, peers.NewSet())

	locator := []common.Hash{common.BytesToHash([]byte("tip"))}
	e.RequestHeaders("p1", locator)

	require.Len(t, conn.getHeaders, 1)
	assert.Equal(t, locator, conn.getHeaders[0].Locator)
}

func TestRequestHeadersIsNoopForUnknownPeer(t *testing.T) {
	e := New(newFakeConnSource(), peers.NewSet())
	assert.NotPanics(t, func() {
		e.RequestHeaders("ghost", nil)
	})
}

func TestRequestBlocksSendsGetDataWithInventory(t *testing.T) {
	conns := newFakeConnSource()
	conn := &fakeConnection{}
	conns.conns["p1"] = conn
	e := New(conns, peers.NewSet())

	h1, h2 := common.BytesToHash([]byte("a")), common.BytesToHash([]byte("b"))
	e.RequestBlocks("p1", []common.Hash{h1, h2})

	require.Len(t, conn.getData, 1)
	require.Len(t, conn.getData[0].Items, 2)
	assert.Equal(t, message.InvBlock, conn.getData[0].Items[0].Type)
	assert.Equal(t, h1, conn.getData[0].Items[0].Hash)
	assert.Equal(t, h2, conn.getData[0].Items[1].Hash)
}

func TestAnnounceBlockDefaultsToInventory(t *testing.T) {
	conns := newFakeConnSource()
	conn := &fakeConnection{}
	conns.conns["p1"] = conn
	peerSet := peers.NewSet()
	peerSet.Insert("p1")
	e := New(conns, peerSet)

	hash := common.BytesToHash([]byte("block"))
	e.AnnounceBlock("p1", hash, &chain.BlockHeader{})

	require.Len(t, conn.inv, 1)
	assert.Empty(t, conn.headers)
	assert.Equal(t, hash, conn.inv[0].Items[0].Hash)
}

func TestAnnounceBlockSendsHeadersWhenConfigured(t *testing.T) {
	conns := newFakeConnSource()
	conn := &fakeConnection{}
	conns.conns["p1"] = conn
	peerSet := peers.NewSet()
	peerSet.Insert("p1")
	peerSet.SetAnnouncementType("p1", peers.AnnounceHeaders)
	e := New(conns, peerSet)

	header := &chain.BlockHeader{Version: 1}
	e.AnnounceBlock("p1", common.BytesToHash([]byte("block")), header)

	require.Len(t, conn.headers, 1)
	assert.Equal(t, []*chain.BlockHeader{header}, conn.headers[0].Headers)
	assert.Empty(t, conn.inv)
}

func TestAnnounceBlockSendsNothingWhenAnnouncementTypeNone(t *testing.T) {
	conns := newFakeConnSource()
	conn := &fakeConnection{}
	conns.conns["p1"] = conn
	peerSet := peers.NewSet()
	peerSet.Insert("p1")
	peerSet.SetAnnouncementType("p1", peers.AnnounceNone)
	e := New(conns, peerSet)

	e.AnnounceBlock("p1", common.BytesToHash([]byte("block")), &chain.BlockHeader{})

	assert.Empty(t, conn.inv)
	assert.Empty(t, conn.headers)
}

func TestAnnounceBlockAsHeadersIsNoopWithoutHeader(t *testing.T) {
	conns := newFakeConnSource()
	conn := &fakeConnection{}
	conns.conns["p1"] = conn
	peerSet := peers.NewSet()
	peerSet.Insert("p1")
	peerSet.SetAnnouncementType("p1", peers.AnnounceHeaders)
	e := New(conns, peerSet)

	e.AnnounceBlock("p1", common.BytesToHash([]byte("block")), nil)

	assert.Empty(t, conn.headers)
}

func TestDisconnectDoesNotPanicWithoutConnection(t *testing.T) {
	e := New(newFakeConnSource(), peers.NewSet())
	assert.NotPanics(t, func() {
		e.Disconnect("ghost", "test")
	})
}
