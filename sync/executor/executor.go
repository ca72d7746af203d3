// Package executor translates sync-core decisions into outbound peer
// messages (spec.md §2, §4.5: "Executor — translates sync tasks into
// outbound messages"). Grounded on sync/src/synchronization_executor.rs
// (original_source) for the task-to-message mapping, adapted per
// spec.md §9's "Dynamic dispatch" note to a small capability interface
// per peer connection rather than a trait-object task enum.
package executor

import (
	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/common"
	"github.com/rand-chain/go-randchain/internal/rlog"
	"github.com/rand-chain/go-randchain/message"
	"github.com/rand-chain/go-randchain/sync/peers"
)

// Connection is the capability a peer's transport exposes to the
// executor: send one message, regardless of kind. The P2P wire framing
// (magic, checksums, codec) that serializes these onto a socket is an
// external collaborator (spec.md §1).
type Connection interface {
	SendGetHeaders(*message.GetHeaders)
	SendGetData(*message.GetData)
	SendInv(*message.Inv)
	SendHeaders(*message.Headers)
	SendBlock(*message.Block)
	SendNotFound(*message.NotFound)
}

// ConnectionSource looks up the live connection for a peer id, returning
// false once the peer has disconnected.
type ConnectionSource interface {
	Connection(peerID string) (Connection, bool)
}

// Executor implements sync/client.Executor by sending messages over the
// connections ConnectionSource resolves. It reads each peer's announcement
// type from the peer set; it does not update the peers' known-hash filters.
type Executor struct {
	conns ConnectionSource
	peers *peers.Set
}

// New builds an Executor over conns, consulting peerSet for each peer's
// announcement type.
func New(conns ConnectionSource, peerSet *peers.Set) *Executor {
	return &Executor{conns: conns, peers: peerSet}
}

func (e *Executor) connection(peerID string) (Connection, bool) {
	conn, ok := e.conns.Connection(peerID)
	if !ok {
		rlog.Debug("executor: no connection for peer", "peer", peerID)
	}
	return conn, ok
}

// RequestHeaders sends GetHeaders for locator.
func (e *Executor) RequestHeaders(peerID string, locator []common.Hash) {
	conn, ok := e.connection(peerID)
	if !ok {
		return
	}
	conn.SendGetHeaders(&message.GetHeaders{Locator: locator})
}

// RequestBlocks sends GetData for hashes.
func (e *Executor) RequestBlocks(peerID string, hashes []common.Hash) {
	conn, ok := e.connection(peerID)
	if !ok {
		return
	}
	items := make([]message.InvVec, len(hashes))
	for i, h := range hashes {
		items[i] = message.InvVec{Type: message.InvBlock, Hash: h}
	}
	conn.SendGetData(&message.GetData{Items: items})
}

// AnnounceBlock relays a newly canonized block to peerID, honoring its
// configured announcement type.
func (e *Executor) AnnounceBlock(peerID string, hash common.Hash, header *chain.BlockHeader) {
	conn, ok := e.connection(peerID)
	if !ok {
		return
	}
	switch e.peers.AnnouncementType(peerID) {
	case peers.AnnounceHeaders:
		if header == nil {
			return
		}
		conn.SendHeaders(&message.Headers{Headers: []*chain.BlockHeader{header}})
	case peers.AnnounceInventory:
		conn.SendInv(&message.Inv{Items: []message.InvVec{{Type: message.InvBlock, Hash: hash}}})
	default:
	}
}

// Disconnect logs and relies on the connection layer (an external
// collaborator) to actually tear down the socket; the sync core has
// already forgotten the peer's tasks by the time this is called.
func (e *Executor) Disconnect(peerID string, reason string) {
	rlog.Warn("executor: disconnecting peer", "peer", peerID, "reason", reason)
}
