// Package message defines the sync core's message semantics (spec.md
// §6): the wire framing (magic, checksums, codec) is an external
// collaborator out of scope here — these types capture only the fields
// the sync core reads and writes.
package message

import (
	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/common"
)

// InvType names the kind of item an inventory vector identifies.
type InvType int

const (
	InvError InvType = iota
	InvBlock
)

// InvVec is one entry of an Inv/GetData/NotFound message.
type InvVec struct {
	Type InvType
	Hash common.Hash
}

// GetHeaders requests up to 2000 headers extending locator.
type GetHeaders struct {
	Version uint32
	Locator []common.Hash
	Stop    common.Hash
}

// Headers carries up to 2000 headers in response to GetHeaders.
type Headers struct {
	Headers []*chain.BlockHeader
}

// Inv announces new items by hash, without sending their full content.
type Inv struct {
	Items []InvVec
}

// GetData asks for full blocks by hash.
type GetData struct {
	Items []InvVec
}

// Block carries one full block.
type Block struct {
	Block *chain.IndexedBlock
}

// NotFound tells the requester that some requested items are unavailable.
type NotFound struct {
	Items []InvVec
}

// SendHeaders asks that future announcements arrive as Headers rather
// than Inv.
type SendHeaders struct{}
