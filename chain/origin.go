package chain

import "github.com/rand-chain/go-randchain/common"

// OriginKind discriminates the BlockOrigin sum type (spec.md §3).
type OriginKind int

const (
	OriginKnownBlock OriginKind = iota
	OriginCanonChain
	OriginSideChain
	OriginSideChainBecomingCanonChain
	OriginAncientFork
)

// BlockOrigin classifies a candidate header against the store. Only the
// fields relevant to Kind are populated; see blockchain.Store.BlockOrigin.
type BlockOrigin struct {
	Kind OriginKind

	BlockNumber uint32 // CanonChain, SideChain, SideChainBecomingCanonChain

	Ancestor         common.Hash   // SideChain, SideChainBecomingCanonChain
	CanonizedRoute   []common.Hash // already-stored side chain blocks to canonize, ancestor-first; excludes the new block itself
	DecanonizedRoute []common.Hash // hashes to decanonize, tip-first
	NewBlock         common.Hash   // the classified header's own hash, SideChain/SideChainBecomingCanonChain
}

// IsKnown reports whether the header is already present (no work to do).
func (o BlockOrigin) IsKnown() bool { return o.Kind == OriginKnownBlock }

// RequiresReorganization reports whether accepting this block means the
// store must switch its canonical chain.
func (o BlockOrigin) RequiresReorganization() bool {
	return o.Kind == OriginSideChainBecomingCanonChain
}
