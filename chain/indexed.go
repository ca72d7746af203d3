package chain

import "github.com/rand-chain/go-randchain/common"

// IndexedBlockHeader pairs a header with its cached hash. Invariant:
// Hash == HeaderHash(Raw) at all times (spec.md §3); NewIndexedBlockHeader
// is the only constructor, so the invariant cannot be broken by
// construction.
type IndexedBlockHeader struct {
	Hash common.Hash
	Raw  *BlockHeader
}

// NewIndexedBlockHeader computes and caches the header's hash.
func NewIndexedBlockHeader(raw *BlockHeader) *IndexedBlockHeader {
	return &IndexedBlockHeader{Hash: HeaderHash(raw), Raw: raw}
}

// Block is currently header-only; a transaction list is a named future
// extension in spec.md §3 ("Transaction handling is vestigial... not part
// of the core").
type Block struct {
	Header *BlockHeader
}

// IndexedBlock is produced by the sync layer on receipt of a Block message
// and consumed by the verifier, then the store (spec.md §3 "Ownership").
type IndexedBlock struct {
	Header *IndexedBlockHeader
}

// NewIndexedBlock wraps a freshly received block, indexing its header.
func NewIndexedBlock(b *Block) *IndexedBlock {
	return &IndexedBlock{Header: NewIndexedBlockHeader(b.Header)}
}
