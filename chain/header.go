// Package chain holds the node's core block representation: the wire
// BlockHeader, its cached-hash IndexedBlockHeader wrapper, the (currently
// header-only) Block/IndexedBlock, and the BestBlock pointer (spec.md §3).
package chain

import (
	"math/big"

	"github.com/rand-chain/go-randchain/bigint"
	"github.com/rand-chain/go-randchain/common"
	"github.com/rand-chain/go-randchain/crypto/dhash"
	"github.com/rand-chain/go-randchain/serialization"
)

// SPoWResult is the header's embedded SeqPoW attestation.
type SPoWResult struct {
	Iterations uint64
	Randomness *big.Int // the VDF output y, reduced mod N
	Proof      []*big.Int
}

// BlockHeader is the wire block header (spec.md §3, §6). The merkle root
// field named in some historical layouts is deliberately absent: the
// original source never computes or sets it (spec.md §9), so there is
// nothing to round-trip.
type BlockHeader struct {
	Version            uint32
	PreviousHeaderHash common.Hash
	Time               uint32
	Bits               common.Compact
	SPoW               SPoWResult
}

// IsGenesis reports whether this header has the all-zero previous hash
// (spec.md §3 BestBlock invariant: number == 0 iff previous hash == 0).
func (h *BlockHeader) IsGenesis() bool {
	return h.PreviousHeaderHash.IsZero()
}

// Serialize encodes the header in the fixed little-endian wire format
// described in spec.md §6.
func (h *BlockHeader) Serialize() []byte {
	w := serialization.NewWriter()
	w.WriteU32(h.Version)
	w.WriteHash(h.PreviousHeaderHash)
	w.WriteU32(h.Time)
	w.WriteCompact(h.Bits)
	w.WriteU64(h.SPoW.Iterations)
	_ = w.WriteBigInt(randomnessOrZero(h.SPoW.Randomness))
	_ = w.WriteBigIntList(h.SPoW.Proof)
	return w.Bytes()
}

func randomnessOrZero(y *big.Int) *big.Int {
	if y == nil {
		return big.NewInt(0)
	}
	return y
}

// DeserializeBlockHeader decodes a wire-format header, failing (returning
// a non-nil error via r.Err()) unless the input deserializes exactly —
// the pre-verification "header well-formed" check of spec.md §4.4 is the
// combination of a nil error here and Remaining() == 0.
func DeserializeBlockHeader(data []byte) (*BlockHeader, error) {
	r := serialization.NewReader(data)
	h := &BlockHeader{
		Version:            r.ReadU32(),
		PreviousHeaderHash: r.ReadHash(),
		Time:               r.ReadU32(),
		Bits:               r.ReadCompact(),
	}
	h.SPoW.Iterations = r.ReadU64()
	h.SPoW.Randomness = r.ReadBigInt()
	h.SPoW.Proof = r.ReadBigIntList()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, serialization.ErrTruncated
	}
	return h, nil
}

// Prefix encodes the header fields preceding SPoW (version, previous
// hash, time, bits) — the "x" input SeqPoW.Verify binds its VDF proof to,
// per spec.md §4.4 ("H_G(header_prefix_without_spow || pk)").
func (h *BlockHeader) Prefix() []byte {
	w := serialization.NewWriter()
	w.WriteU32(h.Version)
	w.WriteHash(h.PreviousHeaderHash)
	w.WriteU32(h.Time)
	w.WriteCompact(h.Bits)
	return w.Bytes()
}

// HeaderHash computes dhash256(serialize(header)), the header's identity.
func HeaderHash(h *BlockHeader) common.Hash {
	return common.BytesToHash(dhash.Sum256Slice(h.Serialize()))
}

// WesolowskiProof packages the header's SPoW proof into the bigint VDF
// proof shape expected by bigint.Verify/seqpow.Verify.
func (s SPoWResult) WesolowskiProof() bigint.Proof {
	return bigint.Proof{Mus: s.Proof}
}
