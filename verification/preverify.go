package verification

import (
	"github.com/rand-chain/go-randchain/bigint"
	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/seqpow"
	"github.com/rand-chain/go-randchain/work"
)

// MaxFutureTime bounds how far ahead of the local clock a header's time
// field may sit before being rejected as FuturisticTimestamp (spec.md §7:
// "time > now + 2h").
const MaxFutureTime = 2 * 60 * 60

// PreVerify runs the context-free checks of spec.md §4.4 against a
// candidate header: well-formedness, PoW, SeqPoW, and future-timestamp.
// pk is the miner's public key the SeqPoW attestation is bound to; it is
// carried alongside the header rather than inside it, since the wire
// format of spec.md §6 does not list a pubkey field (see DESIGN.md).
func PreVerify(header *chain.BlockHeader, pk []byte, now uint32) error {
	// Well-formedness: the header must round-trip through the wire codec
	// exactly. Headers reaching this pipeline already came from
	// chain.DeserializeBlockHeader (which itself enforces an exact
	// decode), so this re-encodes and re-decodes defensively against
	// headers built in memory (e.g. by a miner) rather than off the wire.
	raw := header.Serialize()
	reparsed, err := chain.DeserializeBlockHeader(raw)
	if err != nil {
		return wrapErr(KindMalformed, err)
	}
	if chain.HeaderHash(reparsed) != chain.HeaderHash(header) {
		return newErr(KindMalformed)
	}

	hash := chain.HeaderHash(header)
	if !work.IsValidProofOfWorkHash(header.Bits, hash) {
		return newErr(KindPow)
	}

	x := append(append([]byte{}, header.Prefix()...), pk...)
	state := &seqpow.State{
		G:          bigint.HG(x),
		Y:          header.SPoW.Randomness,
		Iterations: header.SPoW.Iterations,
		Proof:      header.SPoW.WesolowskiProof(),
	}
	target := header.Bits.ToBig()
	if !seqpow.Verify(pk, x, state, target) {
		return newErr(KindVdf)
	}

	if header.Time > now+MaxFutureTime {
		return newErr(KindFuturisticTimestamp)
	}

	return nil
}
