// Package seqpow implements the Sequential Proof-of-Work primitive
// (spec.md §4.1): a VDF over the RSA-2048 group composed with a
// hash-based difficulty test bound to the miner's public key, so that
// mining requires t sequential squarings and cannot be parallelized
// across hash rate.
package seqpow

import (
	"math/big"

	"github.com/rand-chain/go-randchain/bigint"
	"github.com/rand-chain/go-randchain/crypto/dhash"
	"github.com/rand-chain/go-randchain/serialization"
)

// Step is the fixed number of sequential squarings performed per Solve
// call (spec.md §4.1: "STEP (fixed constant, e.g. 100 000)").
const Step uint64 = 100_000

// State is the miner's in-progress (or finalized) SeqPoW attempt: the
// group element g, the current VDF output y, how many sequential
// squarings have been folded into y so far, and — once Prove has run —
// the Wesolowski proof linking g to y across Iterations steps.
type State struct {
	G          *big.Int
	Y          *big.Int
	Iterations uint64
	Proof      bigint.Proof
}

// Init begins a SeqPoW attempt over public input x: g = H_G(x), with no
// iterations performed yet.
func Init(x []byte) *State {
	g := bigint.HG(x)
	return &State{G: g, Y: new(big.Int).Set(g), Iterations: 0}
}

// serializeY produces the length-prefixed big-endian encoding of y used
// by the difficulty test's hash input.
func serializeY(y *big.Int) []byte {
	w := serialization.NewWriter()
	_ = w.WriteBigInt(y)
	return w.Bytes()
}

// difficultyHash computes dhash256(serialize(y) || pk).
func difficultyHash(y *big.Int, pk []byte) []byte {
	buf := append(serializeY(y), pk...)
	return dhash.Sum256Slice(buf)
}

// meetsTarget reports whether a difficulty hash, interpreted as a
// big-endian integer, is at or below target.
func meetsTarget(hash []byte, target *big.Int) bool {
	h := new(big.Int).SetBytes(hash)
	return h.Cmp(target) <= 0
}

// Solve performs Step sequential squarings starting from the state's
// current y, continuing the VDF evaluation from where the last Solve
// call left off, and reports whether the resulting y meets target when
// hashed alongside the miner's public key.
func Solve(pk []byte, state *State, target *big.Int) (*State, bool) {
	next := &State{
		G:          state.G,
		Y:          bigint.Eval(state.Y, Step),
		Iterations: state.Iterations + Step,
	}
	valid := meetsTarget(difficultyHash(next.Y, pk), target)
	return next, valid
}

// Prove attaches a Wesolowski proof to state linking g -> y across
// state.Iterations sequential-squaring steps.
func Prove(state *State) *State {
	proof := bigint.Prove(state.G, state.Y, state.Iterations)
	return &State{G: state.G, Y: state.Y, Iterations: state.Iterations, Proof: proof}
}

// Verify replays the SeqPoW acceptance test (spec.md §4.1):
//   - iterations must be a multiple of Step,
//   - the Wesolowski proof must verify g -> y over Iterations steps,
//   - the difficulty hash test must pass for the claimed miner pubkey.
func Verify(pk []byte, x []byte, state *State, target *big.Int) bool {
	if state.Iterations == 0 || state.Iterations%Step != 0 {
		return false
	}
	g := bigint.HG(x)
	if g.Cmp(state.G) != 0 {
		return false
	}
	if !bigint.Verify(state.G, state.Y, state.Iterations, state.Proof) {
		return false
	}
	return meetsTarget(difficultyHash(state.Y, pk), target)
}
