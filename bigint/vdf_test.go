package bigint

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVDFCorrectness(t *testing.T) {
	g := HG([]byte("vdf correctness fixture"))

	// t=0 is not exercised: the scheme's base case asserts y == x^2, which
	// only holds once at least one squaring has happened, and SeqPoW
	// (seqpow.Step) never calls Prove/Verify at zero iterations.
	for _, steps := range []uint64{1, 7, 100} {
		y := Eval(g, steps)
		proof := Prove(g, y, steps)
		assert.Truef(t, Verify(g, y, steps, proof), "steps=%d", steps)
	}
}

func TestVDFSoundnessMutatedOutput(t *testing.T) {
	g := HG([]byte("soundness fixture"))
	y := Eval(g, 50)
	proof := Prove(g, y, 50)

	mutated := new(big.Int).Add(y, big.NewInt(1))
	assert.False(t, Verify(g, mutated, 50, proof))
}

func TestVDFSoundnessMutatedIterations(t *testing.T) {
	g := HG([]byte("soundness fixture 2"))
	y := Eval(g, 50)
	proof := Prove(g, y, 50)

	assert.False(t, Verify(g, y, 51, proof))
}

func TestVDFSoundnessMutatedProof(t *testing.T) {
	g := HG([]byte("soundness fixture 3"))
	y := Eval(g, 50)
	proof := Prove(g, y, 50)
	if len(proof.Mus) == 0 {
		t.Skip("no proof elements to mutate at this iteration count")
	}

	mutated := Proof{Mus: append([]*big.Int(nil), proof.Mus...)}
	mutated.Mus[0] = new(big.Int).Add(mutated.Mus[0], big.NewInt(1))
	assert.False(t, Verify(g, y, 50, mutated))
}

func TestVDFWrongLengthProofRejected(t *testing.T) {
	g := HG([]byte("length fixture"))
	y := Eval(g, 64)
	proof := Prove(g, y, 64)

	short := Proof{Mus: proof.Mus[:len(proof.Mus)-1]}
	assert.False(t, Verify(g, y, 64, short))
}
