package seqpow

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func easyTarget() *big.Int {
	// A target of 2^255: about half of all difficulty hashes meet it, so
	// few Steps are needed. The single-Solve tests below use fixtures
	// whose first Step meets it.
	max := new(big.Int).Lsh(big.NewInt(1), 255)
	return max
}

func TestSolveProveVerifyRoundTrip(t *testing.T) {
	pk := []byte("miner-pubkey-fixture")
	x := []byte("block-prefix-fixture")
	target := easyTarget()

	state := Init(x)
	var solved *State
	for i := 0; i < 8; i++ {
		next, ok := Solve(pk, state, target)
		state = next
		if ok {
			solved = next
			break
		}
	}
	require.NotNil(t, solved, "expected Solve to meet an easy target within a few attempts")

	proved := Prove(solved)
	assert.True(t, Verify(pk, x, proved, target))
}

func TestVerifyRejectsWrongPubkey(t *testing.T) {
	pk := []byte("miner-a")
	otherPK := []byte("miner-b")
	x := []byte("prefix-one")
	target := easyTarget()

	state := Init(x)
	next, ok := Solve(pk, state, target)
	require.True(t, ok)
	proved := Prove(next)

	assert.False(t, Verify(otherPK, x, proved, target))
}

func TestVerifyRejectsWrongInput(t *testing.T) {
	pk := []byte("miner")
	x := []byte("prefix")
	target := easyTarget()

	state := Init(x)
	next, ok := Solve(pk, state, target)
	require.True(t, ok)
	proved := Prove(next)

	assert.False(t, Verify(pk, []byte("prefix-two"), proved, target))
}

func TestVerifyRejectsNonMultipleOfStep(t *testing.T) {
	pk := []byte("miner")
	x := []byte("prefix")
	target := easyTarget()

	state := Init(x)
	next, _ := Solve(pk, state, target)
	proved := Prove(next)
	proved.Iterations++

	assert.False(t, Verify(pk, x, proved, target))
}

func TestVerifyRejectsZeroIterations(t *testing.T) {
	state := Init([]byte("prefix"))
	assert.False(t, Verify([]byte("pk"), []byte("prefix"), state, easyTarget()))
}
