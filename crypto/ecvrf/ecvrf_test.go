package ecvrf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProveVerifyRoundTrip(t *testing.T) {
	sk, pk, err := KeyGen()
	require.NoError(t, err)

	alpha := []byte("block height 42 seed")
	proof, err := Prove(sk, alpha)
	require.NoError(t, err)

	assert.True(t, Verify(pk, alpha, proof))
}

func TestVerifyRejectsWrongAlpha(t *testing.T) {
	sk, pk, err := KeyGen()
	require.NoError(t, err)

	proof, err := Prove(sk, []byte("alpha-one"))
	require.NoError(t, err)

	assert.False(t, Verify(pk, []byte("alpha-two"), proof))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	sk, _, err := KeyGen()
	require.NoError(t, err)
	_, otherPK, err := KeyGen()
	require.NoError(t, err)

	alpha := []byte("alpha")
	proof, err := Prove(sk, alpha)
	require.NoError(t, err)

	assert.False(t, Verify(otherPK, alpha, proof))
}

func TestVerifyRejectsNilInputs(t *testing.T) {
	assert.False(t, Verify(nil, []byte("alpha"), nil))
}

func TestOutputIsDeterministicForSameProof(t *testing.T) {
	sk, pk, err := KeyGen()
	require.NoError(t, err)

	alpha := []byte("alpha")
	proof, err := Prove(sk, alpha)
	require.NoError(t, err)
	require.True(t, Verify(pk, alpha, proof))

	out1 := Output(proof)
	out2 := Output(proof)
	assert.Equal(t, out1, out2)
}

func TestOutputDiffersAcrossKeys(t *testing.T) {
	sk1, _, err := KeyGen()
	require.NoError(t, err)
	sk2, _, err := KeyGen()
	require.NoError(t, err)

	alpha := []byte("same alpha for both")
	p1, err := Prove(sk1, alpha)
	require.NoError(t, err)
	p2, err := Prove(sk2, alpha)
	require.NoError(t, err)

	assert.NotEqual(t, Output(p1), Output(p2))
}
