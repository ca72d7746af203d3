package sr25519

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSeedIsDeterministic(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}

	k1 := FromSeed(seed)
	k2 := FromSeed(seed)

	assert.Equal(t, k1.Public, k2.Public)
	assert.Equal(t, k1.Private, k2.Private)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	k, err := Generate()
	require.NoError(t, err)

	msg := []byte("seqpow difficulty test message")
	sig := k.Sign(msg)

	assert.True(t, Verify(k.Public, msg, sig))
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	k, err := Generate()
	require.NoError(t, err)

	sig := k.Sign([]byte("original"))
	assert.False(t, Verify(k.Public, []byte("tampered"), sig))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	k1, err := Generate()
	require.NoError(t, err)
	k2, err := Generate()
	require.NoError(t, err)

	msg := []byte("message")
	sig := k1.Sign(msg)

	assert.False(t, Verify(k2.Public, msg, sig))
}

func TestVerifyRejectsMalformedInputSizes(t *testing.T) {
	assert.False(t, Verify([]byte("too-short"), []byte("msg"), []byte("sig")))
}

func TestGenerateProducesDistinctKeypairs(t *testing.T) {
	k1, err := Generate()
	require.NoError(t, err)
	k2, err := Generate()
	require.NoError(t, err)

	assert.NotEqual(t, k1.Public, k2.Public)
}
