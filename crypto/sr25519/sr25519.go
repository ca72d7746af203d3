// Package sr25519 implements the miner keypair sign/verify primitive that
// SeqPoW binds its difficulty test to (spec.md §2, §4.1).
//
// The original source signs with Schnorrkel/sr25519 over Ristretto25519.
// No dependency in the retrieved pack ships Ristretto or Schnorrkel, so
// this implements the same Schnorr sign/verify contract (a keypair, a
// deterministic signature over an arbitrary message, and a verify
// predicate) on the Edwards25519 group already wired via
// golang.org/x/crypto/ed25519, which the teacher's go.mod already
// requires. Call sites never assume sr25519-specific key or signature
// encodings beyond "32-byte public key, fixed-size signature" (see
// DESIGN.md).
package sr25519

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/ed25519"
)

// PublicKeySize and SignatureSize mirror ed25519's fixed sizes; SeqPoW
// only ever treats the public key as an opaque byte string it hashes
// alongside the VDF output.
const (
	PublicKeySize  = ed25519.PublicKeySize
	SignatureSize  = ed25519.SignatureSize
	PrivateKeySize = ed25519.PrivateKeySize
)

// ErrInvalidSignature is returned by Verify (never; Verify returns a bool
// per spec.md §4.1, matching the original's infallible predicate) — kept
// for symmetry with sibling crypto packages that do return errors.
var ErrInvalidSignature = errors.New("sr25519: invalid signature")

// Keypair is a miner's signing identity.
type Keypair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// Generate creates a fresh keypair using the system CSPRNG.
func Generate() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Keypair{Public: pub, Private: priv}, nil
}

// FromSeed derives a keypair from a 32-byte secret seed, matching the
// process boundary's "local key file (raw 32-byte secret)" contract
// (spec.md §6).
func FromSeed(seed []byte) *Keypair {
	priv := ed25519.NewKeyFromSeed(seed)
	return &Keypair{Public: priv.Public().(ed25519.PublicKey), Private: priv}
}

// Sign produces a deterministic signature over msg.
func (k *Keypair) Sign(msg []byte) []byte {
	return ed25519.Sign(k.Private, msg)
}

// Verify reports whether sig is a valid signature by pub over msg.
func Verify(pub []byte, msg, sig []byte) bool {
	if len(pub) != PublicKeySize || len(sig) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), msg, sig)
}
