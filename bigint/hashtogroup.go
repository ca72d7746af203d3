package bigint

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"
)

// residuePrefix is the domain-separation prefix for H_G, the VDF's
// hash-to-group function over public mining inputs.
const residuePrefix = "residue_part_"

// fsPrefix is the domain-separation prefix for the Fiat-Shamir challenge
// expansion used only inside Wesolowski proving/verification. It is
// deliberately a different constant than residuePrefix: several modules in
// the original source carry near-identical-looking expanders with
// different prefixes, and spec.md §9 warns against unifying them without
// fixed test vectors.
const fsPrefix = "fs_part_"

// expand8x256 is the shared shape of both H_G and the Fiat-Shamir
// expansion: concatenate prefix||i||x for i in [0,8), SHA-256 each, and
// concatenate the eight 32-byte digests little-endian into a 2048-bit
// integer, then reduce mod N.
func expand8x256(prefix string, x []byte) *big.Int {
	var out []byte
	for i := 0; i < 8; i++ {
		h := sha256.New()
		h.Write([]byte(prefix))
		var idx [4]byte
		binary.LittleEndian.PutUint32(idx[:], uint32(i))
		h.Write(idx[:])
		h.Write(x)
		digest := h.Sum(nil)
		out = append(out, digest...)
	}
	// out is 256 bytes = 2048 bits, big-endian as produced; the original
	// concatenates digests "little-endian" meaning digest[0] is the least
	// significant word, so reverse the digest order before interpreting
	// as a big-endian magnitude.
	reversed := make([]byte, len(out))
	const wordLen = sha256.Size
	words := len(out) / wordLen
	for w := 0; w < words; w++ {
		copy(reversed[w*wordLen:(w+1)*wordLen], out[(words-1-w)*wordLen:(words-w)*wordLen])
	}
	n := new(big.Int).SetBytes(reversed)
	return n.Mod(n, N)
}

// HG is the VDF's hash-to-group function: H_G(x) = 8x-SHA256 expansion of
// "residue_part_" || i || x, reduced mod N.
func HG(x []byte) *big.Int {
	return expand8x256(residuePrefix, x)
}

// FiatShamir computes the Wesolowski proof's per-level challenge
// r_i = hash_fs(x_i, y_i, mu_i), using the same 8x-SHA256 expansion shape
// as HG but under the distinct "fs_part_" domain separator.
func FiatShamir(x, y, mu *big.Int) *big.Int {
	buf := append(append(append([]byte{}, x.Bytes()...), y.Bytes()...), mu.Bytes()...)
	return expand8x256(fsPrefix, buf)
}
