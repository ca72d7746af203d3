// Package dhash implements dhash256, the double-SHA256 used to compute
// block header hashes and the SeqPoW difficulty test input.
package dhash

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// Sum256 returns SHA256(SHA256(data)).
func Sum256(data []byte) [32]byte {
	return chainhash.DoubleHashH(data)
}

// Sum256Slice is Sum256 with a []byte result, for callers building up a
// common.Hash from raw bytes.
func Sum256Slice(data []byte) []byte {
	return chainhash.DoubleHashB(data)
}
