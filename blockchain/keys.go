package blockchain

import (
	"encoding/binary"

	"github.com/rand-chain/go-randchain/common"
)

// Meta keys are short ASCII strings (spec.md §6).
var (
	keyBestBlockNumber = []byte("best_block_number")
	keyBestBlockHash   = []byte("best_block_hash")
)

func numberKey(n uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], n)
	return b[:]
}

func hashKey(h common.Hash) []byte {
	return h.Bytes()
}
