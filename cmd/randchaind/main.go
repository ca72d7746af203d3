// Command randchaind is the node's process entrypoint: it wires the KV
// store to the block chain store, the block chain store to the
// verification pipeline, and the verification pipeline to the sync
// client and executor (spec.md §1, §6). Deliberately absent: flag and
// config-file parsing, the JSON-RPC surface, and P2P wire framing — all
// named in spec.md §1 as external collaborators out of this core's
// scope.
//
// Grounded on randchaind/commands/start.rs (original_source) for the
// construction order (open DB, open store, build sync core, start
// listening), and on the teacher's cmd/gtos/main.go for the Go shape of
// a small main package that just wires packages together.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rand-chain/go-randchain/blockchain"
	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/common"
	"github.com/rand-chain/go-randchain/crypto/sr25519"
	"github.com/rand-chain/go-randchain/internal/rlog"
	"github.com/rand-chain/go-randchain/kv"
	"github.com/rand-chain/go-randchain/sync/client"
	"github.com/rand-chain/go-randchain/sync/executor"
	"github.com/rand-chain/go-randchain/sync/peers"
	"github.com/rand-chain/go-randchain/verification"
	"github.com/rand-chain/go-randchain/work"
)

// genesis mirrors the network's hardcoded genesis block: all-zero
// previous hash, the network's easiest difficulty, and no SeqPoW
// attestation (spec.md §9: global constants "computed at startup, not
// mutable globals").
func genesis(network work.Network) *chain.BlockHeader {
	return &chain.BlockHeader{
		Version:            1,
		PreviousHeaderHash: common.Hash{},
		Time:               uint32(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Unix()),
		Bits:               network.MaxBits,
	}
}

// noConnections is a executor.ConnectionSource with no peers wired in —
// a placeholder until the P2P transport (an external collaborator per
// spec.md §1) is plugged in.
type noConnections struct{}

func (noConnections) Connection(string) (executor.Connection, bool) { return nil, false }

func main() {
	dbPath := "randchain-data"
	if len(os.Args) > 1 {
		dbPath = os.Args[1]
	}

	disk, err := kv.OpenDiskDatabase(dbPath)
	if err != nil {
		rlog.Crit("randchaind: failed to open database", "path", dbPath, "err", err)
	}
	cached, err := kv.NewCacheDatabase(kv.NewAutoFlushingOverlay(disk, kv.DefaultAutoFlushThreshold), kv.DefaultCacheSize)
	if err != nil {
		rlog.Crit("randchaind: failed to wrap database with cache", "err", err)
	}

	network := work.Mainnet
	store, err := blockchain.Open(cached, genesis(network))
	if err != nil {
		rlog.Crit("randchaind: failed to open block chain store", "err", err)
	}

	minerPK := make([]byte, sr25519.PublicKeySize)
	verifier := verification.PipelineVerifier{State: store, PK: minerPK, Network: network}

	peerSet := peers.NewSet()
	exec := executor.New(noConnections{}, peerSet)
	syncClient := client.New(store, peerSet, exec, verifier, network, client.Config{CloseConnectionOnBadBlock: true})

	best := store.BestBlock()
	fmt.Printf("randchaind: store opened at %s, best block #%d %s\n", dbPath, best.Number, best.Hash.String())
	rlog.Info("randchaind: sync client ready", "state", syncClient.State().Kind.String())

	select {}
}
