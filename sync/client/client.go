package client

import (
	"sort"
	"sync"
	"time"

	"github.com/rand-chain/go-randchain/blockchain"
	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/common"
	"github.com/rand-chain/go-randchain/internal/rlog"
	"github.com/rand-chain/go-randchain/sync/chainstate"
	"github.com/rand-chain/go-randchain/sync/peers"
	"github.com/rand-chain/go-randchain/verification"
	"github.com/rand-chain/go-randchain/work"
)

// Executor translates sync-core decisions into outbound peer messages
// (spec.md §4.5, §6). The concrete implementation lives in
// sync/executor; Client depends only on this interface so it can be
// tested without a real connection layer.
type Executor interface {
	RequestHeaders(peerID string, locator []common.Hash)
	RequestBlocks(peerID string, hashes []common.Hash)
	AnnounceBlock(peerID string, hash common.Hash, header *chain.BlockHeader)
	Disconnect(peerID string, reason string)
}

// Verifier runs the two-phase verification pipeline against a candidate
// block. *verification + a ChainState adapter satisfies this directly.
type Verifier interface {
	Verify(block *chain.IndexedBlockHeader) (chain.BlockOrigin, error)
}

// Config carries the sync client's behavioral knobs.
type Config struct {
	// CloseConnectionOnBadBlock disconnects a peer that supplied a
	// dead-end block (spec.md §4.5 on_block: "DeadEnd — disconnect (when
	// configured) or warn").
	CloseConnectionOnBadBlock bool
}

// Client is the sync core: state machine, chain queues, peer
// bookkeeping, and the glue between verification results and the block
// chain store (spec.md §4.5).
type Client struct {
	mu    sync.Mutex
	state SyncState

	cfg      Config
	network  work.Network
	store    *blockchain.Store
	chain    *chainstate.Chain
	peerSet  *peers.Set
	executor Executor
	verifier Verifier

	// verifyingBy records which peer supplied each block currently in
	// the Verifying queue, so a verification failure can penalize/
	// disconnect the right peer (spec.md: "verifying-by-peer mapping").
	verifyingBy map[common.Hash]string

	lastDuplication time.Time

	// verificationSpeed tracks how fast Verifying blocks finish
	// verification; syncSpeed tracks how fast new blocks arrive into the
	// pipeline. Both feed maybeDuplicateRequests' stall detection
	// (spec.md §4.5 step 3).
	verificationSpeed *speedMeter
	syncSpeed         *speedMeter
}

// New builds a sync client wired to store, a fresh chain-state tracker
// over it, a peer registry, an executor, and a verifier.
func New(store *blockchain.Store, peerSet *peers.Set, executor Executor, verifier Verifier, network work.Network, cfg Config) *Client {
	return &Client{
		state:             SyncState{Kind: Saturated},
		cfg:               cfg,
		network:           network,
		store:             store,
		chain:             chainstate.New(store),
		peerSet:           peerSet,
		executor:          executor,
		verifier:          verifier,
		verifyingBy:       make(map[common.Hash]string),
		verificationSpeed: newSpeedMeter(SpeedWindowBlocks),
		syncSpeed:         newSpeedMeter(SpeedWindowBlocks),
	}
}

// State reports the client's current synchronization state.
func (c *Client) State() SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnConnect sends GetHeaders with the current locator and marks the peer
// unuseful until headers arrive (spec.md §4.5).
func (c *Client) OnConnect(peerID string) {
	c.peerSet.Insert(peerID)
	c.peerSet.OnHeadersRequested(peerID)
	c.executor.RequestHeaders(peerID, c.BlockLocator())
}

// OnDisconnect cancels the peer's outstanding tasks, recycling their
// hashes back to Scheduled (spec.md §5).
func (c *Client) OnDisconnect(peerID string) {
	hashes := c.peerSet.Remove(peerID)
	c.chain.ReturnToScheduled(hashes)
	c.mu.Lock()
	for h, p := range c.verifyingBy {
		if p == peerID {
			delete(c.verifyingBy, h)
		}
	}
	c.mu.Unlock()
	c.ExecuteSynchronizationTasks()
}

// BlockLocator builds a geometric back-off locator from the store's
// current tip: 10 consecutive hashes, then a doubling step, always
// ending at genesis (spec.md §4.5).
func (c *Client) BlockLocator() []common.Hash {
	best := c.store.BestBlock()
	var locator []common.Hash
	step := uint32(1)
	height := best.Number
	count := 0
	for {
		hash, ok := c.store.BlockHash(height)
		if !ok {
			break
		}
		locator = append(locator, hash)
		if height == 0 {
			break
		}
		count++
		if count >= 10 {
			step *= 2
		}
		if step > height {
			height = 0
		} else {
			height -= step
		}
	}
	return locator
}

// OnHeaders validates and schedules a batch of newly announced headers
// (spec.md §4.5 on_headers).
func (c *Client) OnHeaders(peerID string, headers []*chain.IndexedBlockHeader) {
	c.peerSet.OnHeadersReceived(peerID)
	if len(headers) == 0 {
		return
	}

	first := headers[0]
	if !first.Raw.IsGenesis() && c.chain.BlockState(first.Raw.PreviousHeaderHash) == chainstate.Unknown {
		if disconnect := c.peerSet.Penalize(peerID); disconnect {
			c.executor.Disconnect(peerID, "unlinked headers")
		}
		return
	}

	var accepted []*chain.IndexedBlockHeader
	for _, h := range headers {
		state := c.chain.BlockState(h.Hash)
		if state != chainstate.Unknown {
			continue
		}
		if _, err := c.store.BlockOrigin(h); err != nil {
			if disconnect := c.peerSet.Penalize(peerID); disconnect {
				c.executor.Disconnect(peerID, "invalid header chain")
			}
			c.chain.MarkDeadEnd(h.Hash)
			break
		}
		accepted = append(accepted, h)
	}

	c.chain.ScheduleHeaders(accepted)
	c.updateState()
	c.ExecuteSynchronizationTasks()
}

// OnBlock processes a received block body (spec.md §4.5 on_block).
func (c *Client) OnBlock(peerID string, block *chain.IndexedBlock) {
	hash := block.Header.Hash
	c.peerSet.OnBlockReceived(peerID, hash)

	switch c.chain.BlockState(hash) {
	case chainstate.Verifying, chainstate.Stored:
		return
	case chainstate.DeadEnd:
		if c.cfg.CloseConnectionOnBadBlock {
			c.executor.Disconnect(peerID, "dead-end block resent")
		}
		return
	}

	parentHash := block.Header.Raw.PreviousHeaderHash
	parentState := c.chain.BlockState(parentHash)

	switch parentState {
	case chainstate.Unknown, chainstate.DeadEnd:
		if c.State().Kind == Synchronizing {
			c.chain.Orphans().RemoveSubtree(hash)
			c.chain.MarkDeadEnd(hash)
			return
		}
		c.chain.Orphans().Insert(block)
		return
	case chainstate.Verifying, chainstate.Stored:
		c.promoteAndVerify(peerID, block)
		descendants := c.chain.Orphans().Children(hash)
		for _, d := range descendants {
			if orphan, ok := c.chain.Orphans().Take(d); ok {
				c.promoteAndVerify(peerID, orphan)
			}
		}
	default: // Requested, Scheduled
		c.chain.Orphans().Insert(block)
	}
}

func (c *Client) promoteAndVerify(peerID string, block *chain.IndexedBlock) {
	hash := block.Header.Hash
	c.chain.PromoteToVerifying(hash, peerID)
	c.syncSpeed.Checkpoint()
	c.mu.Lock()
	c.verifyingBy[hash] = peerID
	c.mu.Unlock()

	origin, err := c.verifier.Verify(block.Header)
	if err != nil {
		c.onBlockVerificationError(hash, err)
		return
	}
	c.onBlockVerificationSuccess(block, origin)
}

// OnNotFound re-schedules any of the peer's outstanding requests named
// in inv (spec.md §4.5 on_notfound).
func (c *Client) OnNotFound(peerID string, hashes []common.Hash) {
	var reset []common.Hash
	for _, h := range hashes {
		if c.peerSet.HasRequested(peerID, h) {
			reset = append(reset, h)
		}
	}
	if len(reset) == 0 {
		return
	}
	c.peerSet.ResetBlocksTasks(peerID)
	c.chain.ReturnToScheduled(reset)
	if disconnect := c.peerSet.Penalize(peerID); c.State().Kind == Synchronizing || disconnect {
		c.executor.Disconnect(peerID, "notfound for requested blocks")
	}
	c.ExecuteSynchronizationTasks()
}

func (c *Client) onBlockVerificationSuccess(block *chain.IndexedBlock, origin chain.BlockOrigin) {
	c.verificationSpeed.Checkpoint()
	hash := block.Header.Hash
	c.chain.RemoveVerifying(hash)
	c.mu.Lock()
	delete(c.verifyingBy, hash)
	c.mu.Unlock()

	if err := c.store.Insert(block.Header); err != nil {
		rlog.Error("sync: insert failed", "hash", hash.String(), "err", err)
		return
	}

	switch origin.Kind {
	case chain.OriginCanonChain:
		if err := c.store.Canonize(hash); err != nil {
			rlog.Error("sync: canonize failed", "hash", hash.String(), "err", err)
			return
		}
		c.relay(hash, block.Header.Raw)
	case chain.OriginSideChainBecomingCanonChain:
		fork, err := c.store.Fork(origin)
		if err != nil {
			rlog.Error("sync: fork failed", "hash", hash.String(), "err", err)
			return
		}
		if err := c.store.SwitchToFork(fork); err != nil {
			rlog.Error("sync: switch_to_fork failed", "hash", hash.String(), "err", err)
			return
		}
		for _, h := range origin.CanonizedRoute {
			c.relay(h, nil)
		}
		c.relay(hash, block.Header.Raw)
	case chain.OriginSideChain:
		// Stored but not best; nothing to relay yet.
	}

	c.chain.Forget(hash)
	c.chain.PruneBestHeadersChain(hash)
	c.updateState()
	c.ExecuteSynchronizationTasks()
}

func (c *Client) onBlockVerificationError(hash common.Hash, err error) {
	c.mu.Lock()
	peerID, hadPeer := c.verifyingBy[hash]
	delete(c.verifyingBy, hash)
	c.mu.Unlock()

	if hadPeer && c.cfg.CloseConnectionOnBadBlock && verification.IsDeadEnd(err) {
		c.executor.Disconnect(peerID, "invalid block")
	}
	if hadPeer {
		c.peerSet.Penalize(peerID)
	}

	removed := c.chain.Orphans().RemoveSubtree(hash)
	c.chain.MarkDeadEnd(hash)
	for _, h := range removed {
		c.chain.MarkDeadEnd(h)
	}
	c.updateState()
	c.ExecuteSynchronizationTasks()
}

func (c *Client) relay(hash common.Hash, header *chain.BlockHeader) {
	if c.State().Kind == Synchronizing {
		return
	}
	for _, peerID := range c.peerSet.Enumerate() {
		switch c.peerSet.AnnouncementType(peerID) {
		case peers.AnnounceNone:
			continue
		default:
			filter := c.peerSet.Filter(peerID)
			if filter != nil && filter.IsKnown(hash, peers.KnownBlock) {
				continue
			}
			c.executor.AnnounceBlock(peerID, hash, header)
			if filter != nil {
				filter.Remember(hash, peers.KnownBlock)
			}
		}
	}
}

// updateState recomputes Saturated/NearlySaturated/Synchronizing from
// queue sizes (spec.md §4.5 state machine).
func (c *Client) updateState() {
	c.mu.Lock()
	defer c.mu.Unlock()

	scheduled := c.chain.ScheduledLen()
	requested := c.chain.RequestedLen()
	gap := scheduled + requested

	switch {
	case gap == 0:
		if c.state.Kind != Saturated {
			c.chain.ResetToSaturated()
		}
		c.state = SyncState{Kind: Saturated}
	case gap == 1:
		if c.state.Kind == Saturated {
			c.state = SyncState{Kind: NearlySaturated}
		}
	default:
		if c.state.Kind != Synchronizing {
			c.state = SyncState{Kind: Synchronizing, Since: time.Now(), BestKnownHeight: c.store.BestBlock().Number + uint32(gap)}
		} else {
			c.state.BestKnownHeight = c.store.BestBlock().Number + uint32(gap)
		}
	}
}

// ExecuteSynchronizationTasks runs one scheduling tick (spec.md §4.5):
// request headers from idle peers, consider duplicating stalled
// requests, and promote Scheduled hashes into Requested.
func (c *Client) ExecuteSynchronizationTasks() {
	idle := c.peerSet.Idle()
	if len(idle) == 0 {
		return
	}

	for _, peerID := range idle {
		if c.chain.ScheduledLen() < MaxScheduledHashes {
			c.executor.RequestHeaders(peerID, c.BlockLocator())
		}
	}

	c.maybeDuplicateRequests(idle)

	if c.chain.RequestedLen()+c.chain.VerifyingLen() >= MaxRequestedBlocks+MaxVerifyingBlocks {
		return
	}
	if c.chain.ScheduledLen() == 0 {
		return
	}

	fastest := append([]string(nil), idle...)
	sort.Slice(fastest, func(i, j int) bool {
		return c.peerSet.LastResponse(fastest[i]).After(c.peerSet.LastResponse(fastest[j]))
	})

	chunk := MaxBlocksInRequest
	perPeer := chunk / len(fastest)
	if perPeer < MinBlocksInRequest {
		perPeer = MinBlocksInRequest
	}
	for _, peerID := range fastest {
		hashes := c.chain.DequeueScheduled(peerID, perPeer)
		if len(hashes) == 0 {
			break
		}
		c.peerSet.OnBlocksRequested(peerID, hashes)
		c.executor.RequestBlocks(peerID, hashes)
	}
}

// maybeDuplicateRequests re-requests a bounded batch of still-Requested
// hashes from an idle peer when the verifying queue is projected to run
// dry before the requested queue finishes arriving — a single slow peer
// otherwise head-of-lines the whole sync while a sibling peer sits idle
// (spec.md §4.5 step 3, scenario S5).
//
// The projection mirrors the original's duplication heuristic: estimate
// seconds until Verifying empties out (from the verification-completion
// speed) and seconds until Requested finishes arriving (from the
// block-arrival speed), and duplicate only when the former is sooner and
// within NearEmptyQueueWindow.
func (c *Client) maybeDuplicateRequests(idle []string) {
	if time.Since(c.lastDuplication) < DuplicationInterval {
		return
	}
	requestedLen := c.chain.RequestedLen()
	if requestedLen == 0 || len(idle) == 0 {
		return
	}

	verifyingLen := c.chain.VerifyingLen()
	verificationSpeed := c.verificationSpeed.Speed()
	syncSpeed := c.syncSpeed.Speed()

	var verificationEmptyIn float64
	switch {
	case verifyingLen == 0:
		if c.verificationSpeed.Len() < NearEmptyQueueBlocks {
			verificationEmptyIn = 60 // synchronization has barely started
		} else {
			verificationEmptyIn = 0 // queue is empty and staying empty: urgent
		}
	case verificationSpeed < 0.01:
		verificationEmptyIn = 60
	default:
		verificationEmptyIn = float64(verifyingLen) / verificationSpeed
	}

	var requestedFullIn float64
	if syncSpeed < 0.01 {
		requestedFullIn = 60
	} else {
		requestedFullIn = float64(requestedLen) / syncSpeed
	}

	if requestedFullIn <= verificationEmptyIn || verificationEmptyIn >= NearEmptyQueueWindow.Seconds() {
		return
	}
	c.lastDuplication = time.Now()

	batch := int(syncSpeed * (requestedFullIn - verificationEmptyIn))
	if batch > MaxDuplicationBatch {
		batch = MaxDuplicationBatch
	}
	if batch > requestedLen {
		batch = requestedLen
	}
	if batch < MinDuplicationBatch {
		batch = MinDuplicationBatch
	}
	if batch > requestedLen {
		batch = requestedLen
	}

	hashes := c.chain.BestRequested(batch)
	if len(hashes) == 0 {
		return
	}
	c.executor.RequestBlocks(idle[0], hashes)
}
