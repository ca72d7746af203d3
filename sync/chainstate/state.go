// Package chainstate holds the sync core's in-memory hash queues: the
// scheduled/requested/verifying pipeline a header moves through on its
// way to storage, the best-headers chain tracking accepted headers ahead
// of the store's tip, and the orphan pool for blocks whose parent is not
// yet known (spec.md §3, §4.5).
//
// Grounded on sync/src/synchronization_chain.rs (original_source) for the
// queue-transition rules, and on the teacher's tos/peerset.go for the Go
// shape of a mutex-guarded registry with ordered + set-membership views.
package chainstate

import (
	"sync"

	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/common"
)

// BlockState is a hash's position in the sync pipeline (spec.md §4.5:
// "chain.block_state(hash) answers in O(1)").
type BlockState int

const (
	Unknown BlockState = iota
	Scheduled
	Requested
	Verifying
	Stored
	DeadEnd
)

func (s BlockState) String() string {
	switch s {
	case Scheduled:
		return "scheduled"
	case Requested:
		return "requested"
	case Verifying:
		return "verifying"
	case Stored:
		return "stored"
	case DeadEnd:
		return "dead_end"
	default:
		return "unknown"
	}
}

// Store is the subset of *blockchain.Store the chain state needs to
// answer block_state queries and resolve parents.
type Store interface {
	Contains(hash common.Hash) bool
	Header(hash common.Hash) (*chain.BlockHeader, bool)
}

// Chain owns the scheduled/requested/verifying queues, the best-headers
// chain, the dead-end set, and the orphan pool. All mutations happen
// under a single coarse lock, matching the sync core's single-threaded
// event-loop model (spec.md §5).
type Chain struct {
	mu sync.Mutex

	store Store

	scheduledOrder []common.Hash
	scheduledSet   map[common.Hash]struct{}

	requested      map[common.Hash]string // hash -> owning peer id
	requestedOrder []common.Hash          // Requested hashes, oldest first
	verifying      map[common.Hash]string // hash -> owning peer id

	deadEnd map[common.Hash]struct{}

	headers   map[common.Hash]*chain.BlockHeader
	bestChain []common.Hash // headers accepted beyond the store's tip, oldest first

	orphans *OrphanPool
}

// New builds an empty Chain backed by store.
func New(store Store) *Chain {
	return &Chain{
		store:        store,
		scheduledSet: make(map[common.Hash]struct{}),
		requested:    make(map[common.Hash]string),
		verifying:    make(map[common.Hash]string),
		deadEnd:      make(map[common.Hash]struct{}),
		headers:      make(map[common.Hash]*chain.BlockHeader),
		orphans:      NewOrphanPool(),
	}
}

// BlockState answers a hash's pipeline position in O(1) (spec.md §4.5).
func (c *Chain) BlockState(hash common.Hash) BlockState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blockStateLocked(hash)
}

func (c *Chain) blockStateLocked(hash common.Hash) BlockState {
	if c.store.Contains(hash) {
		return Stored
	}
	if _, ok := c.deadEnd[hash]; ok {
		return DeadEnd
	}
	if _, ok := c.verifying[hash]; ok {
		return Verifying
	}
	if _, ok := c.requested[hash]; ok {
		return Requested
	}
	if _, ok := c.scheduledSet[hash]; ok {
		return Scheduled
	}
	return Unknown
}

// Header returns a header known to the chain state — stored, scheduled,
// requested, or verifying — falling back to the backing store.
func (c *Chain) Header(hash common.Hash) (*chain.BlockHeader, bool) {
	c.mu.Lock()
	if h, ok := c.headers[hash]; ok {
		c.mu.Unlock()
		return h, true
	}
	c.mu.Unlock()
	return c.store.Header(hash)
}

// ScheduleHeaders appends newly accepted headers to Scheduled and to the
// best-headers chain (spec.md §4.5 on_headers: "Append accepted headers
// to scheduled and to the best-headers chain").
func (c *Chain) ScheduleHeaders(headers []*chain.IndexedBlockHeader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, h := range headers {
		if _, ok := c.scheduledSet[h.Hash]; ok {
			continue
		}
		if c.blockStateLocked(h.Hash) != Unknown {
			continue
		}
		c.scheduledSet[h.Hash] = struct{}{}
		c.scheduledOrder = append(c.scheduledOrder, h.Hash)
		c.headers[h.Hash] = h.Raw
		c.bestChain = append(c.bestChain, h.Hash)
	}
}

// DequeueScheduled removes up to n hashes from the front of Scheduled and
// marks them Requested under peerID, returning the dequeued hashes.
func (c *Chain) DequeueScheduled(peerID string, n int) []common.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > len(c.scheduledOrder) {
		n = len(c.scheduledOrder)
	}
	out := append([]common.Hash(nil), c.scheduledOrder[:n]...)
	c.scheduledOrder = c.scheduledOrder[n:]
	for _, h := range out {
		delete(c.scheduledSet, h)
		c.requested[h] = peerID
		c.requestedOrder = append(c.requestedOrder, h)
	}
	return out
}

// BestRequested returns up to n of the oldest still-Requested hashes
// without changing their state, for duplicating stalled requests to an
// idle peer (spec.md §4.5 step 3).
func (c *Chain) BestRequested(n int) []common.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > len(c.requestedOrder) {
		n = len(c.requestedOrder)
	}
	return append([]common.Hash(nil), c.requestedOrder[:n]...)
}

// ScheduledLen reports the current size of the Scheduled queue.
func (c *Chain) ScheduledLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.scheduledOrder)
}

// RequestedLen reports the current size of the Requested queue.
func (c *Chain) RequestedLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requested)
}

// VerifyingLen reports the current size of the Verifying queue.
func (c *Chain) VerifyingLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.verifying)
}

// PromoteToVerifying moves hash from Requested to Verifying, recording
// the peer that supplied it.
func (c *Chain) PromoteToVerifying(hash common.Hash, peerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.requested, hash)
	c.removeFromRequestedOrderLocked(hash)
	c.verifying[hash] = peerID
}

func (c *Chain) removeFromRequestedOrderLocked(hash common.Hash) {
	for i, h := range c.requestedOrder {
		if h == hash {
			c.requestedOrder = append(c.requestedOrder[:i], c.requestedOrder[i+1:]...)
			break
		}
	}
}

// RemoveVerifying removes hash from Verifying (spec.md §4.5
// on_block_verification_success step 1: "header stays with chain until
// insert succeeds").
func (c *Chain) RemoveVerifying(hash common.Hash) (peerID string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	peerID, ok = c.verifying[hash]
	delete(c.verifying, hash)
	return peerID, ok
}

// MarkDeadEnd marks hash (and forgets it from every queue) as a
// permanent dead end.
func (c *Chain) MarkDeadEnd(hash common.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forgetLocked(hash)
	c.deadEnd[hash] = struct{}{}
}

// Forget removes hash from every queue without marking it dead-end (used
// when a block is fully inserted and no longer needs tracking outside
// the store).
func (c *Chain) Forget(hash common.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forgetLocked(hash)
}

func (c *Chain) forgetLocked(hash common.Hash) {
	delete(c.scheduledSet, hash)
	for i, h := range c.scheduledOrder {
		if h == hash {
			c.scheduledOrder = append(c.scheduledOrder[:i], c.scheduledOrder[i+1:]...)
			break
		}
	}
	delete(c.requested, hash)
	c.removeFromRequestedOrderLocked(hash)
	delete(c.verifying, hash)
	delete(c.headers, hash)
}

// ReturnToScheduled moves hashes (previously Requested) back to the
// front of Scheduled — used by reset_blocks_tasks (spec.md §4.5).
func (c *Chain) ReturnToScheduled(hashes []common.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, h := range hashes {
		if _, wasRequested := c.requested[h]; !wasRequested {
			continue
		}
		delete(c.requested, h)
		c.removeFromRequestedOrderLocked(h)
		if _, already := c.scheduledSet[h]; already {
			continue
		}
		c.scheduledSet[h] = struct{}{}
		c.scheduledOrder = append([]common.Hash{h}, c.scheduledOrder...)
	}
}

// ResetToSaturated clears Scheduled and Requested and forgets
// sync-orphans, per the → Saturated transition of spec.md §4.5.
func (c *Chain) ResetToSaturated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduledOrder = nil
	c.scheduledSet = make(map[common.Hash]struct{})
	c.requested = make(map[common.Hash]string)
	c.requestedOrder = nil
	c.orphans.Clear()
}

// Orphans exposes the orphan pool.
func (c *Chain) Orphans() *OrphanPool { return c.orphans }

// BestHeadersChain returns the accepted-but-not-yet-stored header hashes,
// oldest first.
func (c *Chain) BestHeadersChain() []common.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]common.Hash(nil), c.bestChain...)
}

// PruneBestHeadersChain drops hash from the best-headers chain once it
// has been durably stored.
func (c *Chain) PruneBestHeadersChain(hash common.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, h := range c.bestChain {
		if h == hash {
			c.bestChain = append(c.bestChain[:i], c.bestChain[i+1:]...)
			return
		}
	}
}
