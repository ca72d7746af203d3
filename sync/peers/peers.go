// Package peers implements the sync core's per-peer bookkeeping (spec.md
// §4.5, §4.6): task accounting (which blocks a peer has outstanding,
// whether it has been useful, its penalty count) and connection-level
// filters/announcement policy. Grounded on
// sync/src/synchronization_peers.rs (original_source) for the
// responsibilities split, and on the teacher's tos/peerset.go for the
// Go shape: a single RWMutex-guarded map keyed by peer identity.
package peers

import (
	"sync"
	"time"

	"github.com/rand-chain/go-randchain/common"
)

// BlockAnnouncementType mirrors spec.md §4.6: "Announcement type per
// peer determines Inv vs Headers vs silent."
type BlockAnnouncementType int

const (
	AnnounceInventory BlockAnnouncementType = iota
	AnnounceHeaders
	AnnounceNone
)

// MaxPenalty disconnects a peer once its penalty counter reaches this
// value (spec.md §7: "crossing the threshold disconnects the peer").
const MaxPenalty = 5

// peer is one connected peer's sync-relevant state.
type peer struct {
	id      string
	useful  bool
	penalty int

	requestedBlocks map[common.Hash]struct{}
	lastResponse    time.Time

	announcement BlockAnnouncementType
	filter       *KnownHashFilter
}

// Set is the registry of connected peers.
type Set struct {
	mu    sync.RWMutex
	peers map[string]*peer
}

// NewSet builds an empty peer registry.
func NewSet() *Set {
	return &Set{peers: make(map[string]*peer)}
}

// Insert registers a newly connected peer.
func (s *Set) Insert(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.peers[id]; ok {
		return
	}
	s.peers[id] = &peer{
		id:              id,
		requestedBlocks: make(map[common.Hash]struct{}),
		announcement:    AnnounceInventory,
		filter:          NewKnownHashFilter(),
	}
}

// Remove unregisters a disconnected peer, returning any block hashes it
// had outstanding so the caller can recycle them via forced re-requests
// (spec.md §5: "Disconnect of a peer cancels all its outstanding tasks;
// their hashes are recycled through forced re-requests").
func (s *Set) Remove(id string) []common.Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.peers[id]
	if !ok {
		return nil
	}
	delete(s.peers, id)
	hashes := make([]common.Hash, 0, len(p.requestedBlocks))
	for h := range p.requestedBlocks {
		hashes = append(hashes, h)
	}
	return hashes
}

// Enumerate returns all currently connected peer ids.
func (s *Set) Enumerate() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.peers))
	for id := range s.peers {
		ids = append(ids, id)
	}
	return ids
}

// Idle returns the ids of peers with no outstanding block requests.
func (s *Set) Idle() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, p := range s.peers {
		if len(p.requestedBlocks) == 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsUseful reports whether a peer has supplied anything valid so far.
func (s *Set) IsUseful(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.peers[id]
	return ok && p.useful
}

// OnHeadersRequested marks the peer unuseful until headers arrive
// (spec.md §4.5 on_connect: "mark peer unuseful until headers arrive").
func (s *Set) OnHeadersRequested(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.peers[id]; ok {
		p.useful = false
	}
}

// OnHeadersReceived marks the peer useful, since it has answered a
// headers request.
func (s *Set) OnHeadersReceived(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.peers[id]; ok {
		p.useful = true
		p.lastResponse = time.Now()
	}
}

// OnBlocksRequested records that hashes are now outstanding against the
// peer.
func (s *Set) OnBlocksRequested(id string, hashes []common.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.peers[id]
	if !ok {
		return
	}
	for _, h := range hashes {
		p.requestedBlocks[h] = struct{}{}
	}
}

// OnBlockReceived clears hash from the peer's outstanding set and marks
// it useful.
func (s *Set) OnBlockReceived(id string, hash common.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.peers[id]
	if !ok {
		return
	}
	delete(p.requestedBlocks, hash)
	p.useful = true
	p.lastResponse = time.Now()
}

// ResetBlocksTasks clears every outstanding block request for the peer
// and returns the hashes to re-request elsewhere (spec.md §4.5
// "reset_blocks_tasks(peer) → hashes to re-request").
func (s *Set) ResetBlocksTasks(id string) []common.Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.peers[id]
	if !ok {
		return nil
	}
	hashes := make([]common.Hash, 0, len(p.requestedBlocks))
	for h := range p.requestedBlocks {
		hashes = append(hashes, h)
	}
	p.requestedBlocks = make(map[common.Hash]struct{})
	return hashes
}

// Penalize increments the peer's penalty counter and reports whether it
// has reached MaxPenalty and should be disconnected.
func (s *Set) Penalize(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.peers[id]
	if !ok {
		return false
	}
	p.penalty++
	return p.penalty >= MaxPenalty
}

// SetAnnouncementType sets how block announcements are delivered to id.
func (s *Set) SetAnnouncementType(id string, t BlockAnnouncementType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.peers[id]; ok {
		p.announcement = t
	}
}

// AnnouncementType reports how block announcements should be delivered
// to id, or AnnounceNone if the peer is unknown.
func (s *Set) AnnouncementType(id string) BlockAnnouncementType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.peers[id]
	if !ok {
		return AnnounceNone
	}
	return p.announcement
}

// Filter returns id's known-hash filter, or nil if the peer is unknown.
func (s *Set) Filter(id string) *KnownHashFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.peers[id]
	if !ok {
		return nil
	}
	return p.filter
}

// LastResponse reports when id last answered a headers or block request,
// the zero time if it never has. Used as a recent-throughput proxy to
// prioritize faster peers for block-request chunking (spec.md §4.5 step
// 4: "promote ... fastest peers first").
func (s *Set) LastResponse(id string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.peers[id]
	if !ok {
		return time.Time{}
	}
	return p.lastResponse
}

// OutstandingBlocks reports how many blocks id currently has requested.
func (s *Set) OutstandingBlocks(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.peers[id]
	if !ok {
		return 0
	}
	return len(p.requestedBlocks)
}

// HasRequested reports whether id was asked for hash.
func (s *Set) HasRequested(id string, hash common.Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.peers[id]
	return ok && func() bool { _, has := p.requestedBlocks[hash]; return has }()
}
