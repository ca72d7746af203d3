// Package blockchain implements the block chain store (spec.md §4.2): a
// durable, crash-safe mapping from header hash to block and from height
// to canonical hash, with atomic reorganization via an overlay-staged
// fork mechanism. Grounded on db/src/block_chain_db.rs (original_source)
// for the canonize/decanonize/fork algorithm, and on the teacher's
// core/rawdb accessor style for the column-keyed access shape.
package blockchain

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/rand-chain/go-randchain/chain"
	"github.com/rand-chain/go-randchain/common"
	"github.com/rand-chain/go-randchain/kv"
)

// MaxForkRoute bounds how far BlockOrigin classification walks back to
// find a common ancestor (spec.md §4.2 "MAX_FORK_ROUTE_PRESET = 2048").
const MaxForkRoute = 2048

var (
	ErrUnknownParent  = errors.New("blockchain: unknown parent")
	ErrCannotCanonize = errors.New("blockchain: parent is not current best")
	ErrNoBestBlock    = errors.New("blockchain: no best block to decanonize")
	ErrAncientFork    = errors.New("blockchain: common ancestor older than MaxForkRoute")
	ErrDuplicate      = errors.New("blockchain: block already stored")
)

// Store is the block chain DB: best-block tracking, canonize/decanonize,
// fork-origin classification, and overlay-based fork staging, all atop a
// kv.Database.
type Store struct {
	mu sync.RWMutex
	db kv.Database

	best      chain.BestBlock
	hasBest   bool
}

// Open loads (or initializes, if empty) a Store backed by db. If the
// store is empty and genesis is non-nil, genesis is inserted and
// canonized as block 0.
func Open(db kv.Database, genesis *chain.BlockHeader) (*Store, error) {
	s := &Store{db: db}
	if err := s.loadBest(); err != nil {
		return nil, err
	}
	if !s.hasBest && genesis != nil {
		ib := chain.NewIndexedBlockHeader(genesis)
		if !genesis.IsGenesis() {
			return nil, ErrUnknownParent
		}
		if err := s.insertHeader(s.db, ib); err != nil {
			return nil, err
		}
		if err := s.canonizeInto(s.db, ib.Hash, 0); err != nil {
			return nil, err
		}
		s.best = chain.BestBlock{Number: 0, Hash: ib.Hash}
		s.hasBest = true
	}
	return s, nil
}

func (s *Store) loadBest() error {
	numBytes, err := s.db.Get(kv.ColumnMeta, keyBestBlockNumber)
	if err == kv.ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	hashBytes, err := s.db.Get(kv.ColumnMeta, keyBestBlockHash)
	if err != nil {
		return err
	}
	s.best = chain.BestBlock{
		Number: binary.LittleEndian.Uint32(numBytes),
		Hash:   common.BytesToHash(hashBytes),
	}
	s.hasBest = true
	return nil
}

// BestBlock returns the store's current canonical tip.
func (s *Store) BestBlock() chain.BestBlock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.best
}

// BlockHash returns the canonical hash at height number, if indexed.
func (s *Store) BlockHash(number uint32) (common.Hash, bool) {
	return s.blockHashIn(s.db, number)
}

func (s *Store) blockHashIn(r kv.KeyValueReader, number uint32) (common.Hash, bool) {
	b, err := r.Get(kv.ColumnBlockHashes, numberKey(number))
	if err != nil {
		return common.Hash{}, false
	}
	return common.BytesToHash(b), true
}

// BlockNumber returns the height of hash, if the block is currently
// canonical. Only canonical blocks are indexed by height: Insert records
// no height, and decanonizing a block removes its entry.
func (s *Store) BlockNumber(hash common.Hash) (uint32, bool) {
	return s.blockNumberIn(s.db, hash)
}

func (s *Store) blockNumberIn(r kv.KeyValueReader, hash common.Hash) (uint32, bool) {
	b, err := r.Get(kv.ColumnBlockNumbers, hashKey(hash))
	if err != nil {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

// Header returns the stored header for hash, if present.
func (s *Store) Header(hash common.Hash) (*chain.BlockHeader, bool) {
	return s.headerIn(s.db, hash)
}

func (s *Store) headerIn(r kv.KeyValueReader, hash common.Hash) (*chain.BlockHeader, bool) {
	b, err := r.Get(kv.ColumnBlocks, hashKey(hash))
	if err != nil {
		return nil, false
	}
	h, err := chain.DeserializeBlockHeader(b)
	if err != nil {
		return nil, false
	}
	return h, true
}

// Contains reports whether hash is already stored (spec.md §3 KnownBlock).
func (s *Store) Contains(hash common.Hash) bool {
	_, ok := s.Header(hash)
	return ok
}

// Insert stores block if its parent is present (or it is genesis);
// idempotent on an already-stored hash. This does not canonize: callers
// decide canonization via BlockOrigin + Canonize/Fork.
func (s *Store) Insert(block *chain.IndexedBlockHeader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Contains(block.Hash) {
		return nil
	}
	if !block.Raw.IsGenesis() && !s.Contains(block.Raw.PreviousHeaderHash) {
		return ErrUnknownParent
	}
	return s.insertHeader(s.db, block)
}

func (s *Store) insertHeader(w kv.KeyValueWriter, block *chain.IndexedBlockHeader) error {
	return w.Put(kv.ColumnBlocks, hashKey(block.Hash), block.Raw.Serialize())
}

func writeBestBlock(w kv.KeyValueWriter, best chain.BestBlock) error {
	var nb [4]byte
	binary.LittleEndian.PutUint32(nb[:], best.Number)
	if err := w.Put(kv.ColumnMeta, keyBestBlockNumber, nb[:]); err != nil {
		return err
	}
	return w.Put(kv.ColumnMeta, keyBestBlockHash, best.Hash.Bytes())
}

func (s *Store) canonizeInto(w kv.Database, hash common.Hash, number uint32) error {
	var nb [4]byte
	binary.LittleEndian.PutUint32(nb[:], number)
	if err := w.Put(kv.ColumnBlockHashes, numberKey(number), hash.Bytes()); err != nil {
		return err
	}
	if err := w.Put(kv.ColumnBlockNumbers, hashKey(hash), nb[:]); err != nil {
		return err
	}
	return writeBestBlock(w, chain.BestBlock{Number: number, Hash: hash})
}

// Canonize asserts block's parent is current best, then extends the
// canonical chain to include it (spec.md §4.2).
func (s *Store) Canonize(hash common.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	header, ok := s.Header(hash)
	if !ok {
		return ErrUnknownParent
	}
	if !header.IsGenesis() {
		if !s.hasBest || header.PreviousHeaderHash != s.best.Hash {
			return ErrCannotCanonize
		}
	} else if s.hasBest {
		return ErrCannotCanonize
	}
	number := uint32(0)
	if !header.IsGenesis() {
		number = s.best.Number + 1
	}
	if err := s.canonizeInto(s.db, hash, number); err != nil {
		return err
	}
	s.best = chain.BestBlock{Number: number, Hash: hash}
	s.hasBest = true
	return nil
}

// Decanonize reverses Canonize on the current best block, returning the
// decanonized hash.
func (s *Store) Decanonize() (common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasBest {
		return common.Hash{}, ErrNoBestBlock
	}
	decanonized := s.best.Hash
	header, _ := s.Header(decanonized)

	if err := s.db.Delete(kv.ColumnBlockHashes, numberKey(s.best.Number)); err != nil {
		return common.Hash{}, err
	}
	if err := s.db.Delete(kv.ColumnBlockNumbers, hashKey(decanonized)); err != nil {
		return common.Hash{}, err
	}

	if s.best.Number == 0 || header == nil {
		if err := s.db.Delete(kv.ColumnMeta, keyBestBlockNumber); err != nil {
			return common.Hash{}, err
		}
		if err := s.db.Delete(kv.ColumnMeta, keyBestBlockHash); err != nil {
			return common.Hash{}, err
		}
		s.hasBest = false
		s.best = chain.BestBlock{}
		return decanonized, nil
	}

	newBest := chain.BestBlock{Number: s.best.Number - 1, Hash: header.PreviousHeaderHash}
	if err := writeBestBlock(s.db, newBest); err != nil {
		return common.Hash{}, err
	}
	s.best = newBest
	return decanonized, nil
}
