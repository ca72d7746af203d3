// Package verification implements the two-phase block acceptance pipeline
// (spec.md §4.4): pre-verification is context-free (format, PoW, VDF,
// future-timestamp) and runs as soon as a block body arrives; contextual
// acceptance additionally needs chain state (parent, retarget, version
// floor, median time past) and runs just before the store is asked to
// insert/canonize the block.
//
// Grounded on verification/src/{accept_header,accept_block,accept_chain,
// canon}.rs (original_source) for the two-check split and the error
// taxonomy of spec.md §7, and on the teacher's core/state_processor.go
// for the Go shape of a verify-then-apply pipeline with a sentinel-error
// per failure kind.
package verification

import (
	"errors"
	"fmt"

	"github.com/rand-chain/go-randchain/common"
)

// Kind names a verification failure per the taxonomy of spec.md §7.
type Kind int

const (
	KindDuplicate Kind = iota
	KindPow
	KindVdf
	KindFuturisticTimestamp
	KindTimestamp
	KindDifficulty
	KindOldVersionBlock
	KindNonFinalBlock
	KindDatabase
	KindMalformed
	KindUnknownParent
)

func (k Kind) String() string {
	switch k {
	case KindDuplicate:
		return "duplicate"
	case KindPow:
		return "pow"
	case KindVdf:
		return "vdf"
	case KindFuturisticTimestamp:
		return "futuristic_timestamp"
	case KindTimestamp:
		return "timestamp"
	case KindDifficulty:
		return "difficulty"
	case KindOldVersionBlock:
		return "old_version_block"
	case KindNonFinalBlock:
		return "non_final_block"
	case KindDatabase:
		return "database"
	case KindMalformed:
		return "malformed"
	case KindUnknownParent:
		return "unknown_parent"
	default:
		return "unknown"
	}
}

// Error is a verification failure. Expected/Actual are only meaningful for
// KindDifficulty; callers switch on Kind, not on the error string.
type Error struct {
	Kind     Kind
	Expected common.Compact
	Actual   common.Compact
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindDifficulty:
		return fmt.Sprintf("verification: difficulty mismatch: expected %08x, got %08x", e.Expected, e.Actual)
	default:
		if e.Err != nil {
			return fmt.Sprintf("verification: %s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("verification: %s", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind) *Error { return &Error{Kind: kind} }

func wrapErr(kind Kind, err error) *Error { return &Error{Kind: kind, Err: err} }

// IsDeadEnd reports whether kind marks the offending hash as a permanent
// dead-end (spec.md §7 disposition column), as opposed to a transient or
// orphan-handling outcome.
func IsDeadEnd(err error) bool {
	var ve *Error
	if !errors.As(err, &ve) {
		return false
	}
	switch ve.Kind {
	case KindPow, KindVdf, KindTimestamp, KindDifficulty, KindOldVersionBlock, KindNonFinalBlock, KindMalformed:
		return true
	default:
		return false
	}
}
