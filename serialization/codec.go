// Package serialization implements the node's fixed little-endian wire
// codec: fixed-width integers, H256/Compact, and length-prefixed variable
// data using a compact-size (Bitcoin "VarInt") length prefix. Every type
// here obeys the round-trip law deserialize(serialize(x)) == x.
package serialization

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"math/big"

	"github.com/btcsuite/btcd/wire"

	"github.com/rand-chain/go-randchain/common"
)

// ErrTruncated is returned when a deserialization ran past the available
// bytes; the caller should treat this as a malformed-message condition.
var ErrTruncated = errors.New("serialization: truncated input")

// ErrOverflow is returned when a value (e.g. SPoW iterations) would not
// round-trip through a narrower legacy wire field.
var ErrOverflow = errors.New("serialization: value overflows wire field")

// Writer accumulates a little-endian encoded byte stream.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteHash(h common.Hash) {
	w.buf.Write(h[:])
}

func (w *Writer) WriteCompact(c common.Compact) {
	w.WriteU32(uint32(c))
}

// WriteVarBytes writes a compact-size length prefix followed by raw bytes,
// matching Bitcoin's VarInt-prefixed variable data encoding.
func (w *Writer) WriteVarBytes(b []byte) error {
	return wire.WriteVarBytes(&w.buf, 0, b)
}

// WriteBigInt writes a big-endian magnitude of n, length-prefixed.
func (w *Writer) WriteBigInt(n *big.Int) error {
	return w.WriteVarBytes(n.Bytes())
}

// WriteBigIntList writes a compact-size count followed by each element's
// length-prefixed big-endian magnitude (the SPoW Wesolowski proof
// sequence).
func (w *Writer) WriteBigIntList(xs []*big.Int) error {
	if err := wire.WriteVarInt(&w.buf, 0, uint64(len(xs))); err != nil {
		return err
	}
	for _, x := range xs {
		if err := w.WriteBigInt(x); err != nil {
			return err
		}
	}
	return nil
}

// WriteIterationsLegacyU32 writes a u64 iteration count, failing if it would not
// round-trip through the legacy u32 wire field some original modules used
// (see spec.md §9 Open Questions).
func (w *Writer) WriteIterationsLegacyU32(v uint64) error {
	if v > math.MaxUint32 {
		return ErrOverflow
	}
	w.WriteU32(uint32(v))
	return nil
}

// Reader consumes a little-endian encoded byte stream.
type Reader struct {
	r   *bytes.Reader
	err error
}

func NewReader(b []byte) *Reader { return &Reader{r: bytes.NewReader(b)} }

// Err returns the first error encountered by any Read* call, if any.
func (r *Reader) Err() error { return r.err }

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) ReadU32() uint32 {
	if r.err != nil {
		return 0
	}
	var b [4]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		r.fail(ErrTruncated)
		return 0
	}
	return binary.LittleEndian.Uint32(b[:])
}

func (r *Reader) ReadU64() uint64 {
	if r.err != nil {
		return 0
	}
	var b [8]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		r.fail(ErrTruncated)
		return 0
	}
	return binary.LittleEndian.Uint64(b[:])
}

func (r *Reader) ReadHash() common.Hash {
	if r.err != nil {
		return common.Hash{}
	}
	var b [common.HashLength]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		r.fail(ErrTruncated)
		return common.Hash{}
	}
	return common.Hash(b)
}

func (r *Reader) ReadCompact() common.Compact {
	return common.Compact(r.ReadU32())
}

// ReadVarBytes reads a compact-size-prefixed byte string.
func (r *Reader) ReadVarBytes() []byte {
	if r.err != nil {
		return nil
	}
	b, err := wire.ReadVarBytes(r.r, 0, math.MaxUint32, "varbytes")
	if err != nil {
		r.fail(ErrTruncated)
		return nil
	}
	return b
}

// ReadBigInt reads a length-prefixed big-endian magnitude.
func (r *Reader) ReadBigInt() *big.Int {
	b := r.ReadVarBytes()
	if r.err != nil {
		return nil
	}
	return new(big.Int).SetBytes(b)
}

// ReadBigIntList reads a compact-size count followed by that many
// length-prefixed big-endian magnitudes.
func (r *Reader) ReadBigIntList() []*big.Int {
	if r.err != nil {
		return nil
	}
	n, err := wire.ReadVarInt(r.r, 0)
	if err != nil {
		r.fail(ErrTruncated)
		return nil
	}
	out := make([]*big.Int, 0, n)
	for i := uint64(0); i < n; i++ {
		out = append(out, r.ReadBigInt())
		if r.err != nil {
			return nil
		}
	}
	return out
}

// ReadIterationsLegacyU32 reads a u64 iteration count stored in a legacy
// u32 wire field.
func (r *Reader) ReadIterationsLegacyU32() uint64 {
	return uint64(r.ReadU32())
}

// Remaining reports whether any unconsumed bytes remain; callers use this
// to enforce "deserializes exactly" (spec.md §4.4 pre-verification).
func (r *Reader) Remaining() int {
	return r.r.Len()
}
