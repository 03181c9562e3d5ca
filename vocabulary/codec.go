// Package vocabulary implements the term -> TermId map (spec.md §3, §4.7):
// TermIds are dense, monotonically increasing, and assigned in the order
// terms are first observed by the indexing pipeline's producer.
package vocabulary

import (
	"encoding/binary"
	"fmt"
)

// Term is any orderable, hashable value the index can assign a TermId to.
// Equality is Go's built-in == on T, matching spec.md §3's "TermId is
// identity" requirement.
type Term interface {
	comparable
}

// Codec converts a Term to and from its byte encoding for vocabulary.bin
// (spec.md §6). Decode reports how many bytes of b it consumed.
type Codec[T Term] interface {
	Encode(t T) []byte
	Decode(b []byte) (t T, n int, err error)
}

// Uint64Codec encodes uint64 terms as 8 big-endian bytes.
type Uint64Codec struct{}

func (Uint64Codec) Encode(t uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], t)
	return b[:]
}

func (Uint64Codec) Decode(b []byte) (uint64, int, error) {
	if len(b) < 8 {
		return 0, 0, fmt.Errorf("vocabulary: short uint64 term (%d bytes)", len(b))
	}
	return binary.BigEndian.Uint64(b[:8]), 8, nil
}

// IntCodec encodes int terms the same way as Uint64Codec, biased by
// math.MinInt64 so that encoded order matches numeric order.
type IntCodec struct{}

func (IntCodec) Encode(t int) []byte {
	return Uint64Codec{}.Encode(uint64(int64(t)) ^ (1 << 63))
}

func (IntCodec) Decode(b []byte) (int, int, error) {
	u, n, err := Uint64Codec{}.Decode(b)
	if err != nil {
		return 0, 0, err
	}
	return int(int64(u ^ (1 << 63))), n, nil
}

// StringCodec encodes string terms as their raw UTF-8 bytes. Decode
// consumes all of b, since vocabulary.bin frames each term with an
// explicit length prefix (spec.md §6) rather than relying on the codec to
// self-delimit.
type StringCodec struct{}

func (StringCodec) Encode(t string) []byte {
	return []byte(t)
}

func (StringCodec) Decode(b []byte) (string, int, error) {
	return string(b), len(b), nil
}
