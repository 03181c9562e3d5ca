package vocabulary

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/rpcpool/boolidx/vbyte"
)

const fileName = "vocabulary.bin"

// CorruptDataError reports an on-disk consistency failure detected while
// loading vocabulary.bin.
type CorruptDataError struct {
	Reason string
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("vocabulary: corrupt data: %s", e.Reason)
}

// Persist writes the vocabulary to vocabulary.bin inside dir: for each
// TermId in order, a variable-byte term_byte_length followed by that many
// raw bytes of the term's encoding, followed by an 8-byte big-endian
// xxhash64 checksum of everything before it (spec.md §6/§7) — the same
// checksum-footer shape blockstore.FileStore uses for entries.bin, so a
// truncated or bit-flipped vocabulary.bin is caught at Load rather than
// silently decoded into a wrong vocabulary.
func Persist[T Term](dir string, v *Vocabulary[T], codec Codec[T]) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("vocabulary: mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, fileName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("vocabulary: create %s: %w", fileName, err)
	}
	defer f.Close()

	h := xxhash.New()
	w := io.MultiWriter(f, h)
	for id := uint64(0); id < v.Len(); id++ {
		encoded := codec.Encode(v.TermAt(id))
		var header []byte
		header = vbyte.Encode(header, uint64(len(encoded)))
		if _, err := w.Write(header); err != nil {
			return fmt.Errorf("vocabulary: write term %d length: %w", id, err)
		}
		if _, err := w.Write(encoded); err != nil {
			return fmt.Errorf("vocabulary: write term %d bytes: %w", id, err)
		}
	}
	if _, err := f.Write(putBEUint64(h.Sum64())); err != nil {
		return fmt.Errorf("vocabulary: write checksum footer: %w", err)
	}
	return f.Sync()
}

// Load reads a vocabulary previously written by Persist. sizeHint sizes
// the backing hash map, same as New.
func Load[T Term](dir string, codec Codec[T], sizeHint int) (*Vocabulary[T], error) {
	raw, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		return nil, fmt.Errorf("vocabulary: open %s: %w", fileName, err)
	}
	if len(raw) < 8 {
		return nil, &CorruptDataError{Reason: "vocabulary file shorter than checksum footer"}
	}
	body, footer := raw[:len(raw)-8], raw[len(raw)-8:]
	if want, got := beUint64(footer), xxhash.Sum64(body); want != got {
		return nil, &CorruptDataError{Reason: "vocabulary file checksum mismatch"}
	}

	v := New[T](sizeHint)
	dec := vbyte.NewDecoder(bytes.NewReader(body))
	for {
		length, ok := dec.Next()
		if !ok {
			break
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(dec, buf); err != nil {
			return nil, fmt.Errorf("vocabulary: read term bytes: %w", err)
		}
		term, n, err := codec.Decode(buf)
		if err != nil {
			return nil, fmt.Errorf("vocabulary: decode term: %w", err)
		}
		if n != len(buf) {
			return nil, fmt.Errorf("vocabulary: codec consumed %d of %d bytes", n, len(buf))
		}
		id := v.IDOf(term)
		if id != v.Len()-1 {
			return nil, fmt.Errorf("vocabulary: duplicate or out-of-order term at id %d", id)
		}
	}
	return v, nil
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func putBEUint64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}
