package vbyte

import "io"

// Decoder wraps a byte stream, exposing both a streaming integer iterator
// (Next) and raw byte read/seek access (Read/Seek) so callers can mix
// encoded integers with opaque bytes in the same stream. A small
// look-ahead buffer is used to decode one integer at a time without
// requiring the underlying reader to support unbounded peeking; the
// buffer is discarded and refilled from the new position after any Seek.
type Decoder struct {
	r   io.ReadSeeker
	buf [MaxEncodedLen]byte
	n   int // valid bytes in buf
	pos int // read cursor within buf
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.ReadSeeker) *Decoder {
	return &Decoder{r: r}
}

// fill tops up the look-ahead buffer from the underlying reader, sliding
// any unconsumed bytes to the front first.
func (d *Decoder) fill() {
	if d.pos > 0 {
		copy(d.buf[:], d.buf[d.pos:d.n])
		d.n -= d.pos
		d.pos = 0
	}
	for d.n < len(d.buf) {
		m, err := d.r.Read(d.buf[d.n:])
		d.n += m
		if err != nil {
			return
		}
		if m == 0 {
			return
		}
	}
}

// Next decodes and returns the next integer in the stream. ok is false at
// end of stream, or if the remaining bytes are malformed (no terminator
// found within MaxEncodedLen bytes, or end-of-stream mid-number) — no
// partial value is ever emitted, and the cursor is left where the failed
// decode attempt started.
func (d *Decoder) Next() (value uint64, ok bool) {
	if d.n-d.pos < MaxEncodedLen {
		d.fill()
	}
	v, n, err := Decode(d.buf[d.pos:d.n])
	if err != nil {
		return 0, false
	}
	d.pos += n
	return v, true
}

// Read implements io.Reader over the same underlying stream, honoring any
// bytes still sitting in the look-ahead buffer.
func (d *Decoder) Read(p []byte) (int, error) {
	if d.pos < d.n {
		nCopied := copy(p, d.buf[d.pos:d.n])
		d.pos += nCopied
		return nCopied, nil
	}
	return d.r.Read(p)
}

// Seek implements io.Seeker, discarding and invalidating the look-ahead
// buffer so that subsequent reads/decodes resume from the new position.
func (d *Decoder) Seek(offset int64, whence int) (int64, error) {
	// Account for the unconsumed look-ahead bytes when seeking relative
	// to the current position, since the underlying reader's cursor is
	// already ahead of the logical decoder position by (n - pos) bytes.
	if whence == io.SeekCurrent {
		offset -= int64(d.n - d.pos)
	}
	abs, err := d.r.Seek(offset, whence)
	d.pos = 0
	d.n = 0
	return abs, err
}
