package blockstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/rpcpool/boolidx/chunk"
	"github.com/rpcpool/boolidx/vbyte"
)

const (
	entriesFileName = "entries.bin"
	dataFileName    = "data.bin"
)

type fileEntry struct {
	offset uint64
	length uint64
}

// FileStore is the on-disk BlockStore variant: one append-only data file
// holding sealed chunks as raw, uncompressed bytes, and one entries file of
// variable-byte (Δid, length) records describing each chunk's position in
// the data file (spec.md §4.2/§6: "one data file, chunks concatenated,
// uncompressed bytes" — a reader that doesn't know the writer's codec must
// still be able to read data.bin back). Grounded on gsfa/manifest.Manifest's
// header-then-append-only-tuples layout; unlike gsfa/linkedlog, which
// zstd-compresses its posting payloads before they hit disk, this format
// keeps data.bin itself uncompressed; repeat-read cost for hot chunks is
// addressed instead by an optional in-memory LRU in front of the store
// (see chunkcache.go), not by a codec in the file format.
type FileStore struct {
	mu          sync.RWMutex
	entriesFile *os.File
	dataFile    *os.File
	entries     []fileEntry
	dataSize    uint64
}

// OpenFileStore opens or creates a FileStore rooted at dir.
func OpenFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blockstore: mkdir %s: %w", dir, err)
	}
	entriesFile, err := os.OpenFile(filepath.Join(dir, entriesFileName), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("blockstore: open entries file: %w", err)
	}
	dataFile, err := os.OpenFile(filepath.Join(dir, dataFileName), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		entriesFile.Close()
		return nil, fmt.Errorf("blockstore: open data file: %w", err)
	}
	fs := &FileStore{
		entriesFile: entriesFile,
		dataFile:    dataFile,
	}
	if err := fs.load(); err != nil {
		entriesFile.Close()
		dataFile.Close()
		return nil, err
	}
	return fs, nil
}

// load reconstructs the in-memory (offset, length) table from the entries
// file and verifies it against the data file size, per spec.md §4.2.
func (fs *FileStore) load() error {
	raw, err := os.ReadFile(fs.entriesFile.Name())
	if err != nil {
		return fmt.Errorf("blockstore: read entries file: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}
	if len(raw) < 8 {
		return &CorruptDataError{Reason: "entries file shorter than checksum footer"}
	}
	body, footer := raw[:len(raw)-8], raw[len(raw)-8:]
	wantSum := beUint64(footer)
	gotSum := xxhash.Sum64(body)
	if wantSum != gotSum {
		return &CorruptDataError{Reason: "entries file checksum mismatch"}
	}

	var entries []fileEntry
	var offset uint64
	var lastID uint64
	first := true
	for len(body) > 0 {
		delta, n, err := vbyte.Decode(body)
		if err != nil {
			return &CorruptDataError{Reason: "malformed entry delta-id"}
		}
		body = body[n:]
		length, n, err := vbyte.Decode(body)
		if err != nil {
			return &CorruptDataError{Reason: "malformed entry length"}
		}
		body = body[n:]

		var id uint64
		if first {
			id = delta
			first = false
		} else {
			id = lastID + delta
		}
		lastID = id
		if id != uint64(len(entries)) {
			return &CorruptDataError{Reason: "entries file ids not contiguous from zero"}
		}
		entries = append(entries, fileEntry{offset: offset, length: length})
		offset += length
	}

	fi, err := fs.dataFile.Stat()
	if err != nil {
		return fmt.Errorf("blockstore: stat data file: %w", err)
	}
	if uint64(fi.Size()) != offset {
		return &CorruptDataError{Reason: fmt.Sprintf("data file size %d does not match sum of entry lengths %d", fi.Size(), offset)}
	}

	fs.entries = entries
	fs.dataSize = offset
	return nil
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

func (fs *FileStore) Get(id uint64) (chunk.SealedChunk, error) {
	fs.mu.RLock()
	if id >= uint64(len(fs.entries)) {
		fs.mu.RUnlock()
		return chunk.SealedChunk{}, ErrKeyNotFound
	}
	e := fs.entries[id]
	fs.mu.RUnlock()

	raw := make([]byte, e.length)
	if _, err := fs.dataFile.ReadAt(raw, int64(e.offset)); err != nil {
		return chunk.SealedChunk{}, fmt.Errorf("blockstore: read chunk %d: %w", id, err)
	}
	if len(raw) != 2+chunk.Size {
		return chunk.SealedChunk{}, &CorruptDataError{Reason: fmt.Sprintf("chunk %d record is %d bytes, want %d", id, len(raw), 2+chunk.Size)}
	}
	var sc chunk.SealedChunk
	sc.Capacity = uint16(raw[0])<<8 | uint16(raw[1])
	copy(sc.Data[:], raw[2:])
	return sc, nil
}

func (fs *FileStore) Store(id uint64, c chunk.SealedChunk) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if id != uint64(len(fs.entries)) {
		return ErrOutOfOrder
	}

	raw := make([]byte, 2+chunk.Size)
	raw[0] = byte(c.Capacity >> 8)
	raw[1] = byte(c.Capacity)
	copy(raw[2:], c.Data[:])

	if _, err := fs.dataFile.WriteAt(raw, int64(fs.dataSize)); err != nil {
		return fmt.Errorf("blockstore: write chunk %d: %w", id, err)
	}

	fs.entries = append(fs.entries, fileEntry{offset: fs.dataSize, length: uint64(len(raw))})
	fs.dataSize += uint64(len(raw))
	return fs.rewriteEntriesLocked()
}

// rewriteEntriesLocked re-serializes the whole entries file. Chunk counts
// are small relative to chunk payloads (one entry per sealed chunk, not
// per posting), so a full rewrite on each Store keeps the format's
// on-disk invariant (checksum covers the whole file) simple and correct
// without a separate WAL.
func (fs *FileStore) rewriteEntriesLocked() error {
	var body []byte
	var lastID uint64
	for i, e := range fs.entries {
		id := uint64(i)
		var delta uint64
		if i == 0 {
			delta = id
		} else {
			delta = id - lastID
		}
		lastID = id
		body = vbyte.Encode(body, delta)
		body = vbyte.Encode(body, e.length)
	}
	sum := xxhash.Sum64(body)
	body = append(body, putBEUint64(sum)...)

	if err := fs.entriesFile.Truncate(0); err != nil {
		return fmt.Errorf("blockstore: truncate entries file: %w", err)
	}
	if _, err := fs.entriesFile.WriteAt(body, 0); err != nil {
		return fmt.Errorf("blockstore: write entries file: %w", err)
	}
	return nil
}

func (fs *FileStore) Len() uint64 {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return uint64(len(fs.entries))
}

func (fs *FileStore) Flush() error {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if err := fs.entriesFile.Sync(); err != nil {
		return fmt.Errorf("blockstore: sync entries file: %w", err)
	}
	if err := fs.dataFile.Sync(); err != nil {
		return fmt.Errorf("blockstore: sync data file: %w", err)
	}
	return nil
}

func (fs *FileStore) Close() error {
	err1 := fs.entriesFile.Close()
	err2 := fs.dataFile.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

var _ BlockStore = (*FileStore)(nil)
