package blockstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpcpool/boolidx/blockstore"
	"github.com/rpcpool/boolidx/chunk"
)

func sealedChunkWith(b byte) chunk.SealedChunk {
	var sc chunk.SealedChunk
	sc.Capacity = 17
	for i := range sc.Data {
		sc.Data[i] = b
	}
	return sc
}

func TestFileStoreStoreGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs, err := blockstore.OpenFileStore(dir)
	require.NoError(t, err)
	defer fs.Close()

	require.NoError(t, fs.Store(0, sealedChunkWith(0xAA)))
	require.NoError(t, fs.Store(1, sealedChunkWith(0xBB)))

	got0, err := fs.Get(0)
	require.NoError(t, err)
	assert.Equal(t, sealedChunkWith(0xAA), got0)

	got1, err := fs.Get(1)
	require.NoError(t, err)
	assert.Equal(t, sealedChunkWith(0xBB), got1)
	assert.Equal(t, uint64(2), fs.Len())
}

func TestFileStoreRejectsOutOfOrderStore(t *testing.T) {
	dir := t.TempDir()
	fs, err := blockstore.OpenFileStore(dir)
	require.NoError(t, err)
	defer fs.Close()

	assert.ErrorIs(t, fs.Store(1, sealedChunkWith(0x01)), blockstore.ErrOutOfOrder)
}

func TestFileStoreGetUnknownKey(t *testing.T) {
	dir := t.TempDir()
	fs, err := blockstore.OpenFileStore(dir)
	require.NoError(t, err)
	defer fs.Close()

	_, err = fs.Get(0)
	assert.ErrorIs(t, err, blockstore.ErrKeyNotFound)
}

// TestDataFileIsUncompressedRawBytes pins spec.md §4.2/§6's on-disk format:
// data.bin holds sealed chunks concatenated as raw bytes, not compressed,
// so a reader that doesn't know the writer's codec can still read it back.
func TestDataFileIsUncompressedRawBytes(t *testing.T) {
	dir := t.TempDir()
	fs, err := blockstore.OpenFileStore(dir)
	require.NoError(t, err)
	sc := sealedChunkWith(0xCD)
	require.NoError(t, fs.Store(0, sc))
	require.NoError(t, fs.Flush())
	require.NoError(t, fs.Close())

	raw, err := os.ReadFile(filepath.Join(dir, "data.bin"))
	require.NoError(t, err)
	require.Len(t, raw, 2+chunk.Size)
	assert.Equal(t, byte(sc.Capacity>>8), raw[0])
	assert.Equal(t, byte(sc.Capacity), raw[1])
	assert.Equal(t, sc.Data[:], raw[2:])
}

func TestFileStoreReopenPreservesEntries(t *testing.T) {
	dir := t.TempDir()
	fs, err := blockstore.OpenFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, fs.Store(0, sealedChunkWith(0x11)))
	require.NoError(t, fs.Store(1, sealedChunkWith(0x22)))
	require.NoError(t, fs.Flush())
	require.NoError(t, fs.Close())

	fs2, err := blockstore.OpenFileStore(dir)
	require.NoError(t, err)
	defer fs2.Close()

	assert.Equal(t, uint64(2), fs2.Len())
	got, err := fs2.Get(1)
	require.NoError(t, err)
	assert.Equal(t, sealedChunkWith(0x22), got)
}

func TestFileStoreDetectsCorruptEntriesChecksum(t *testing.T) {
	dir := t.TempDir()
	fs, err := blockstore.OpenFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, fs.Store(0, sealedChunkWith(0x01)))
	require.NoError(t, fs.Close())

	path := filepath.Join(dir, "entries.bin")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[0] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	_, err = blockstore.OpenFileStore(dir)
	var corrupt *blockstore.CorruptDataError
	assert.ErrorAs(t, err, &corrupt)
}
