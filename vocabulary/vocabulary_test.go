package vocabulary_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpcpool/boolidx/vocabulary"
)

func TestIDOfAssignsDenseMonotonicIds(t *testing.T) {
	v := vocabulary.New[string](0)
	a := v.IDOf("apple")
	b := v.IDOf("banana")
	aAgain := v.IDOf("apple")

	assert.Equal(t, uint64(0), a)
	assert.Equal(t, uint64(1), b)
	assert.Equal(t, a, aAgain, "re-observing a term must return its original id")
	assert.Equal(t, uint64(2), v.Len())
	assert.Equal(t, "apple", v.TermAt(0))
}

func TestLookupDoesNotAssign(t *testing.T) {
	v := vocabulary.New[string](0)
	v.IDOf("seen")

	_, ok := v.Lookup("unseen")
	assert.False(t, ok, "Lookup must not assign a TermId to an unseen term")
	assert.Equal(t, uint64(1), v.Len())

	id, ok := v.Lookup("seen")
	require.True(t, ok)
	assert.Equal(t, uint64(0), id)
}

func TestPersistLoadRoundTripUint64(t *testing.T) {
	v := vocabulary.New[uint64](0)
	v.IDOf(100)
	v.IDOf(7)
	v.IDOf(9999)

	dir := t.TempDir()
	require.NoError(t, vocabulary.Persist(dir, v, vocabulary.Uint64Codec{}))

	loaded, err := vocabulary.Load[uint64](dir, vocabulary.Uint64Codec{}, 0)
	require.NoError(t, err)
	assert.Equal(t, v.Len(), loaded.Len())
	for id := uint64(0); id < v.Len(); id++ {
		assert.Equal(t, v.TermAt(id), loaded.TermAt(id))
	}
}

func TestPersistLoadRoundTripString(t *testing.T) {
	v := vocabulary.New[string](0)
	v.IDOf("hello")
	v.IDOf("world")

	dir := t.TempDir()
	require.NoError(t, vocabulary.Persist(dir, v, vocabulary.StringCodec{}))

	loaded, err := vocabulary.Load[string](dir, vocabulary.StringCodec{}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, []string{loaded.TermAt(0), loaded.TermAt(1)})
}

// TestLoadDetectsCorruptChecksum covers spec.md §7's corruption-detection
// intent for vocabulary.bin: a bit-flipped file must fail Load rather than
// silently decode into a wrong vocabulary.
func TestLoadDetectsCorruptChecksum(t *testing.T) {
	v := vocabulary.New[uint64](0)
	v.IDOf(1)
	v.IDOf(2)

	dir := t.TempDir()
	require.NoError(t, vocabulary.Persist(dir, v, vocabulary.Uint64Codec{}))

	path := dir + "/vocabulary.bin"
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[0] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	_, err = vocabulary.Load[uint64](dir, vocabulary.Uint64Codec{}, 0)
	var corrupt *vocabulary.CorruptDataError
	assert.ErrorAs(t, err, &corrupt)
}

func TestLoadRejectsTooShortFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/vocabulary.bin", []byte{1, 2, 3}, 0o644))

	_, err := vocabulary.Load[uint64](dir, vocabulary.Uint64Codec{}, 0)
	var corrupt *vocabulary.CorruptDataError
	assert.ErrorAs(t, err, &corrupt)
}
