package query_test

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpcpool/boolidx/blockstore"
	"github.com/rpcpool/boolidx/build"
	"github.com/rpcpool/boolidx/chunked"
	"github.com/rpcpool/boolidx/query"
	"github.com/rpcpool/boolidx/vocabulary"
)

// newTestStorage builds a chunked.Storage directly through build.Run, the
// same path boolidx.Index.Build uses, so compile_test.go exercises the
// query algebra against a realistically populated posting store rather
// than hand-assembled fixtures.
func newTestStorage(t *testing.T, docs ...[]uint64) (*vocabulary.Vocabulary[uint64], *chunked.Storage) {
	t.Helper()
	vocab := vocabulary.New[uint64](0)
	storage := chunked.New(blockstore.NewMemStore())
	_, err := build.Run(context.Background(), vocab, storage, slices.Values(docs), build.Config{})
	require.NoError(t, err)
	return vocab, storage
}

func collectIterator(it query.Iterator) []uint64 {
	var out []uint64
	for {
		p, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, p.DocID)
	}
}

func TestCompileAtomUnknownTermIsEmpty(t *testing.T) {
	vocab, storage := newTestStorage(t, []uint64{1, 2}, []uint64{3})
	it, err := query.Compile(context.Background(), query.Atom[uint64](999), vocab, storage)
	require.NoError(t, err)
	assert.Empty(t, collectIterator(it))
}

func TestCompileAndOrIdentityAndEmpty(t *testing.T) {
	vocab, storage := newTestStorage(t, []uint64{1, 2}, []uint64{2, 3}, []uint64{1})

	andOne, err := query.Compile(context.Background(), query.And(query.Atom[uint64](1)), vocab, storage)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 2}, collectIterator(andOne))

	orEmpty, err := query.Compile(context.Background(), query.Or[uint64](), vocab, storage)
	require.NoError(t, err)
	assert.Empty(t, collectIterator(orEmpty))

	andWithEmptyOr, err := query.Compile(context.Background(), query.And(query.Atom[uint64](1), query.Or[uint64]()), vocab, storage)
	require.NoError(t, err)
	assert.Empty(t, collectIterator(andWithEmptyOr))
}

func TestCompileNotSelfIsEmpty(t *testing.T) {
	vocab, storage := newTestStorage(t, []uint64{1, 2}, []uint64{2})
	q := query.Atom[uint64](2).Not(query.Atom[uint64](2))
	it, err := query.Compile(context.Background(), q, vocab, storage)
	require.NoError(t, err)
	assert.Empty(t, collectIterator(it))
}

func TestCompiledIteratorNextSeekSkipsAhead(t *testing.T) {
	vocab, storage := newTestStorage(t, []uint64{5}, []uint64{5}, []uint64{5}, []uint64{5}, []uint64{5})
	it, err := query.Compile(context.Background(), query.Atom[uint64](5), vocab, storage)
	require.NoError(t, err)

	p, ok := it.NextSeek(2)
	require.True(t, ok)
	assert.Equal(t, uint64(2), p.DocID)

	p, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(3), p.DocID, "NextSeek must not consume postings past the target")
}

func TestCompilePhraseOfOneSlotIsAtom(t *testing.T) {
	vocab, storage := newTestStorage(t, []uint64{7, 8}, []uint64{8})
	atom, err := query.Compile(context.Background(), query.Atom[uint64](7), vocab, storage)
	require.NoError(t, err)
	phrase, err := query.Compile(context.Background(), query.InOrder(query.Slot[uint64]{Term: 7}), vocab, storage)
	require.NoError(t, err)
	assert.Equal(t, collectIterator(atom), collectIterator(phrase))
}
