package posting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpcpool/boolidx/blockstore"
	"github.com/rpcpool/boolidx/chunked"
	"github.com/rpcpool/boolidx/posting"
	"github.com/rpcpool/boolidx/vbyte"
)

func encodePosting(lastDocID, docID uint64, positions []uint32) []byte {
	var buf []byte
	buf = vbyte.Encode(buf, docID-lastDocID)
	buf = vbyte.Encode(buf, uint64(len(positions)))
	var lastPos uint32
	for _, pos := range positions {
		buf = vbyte.Encode(buf, uint64(pos-lastPos))
		lastPos = pos
	}
	return buf
}

// TestDecoderYieldsPostingsInWriteOrder is spec.md §8 invariant 2: after
// appending a listing to a fresh chunk chain, sequentially decoding
// reproduces it in input order with delta encoding reversed correctly.
func TestDecoderYieldsPostingsInWriteOrder(t *testing.T) {
	s := chunked.New(blockstore.NewMemStore())
	ref := s.MutRef(0)

	want := []posting.Posting{
		{DocID: 2, Positions: []uint32{0, 3}},
		{DocID: 5, Positions: []uint32{1}},
		{DocID: 9, Positions: []uint32{0, 1, 2}},
	}
	last := uint64(0)
	for _, p := range want {
		require.NoError(t, ref.WritePosting(encodePosting(last, p.DocID, p.Positions)))
		s.SetLastDocID(0, p.DocID)
		last = p.DocID
	}

	chunkRef, err := s.NewRef(0)
	require.NoError(t, err)
	dec := posting.NewDecoder(&chunkRef)

	for _, wantP := range want {
		gotP, ok := dec.Next()
		require.True(t, ok)
		assert.Equal(t, wantP.DocID, gotP.DocID)
		assert.Equal(t, wantP.Positions, gotP.Positions)
	}
	_, ok := dec.Next()
	assert.False(t, ok)
}

// TestDecoderNextSeek is spec.md §8 invariant 7: next_seek(t) yields the
// smallest posting with DocID >= t, equivalent to discarding via Next.
func TestDecoderNextSeek(t *testing.T) {
	s := chunked.New(blockstore.NewMemStore())
	ref := s.MutRef(0)

	docs := []uint64{1, 4, 7, 10}
	last := uint64(0)
	for _, d := range docs {
		require.NoError(t, ref.WritePosting(encodePosting(last, d, []uint32{0})))
		s.SetLastDocID(0, d)
		last = d
	}

	chunkRef, err := s.NewRef(0)
	require.NoError(t, err)
	dec := posting.NewDecoder(&chunkRef)

	p, ok := dec.NextSeek(5)
	require.True(t, ok)
	assert.Equal(t, uint64(7), p.DocID)

	p, ok = dec.NextSeek(7)
	require.True(t, ok)
	assert.Equal(t, uint64(10), p.DocID, "a second seek must continue from where the first left off")

	_, ok = dec.NextSeek(11)
	assert.False(t, ok)
}
