package boolidx_test

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boolidx "github.com/rpcpool/boolidx"
	"github.com/rpcpool/boolidx/query"
	"github.com/rpcpool/boolidx/vocabulary"
)

func newScenarioAIndex(t *testing.T) *boolidx.Index[uint64] {
	t.Helper()
	idx := boolidx.NewInMemory[uint64](vocabulary.Uint64Codec{})
	docs := [][]uint64{
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		{0, 2, 4, 6, 8, 10, 12, 14, 16, 18},
		{5, 4, 3, 2, 1, 0},
	}
	_, err := idx.Build(context.Background(), slices.Values(docs))
	require.NoError(t, err)
	return idx
}

func collect(t *testing.T, idx *boolidx.Index[uint64], q query.Query[uint64]) []uint64 {
	t.Helper()
	res, err := idx.ExecuteQuery(context.Background(), q)
	require.NoError(t, err)
	got := res.Collect()
	if got == nil {
		return []uint64{}
	}
	return got
}

// TestScenarioAThreeDocuments is spec.md §8 Scenario A, checked literally
// against every listed query.
func TestScenarioAThreeDocuments(t *testing.T) {
	idx := newScenarioAIndex(t)

	cases := []struct {
		name string
		q    query.Query[uint64]
		want []uint64
	}{
		{"atom(7)", query.Atom[uint64](7), []uint64{0}},
		{"atom(5)", query.Atom[uint64](5), []uint64{0, 2}},
		{"atom(0)", query.Atom[uint64](0), []uint64{0, 1, 2}},
		{"atom(16)", query.Atom[uint64](16), []uint64{1}},
		{"and(atom(5),atom(0))", query.And(query.Atom[uint64](5), query.Atom[uint64](0)), []uint64{0, 2}},
		{"and(atom(3),atom(12))", query.And(query.Atom[uint64](3), query.Atom[uint64](12)), []uint64{}},
		{"and(atom(14),atom(12))", query.And(query.Atom[uint64](14), query.Atom[uint64](12)), []uint64{1}},
		{"or(atom(3),atom(12))", query.Or(query.Atom[uint64](3), query.Atom[uint64](12)), []uint64{0, 1, 2}},
		{"in_order(0,1)", query.InOrder(query.Slot[uint64]{Term: 0}, query.Slot[uint64]{Term: 1}), []uint64{0}},
		{"in_order(1,0)", query.InOrder(query.Slot[uint64]{Term: 1}, query.Slot[uint64]{Term: 0}), []uint64{2}},
		{"in_order(0,_,2)", query.InOrder(query.Slot[uint64]{Term: 0}, query.Slot[uint64]{Wildcard: true}, query.Slot[uint64]{Term: 2}), []uint64{0}},
		{
			"and(atom(2),atom(0)).not(atom(16))",
			query.And(query.Atom[uint64](2), query.Atom[uint64](0)).Not(query.Atom[uint64](16)),
			[]uint64{0, 2},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, collect(t, idx, tc.q))
		})
	}
}

// TestScenarioBPersistenceRoundTrip is spec.md §8 Scenario B: build, persist,
// close, reload, and re-run two of the original queries against the
// reloaded index.
func TestScenarioBPersistenceRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	idx, err := boolidx.Create[uint64](dir, vocabulary.Uint64Codec{})
	require.NoError(t, err)

	docs := [][]uint64{
		{0, 5, 10, 15, 20},
		{0, 7, 14, 21, 28},
		{0, 3, 6, 9, 12},
		{0, 2, 4, 6, 8, 10, 12, 14, 16, 18, 20},
	}
	_, err = idx.Build(context.Background(), slices.Values(docs))
	require.NoError(t, err)
	require.NoError(t, idx.Persist(context.Background(), dir))
	require.NoError(t, idx.Close())

	reloaded, err := boolidx.Load[uint64](dir, vocabulary.Uint64Codec{})
	require.NoError(t, err)
	defer reloaded.Close()

	got := collect(t, reloaded, query.InOrder(
		query.Slot[uint64]{Term: 0}, query.Slot[uint64]{Term: 7}, query.Slot[uint64]{Term: 14},
	))
	assert.Equal(t, []uint64{1}, got)

	got = collect(t, reloaded, query.And(
		query.Atom[uint64](0), query.Atom[uint64](6), query.Atom[uint64](12),
	))
	assert.Equal(t, []uint64{2, 3}, got)
}

// TestQueryLaws covers spec.md §8 invariant 5's algebraic laws.
func TestQueryLaws(t *testing.T) {
	idx := newScenarioAIndex(t)

	t.Run("and of one is identity", func(t *testing.T) {
		assert.Equal(t, collect(t, idx, query.Atom[uint64](5)), collect(t, idx, query.And(query.Atom[uint64](5))))
	})
	t.Run("or of one is identity", func(t *testing.T) {
		assert.Equal(t, collect(t, idx, query.Atom[uint64](5)), collect(t, idx, query.Or(query.Atom[uint64](5))))
	})
	t.Run("and with empty or is empty", func(t *testing.T) {
		assert.Empty(t, collect(t, idx, query.And(query.Atom[uint64](5), query.Or[uint64]())))
	})
	t.Run("or with empty is identity", func(t *testing.T) {
		assert.Equal(t, collect(t, idx, query.Atom[uint64](5)), collect(t, idx, query.Or(query.Atom[uint64](5), query.Or[uint64]())))
	})
	t.Run("and is commutative", func(t *testing.T) {
		a := collect(t, idx, query.And(query.Atom[uint64](0), query.Atom[uint64](5)))
		b := collect(t, idx, query.And(query.Atom[uint64](5), query.Atom[uint64](0)))
		assert.Equal(t, a, b)
	})
	t.Run("not of empty is identity", func(t *testing.T) {
		q := query.Atom[uint64](5).Not(query.Or[uint64]())
		assert.Equal(t, collect(t, idx, query.Atom[uint64](5)), collect(t, idx, q))
	})
	t.Run("not of self is empty", func(t *testing.T) {
		q := query.Atom[uint64](5).Not(query.Atom[uint64](5))
		assert.Empty(t, collect(t, idx, q))
	})
	t.Run("phrase of one atom is atom", func(t *testing.T) {
		assert.Equal(t, collect(t, idx, query.Atom[uint64](5)), collect(t, idx, query.InOrder(query.Slot[uint64]{Term: 5})))
	})
	t.Run("unknown term atom is empty", func(t *testing.T) {
		assert.Empty(t, collect(t, idx, query.Atom[uint64](999)))
	})
}

func TestStatsReportsCounts(t *testing.T) {
	idx := newScenarioAIndex(t)
	stats := idx.Stats()
	assert.Equal(t, uint64(3), stats.Docs)
	assert.Greater(t, stats.Terms, uint64(0))
}

func TestCreateRejectsEmptyPath(t *testing.T) {
	_, err := boolidx.Create[uint64]("", vocabulary.Uint64Codec{})
	var builderErr *boolidx.BuilderError
	require.ErrorAs(t, err, &builderErr)
	assert.Equal(t, boolidx.PersistPathNotSpecified, builderErr.Kind)
}

func TestLoadReportsMissingFiles(t *testing.T) {
	_, err := boolidx.Load[uint64](t.TempDir(), vocabulary.Uint64Codec{})
	var missing *boolidx.MissingFilesError
	assert.ErrorAs(t, err, &missing)
}

func TestPersistRejectsEmptyPath(t *testing.T) {
	idx := boolidx.NewInMemory[uint64](vocabulary.Uint64Codec{})
	err := idx.Persist(context.Background(), "")
	var builderErr *boolidx.BuilderError
	require.ErrorAs(t, err, &builderErr)
	assert.Equal(t, boolidx.PersistPathNotSpecified, builderErr.Kind)
}
