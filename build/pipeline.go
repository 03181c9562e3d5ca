// Package build implements the concurrent indexing pipeline of spec.md
// §4.4: a producer (the caller's goroutine) assigns TermIds and shards
// documents, a pool of sorter workers stable-sort and group each shard by
// term, and a single inverter goroutine writes delta-encoded postings
// into chunked storage.
package build

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/schollz/progressbar/v3"
	concurrently "github.com/tejzpr/ordered-concurrently/v3"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/rpcpool/boolidx/chunked"
	"github.com/rpcpool/boolidx/metrics"
	"github.com/rpcpool/boolidx/vbyte"
	"github.com/rpcpool/boolidx/vocabulary"
)

const (
	// DefaultSorterCount is K from spec.md §4.4 (K + 2 threads total).
	DefaultSorterCount = 4
	// DefaultShardSize is how many documents the producer buffers before
	// shipping a shard to a sorter.
	DefaultShardSize = 256

	sorterChanCap   = 4
	inverterChanCap = 64
)

// Config tunes the pipeline's concurrency, independent of spec.md's
// fixed K=4/256-doc defaults.
type Config struct {
	SorterCount int
	ShardSize   int
	Progress    *progressbar.ProgressBar
	IndexName   string
}

func (c Config) sorterCount() int {
	if c.SorterCount > 0 {
		return c.SorterCount
	}
	return DefaultSorterCount
}

func (c Config) shardSize() int {
	if c.ShardSize > 0 {
		return c.ShardSize
	}
	return DefaultShardSize
}

// sortWork is one shard submitted to the sorter pool. concurrently.Process
// runs these concurrently across PoolSize workers but replays their
// results on its output channel in submission order, which is exactly the
// ordering guarantee spec.md §4.4 step 2 needs between the producer and
// the single inverter goroutine — so the pool itself does the ordering
// instead of a hand-rolled counter and busy-wait.
type sortWork struct {
	s shard
}

func (w sortWork) Run(ctx context.Context) interface{} {
	return groupShard(w.s)
}

// Run drains docs into storage, assigning TermIds via vocab as new terms
// are observed. It returns the total number of documents consumed.
func Run[T vocabulary.Term](ctx context.Context, vocab *vocabulary.Vocabulary[T], storage *chunked.Storage, docs iter.Seq[[]T], cfg Config) (uint64, error) {
	g, ctx := errgroup.WithContext(ctx)

	workIn := make(chan concurrently.WorkFunction, sorterChanCap*cfg.sorterCount())
	workOut := concurrently.Process(ctx, workIn, &concurrently.Options{
		PoolSize:         cfg.sorterCount(),
		OutChannelBuffer: inverterChanCap,
	})

	g.Go(func() error {
		return withPanicRecovery(func() error { return invert(storage, workOut) })
	})

	var docCount uint64
	g.Go(func() error {
		defer close(workIn)
		n, err := withPanicRecoveryCount(func() (uint64, error) {
			return produce(ctx, vocab, docs, workIn, cfg)
		})
		docCount = n
		return err
	})

	if err := g.Wait(); err != nil {
		if cfg.IndexName != "" {
			metrics.IndexingErrors.WithLabelValues(cfg.IndexName, errorKind(err)).Inc()
		}
		return 0, err
	}
	if cfg.IndexName != "" {
		metrics.DocsIndexed.WithLabelValues(cfg.IndexName).Add(float64(docCount))
		metrics.TermsObserved.WithLabelValues(cfg.IndexName).Set(float64(vocab.Len()))
	}
	return docCount, nil
}

func errorKind(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind.String()
	}
	return "Unknown"
}

func withPanicRecoveryCount(fn func() (uint64, error)) (n uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(ThreadPanic, fmt.Errorf("%v", r))
		}
	}()
	return fn()
}

// produce is the single-goroutine producer: it walks docs in order,
// assigns TermIds, and submits fixed-size shards to the sorter pool as
// concurrently.WorkFunction values.
func produce[T vocabulary.Term](ctx context.Context, vocab *vocabulary.Vocabulary[T], docs iter.Seq[[]T], workIn chan<- concurrently.WorkFunction, cfg Config) (uint64, error) {
	var (
		docID      uint64
		chunkCount uint64
		buf        []triple
		pending    bool
	)

	ship := func() error {
		if !pending {
			return nil
		}
		s := shard{chunkCount: chunkCount, triples: buf}
		select {
		case workIn <- sortWork{s: s}:
		case <-ctx.Done():
			return ctx.Err()
		}
		chunkCount++
		buf = nil
		pending = false
		return nil
	}

	docsInBuf := 0
	for doc := range docs {
		for pos, term := range doc {
			termID := vocab.IDOf(term)
			buf = append(buf, triple{termID: termID, docID: docID, position: uint32(pos)})
			pending = true
		}
		docID++
		docsInBuf++
		if cfg.Progress != nil {
			cfg.Progress.Add(1)
		}
		if docsInBuf == cfg.shardSize() {
			if err := ship(); err != nil {
				return 0, newError(ChannelSendError, err)
			}
			docsInBuf = 0
		}
	}
	if err := ship(); err != nil {
		return 0, newError(ChannelSendError, err)
	}
	return docID, nil
}

// invert is the single inverter goroutine: for each ordered sorter
// result, for each term group in it, it writes delta-encoded postings
// into the term's chunk chain (spec.md §4.4 step 3).
func invert(storage *chunked.Storage, out <-chan concurrently.OrderedOutput) error {
	var shardsSeen uint64
	for res := range out {
		switch v := res.Value.(type) {
		case groupedShard:
			for _, grp := range v.groups {
				if err := writeTermPostings(storage, grp); err != nil {
					return newError(Io, err)
				}
			}
			shardsSeen++
		case error:
			return newError(Io, v)
		default:
			return newError(Io, fmt.Errorf("unexpected sorter result type %T", res.Value))
		}
	}
	klog.V(4).Infof("build: inverted %d shards", shardsSeen)
	return nil
}

func writeTermPostings(storage *chunked.Storage, grp termGroup) error {
	storage.EnsureChunk(grp.termID)
	ref := storage.MutRef(grp.termID)
	lastDocID := storage.LastDocID(grp.termID)

	for _, p := range grp.postings {
		encoded := encodePosting(lastDocID, p)
		if err := ref.WritePosting(encoded); err != nil {
			return fmt.Errorf("write posting for term %d doc %d: %w", grp.termID, p.docID, err)
		}
		lastDocID = p.docID
		storage.SetLastDocID(grp.termID, lastDocID)
		storage.IncrementPostingCount(grp.termID)
	}
	return nil
}

// encodePosting serializes (Δdoc, n_positions, Δpositions...) per
// spec.md §3/§6.
func encodePosting(lastDocID uint64, p postingDraft) []byte {
	var buf []byte
	buf = vbyte.Encode(buf, p.docID-lastDocID)
	buf = vbyte.Encode(buf, uint64(len(p.positions)))
	var lastPos uint32
	for _, pos := range p.positions {
		buf = vbyte.Encode(buf, uint64(pos-lastPos))
		lastPos = pos
	}
	return buf
}
