package boolidx

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"

	"github.com/rpcpool/boolidx/blockstore"
	"github.com/rpcpool/boolidx/build"
	"github.com/rpcpool/boolidx/chunk"
	"github.com/rpcpool/boolidx/chunked"
	"github.com/rpcpool/boolidx/metrics"
	"github.com/rpcpool/boolidx/query"
	"github.com/rpcpool/boolidx/telemetry"
	"github.com/rpcpool/boolidx/vocabulary"
)

// Index is a boolean inverted index over documents of term type T: a
// vocabulary assigning dense TermIds, a chunked posting store keyed by
// TermId, and an archive of sealed chunks (spec.md §4.7).
type Index[T vocabulary.Term] struct {
	vocab   *vocabulary.Vocabulary[T]
	storage *chunked.Storage
	archive blockstore.BlockStore
	codec   vocabulary.Codec[T]
	cfg     config

	docCount uint64
	stopSync chan struct{}
}

// Stats summarizes an index's current size.
type Stats struct {
	Terms        uint64
	Docs         uint64
	SealedChunks uint64
}

// NewInMemory returns an empty index backed entirely by memory, with no
// Persist/Load capability for its archive (blockstore.MemStore).
func NewInMemory[T vocabulary.Term](codec vocabulary.Codec[T], opts ...Option) *Index[T] {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	archive := blockstore.NewMemStore()
	idx := &Index[T]{
		vocab:   vocabulary.New[T](0),
		storage: chunked.New(archive),
		archive: archive,
		codec:   codec,
		cfg:     cfg,
	}
	idx.startSync()
	return idx
}

// Create returns an empty index whose archive is an on-disk
// blockstore.FileStore rooted at dir, ready for Build then Persist.
func Create[T vocabulary.Term](dir string, codec vocabulary.Codec[T], opts ...Option) (*Index[T], error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if dir == "" {
		return nil, &BuilderError{Kind: PersistPathNotSpecified}
	}
	if fi, err := os.Stat(dir); err == nil && !fi.IsDir() {
		return nil, &BuilderError{Kind: PersistPathIsFile}
	}
	fileStore, err := blockstore.OpenFileStore(dir)
	if err != nil {
		return nil, fmt.Errorf("boolidx: open archive: %w", err)
	}
	archive := newCachedStore(fileStore, cfg.chunkCacheSize)
	idx := &Index[T]{
		vocab:   vocabulary.New[T](0),
		storage: chunked.New(archive),
		archive: archive,
		codec:   codec,
		cfg:     cfg,
	}
	idx.startSync()
	return idx, nil
}

// Load reopens a persisted index from dir, cross-checking that the
// vocabulary's term count agrees with hot_chunks.bin's term count and
// that every sealed chunk id a hot chunk lists exists in the archive
// (spec.md §4.7). Any mismatch, or any missing expected file, is
// returned as CorruptData/MissingFiles rather than a generic error.
func Load[T vocabulary.Term](dir string, codec vocabulary.Codec[T], opts ...Option) (*Index[T], error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	var storage *chunked.Storage
	var archive blockstore.BlockStore
	var fileStore *blockstore.FileStore
	var vocab *vocabulary.Vocabulary[T]

	_, err := telemetry.TraceLoad(context.Background(), dir, func() (uint64, error) {
		if err := checkLayoutFiles(dir); err != nil {
			return 0, err
		}

		var err error
		vocab, err = vocabulary.Load[T](dir, codec, 0)
		if err != nil {
			return 0, fmt.Errorf("boolidx: load vocabulary: %w", err)
		}

		fileStore, err = blockstore.OpenFileStore(dir)
		if err != nil {
			return 0, fmt.Errorf("boolidx: open archive: %w", err)
		}
		archive = newCachedStore(fileStore, cfg.chunkCacheSize)

		storage, err = chunked.Load(dir, archive, vocab.Len())
		if err != nil {
			_ = fileStore.Close()
			return 0, multierr.Append(&CorruptDataError{Reason: "vocabulary/hot-chunks term count mismatch"}, err)
		}
		for termID := uint64(0); termID < storage.NumTerms(); termID++ {
			hc, _ := storage.GetCurrent(termID)
			for _, id := range hc.Sealed {
				if id >= archive.Len() {
					_ = fileStore.Close()
					return 0, &CorruptDataError{Reason: fmt.Sprintf("term %d references sealed chunk %d beyond archive length %d", termID, id, archive.Len())}
				}
			}
		}
		return vocab.Len(), nil
	})
	if err != nil {
		return nil, err
	}

	idx := &Index[T]{vocab: vocab, storage: storage, archive: archive, codec: codec, cfg: cfg}
	idx.startSync()
	klog.Infof("boolidx: loaded index from %s (%d terms, %d sealed chunks)", dir, vocab.Len(), storage.Archive().Len())
	return idx, nil
}

func checkLayoutFiles(dir string) error {
	want := []string{"vocabulary.bin", "hot_chunks.bin", "entries.bin", "data.bin"}
	var missing []string
	for _, f := range want {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &MissingFilesError{Paths: missing}
	}
	return nil
}

// Build indexes docs into the index's storage, assigning TermIds to
// previously unseen terms as it goes (spec.md §4.4).
func (idx *Index[T]) Build(ctx context.Context, docs iter.Seq[[]T]) (uint64, error) {
	start := time.Now()
	n, err := telemetry.TraceBuild(ctx, func() (uint64, error) {
		cfg := build.Config{
			SorterCount: idx.cfg.sorterCount,
			ShardSize:   idx.cfg.shardSize,
			IndexName:   idx.cfg.indexName,
		}
		if idx.cfg.progress {
			cfg.Progress = newProgressBar(0)
		}
		return build.Run(ctx, idx.vocab, idx.storage, docs, cfg)
	})
	if err != nil {
		return 0, err
	}
	idx.docCount += n
	if idx.cfg.indexName != "" {
		metrics.BuildDurationHistogram.WithLabelValues(idx.cfg.indexName).Observe(time.Since(start).Seconds())
	}
	klog.Infof("boolidx: indexed %d documents in %s", n, time.Since(start))
	return n, nil
}

// DocIDs is the result of ExecuteQuery: a lazy, doc-ordered iterator of
// matching DocIds, with postings' position lists discarded (spec.md §4.7
// "returns an iterator of DocIds (unwrapped from Postings)").
type DocIDs struct {
	it query.Iterator
}

// Next returns the next matching DocId in increasing order, or
// ok=false when exhausted.
func (d *DocIDs) Next() (uint64, bool) {
	p, ok := d.it.Next()
	if !ok {
		return 0, false
	}
	return p.DocID, true
}

// NextSeek returns the smallest matching DocId >= target, or ok=false.
func (d *DocIDs) NextSeek(target uint64) (uint64, bool) {
	p, ok := d.it.NextSeek(target)
	if !ok {
		return 0, false
	}
	return p.DocID, true
}

// Collect drains d into a slice, for tests and small result sets.
func (d *DocIDs) Collect() []uint64 {
	var out []uint64
	for {
		id, ok := d.Next()
		if !ok {
			return out
		}
		out = append(out, id)
	}
}

// ExecuteQuery compiles q against the index and returns its matching
// DocIds in increasing order (spec.md §4.7).
func (idx *Index[T]) ExecuteQuery(ctx context.Context, q query.Query[T]) (*DocIDs, error) {
	ctx, span := telemetry.TraceQuery(ctx, q.Kind())
	defer span.End()

	it, err := query.Compile(ctx, q, idx.vocab, idx.storage)
	if err != nil {
		telemetry.RecordError(span, err, "compile failed")
		return nil, err
	}
	if idx.cfg.indexName != "" {
		metrics.QueryNodesEvaluated.WithLabelValues(idx.cfg.indexName, q.Kind()).Inc()
	}
	return &DocIDs{it: it}, nil
}

// Persist writes the vocabulary, chunked storage, and (if SyncOnFlush)
// flushes the archive to dir (spec.md §4.7/§6).
func (idx *Index[T]) Persist(ctx context.Context, dir string) error {
	if dir == "" {
		return &BuilderError{Kind: PersistPathNotSpecified}
	}
	if fi, err := os.Stat(dir); err == nil && !fi.IsDir() {
		return &BuilderError{Kind: PersistPathIsFile}
	}
	start := time.Now()

	err := telemetry.TracePersist(ctx, dir, func() error {
		// vocabulary.bin and hot_chunks.bin are staged in a temp directory
		// and renamed into place once both are fully written, so a crash
		// mid-persist never leaves a half-written file at its real path —
		// the same write-to-temp-then-rename shape as the teacher's index
		// writer staging (gsfa/indexes.Writer's tmpDir).
		tmpDir := filepath.Join(dir, ".boolidx-tmp-"+uuid.NewString())
		if err := vocabulary.Persist(tmpDir, idx.vocab, idx.codec); err != nil {
			return fmt.Errorf("boolidx: persist vocabulary: %w", err)
		}
		if err := idx.storage.Persist(tmpDir); err != nil {
			return fmt.Errorf("boolidx: persist chunked storage: %w", err)
		}
		defer os.RemoveAll(tmpDir)
		for _, f := range []string{"vocabulary.bin", "hot_chunks.bin"} {
			if err := os.Rename(filepath.Join(tmpDir, f), filepath.Join(dir, f)); err != nil {
				return fmt.Errorf("boolidx: stage %s into place: %w", f, err)
			}
		}
		if idx.cfg.syncOnFlush {
			if err := idx.archive.Flush(); err != nil {
				return fmt.Errorf("boolidx: flush archive: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	klog.Infof("boolidx: persisted %d terms to %s (%s) in %s", idx.vocab.Len(), dir, humanize.Bytes(idx.storage.Archive().Len()*chunk.Size), time.Since(start))
	return nil
}

// Stats reports the index's current term/document/sealed-chunk counts
// (spec.md §C item 3).
func (idx *Index[T]) Stats() Stats {
	return Stats{
		Terms:        idx.vocab.Len(),
		Docs:         idx.docCount,
		SealedChunks: idx.archive.Len(),
	}
}

// Close stops any background sync goroutine and releases the archive's
// underlying resources.
func (idx *Index[T]) Close() error {
	if idx.stopSync != nil {
		close(idx.stopSync)
	}
	return idx.archive.Close()
}

func (idx *Index[T]) startSync() {
	if idx.cfg.syncInterval <= 0 {
		return
	}
	idx.stopSync = make(chan struct{})
	go func() {
		ticker := time.NewTicker(idx.cfg.syncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := idx.archive.Flush(); err != nil {
					klog.Errorf("boolidx: periodic flush failed: %v", err)
				}
			case <-idx.stopSync:
				return
			}
		}
	}()
}
