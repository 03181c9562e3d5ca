package boolidx

import (
	"time"

	"github.com/schollz/progressbar/v3"
)

// config collects the functional options below into the façade's
// internal tuning knobs, grounded on the teacher's store.Option surface
// (gsfa/store/option.go's FileCacheSize/SyncInterval/SyncOnFlush).
type config struct {
	chunkCacheSize int
	syncInterval   time.Duration
	syncOnFlush    bool
	sorterCount    int
	shardSize      int
	progress       bool
	indexName      string
}

func defaultConfig() config {
	return config{
		chunkCacheSize: defaultChunkCacheSize,
		syncOnFlush:    true,
	}
}

// Option configures an Index returned by NewInMemory/Create/Load.
type Option func(*config)

// WithChunkCacheSize bounds the on-disk archive's in-memory LRU of
// recently-read sealed chunks to n entries (spec.md §C item 4). A size
// of 0 disables the cache.
func WithChunkCacheSize(n int) Option {
	return func(c *config) { c.chunkCacheSize = n }
}

// WithSyncInterval starts a background goroutine flushing the archive
// every d, in addition to any explicit Flush/Persist call. d <= 0
// disables periodic sync (the default).
func WithSyncInterval(d time.Duration) Option {
	return func(c *config) { c.syncInterval = d }
}

// WithSyncOnFlush controls whether Persist calls the archive's Flush
// before returning. Defaults to true.
func WithSyncOnFlush(b bool) Option {
	return func(c *config) { c.syncOnFlush = b }
}

// WithSorterCount overrides the indexing pipeline's sorter goroutine
// count (default build.DefaultSorterCount).
func WithSorterCount(n int) Option {
	return func(c *config) { c.sorterCount = n }
}

// WithShardSize overrides the indexing pipeline's per-shard document
// count (default build.DefaultShardSize).
func WithShardSize(n int) Option {
	return func(c *config) { c.shardSize = n }
}

// WithProgress shows a progress bar on stderr while Build runs.
func WithProgress(b bool) Option {
	return func(c *config) { c.progress = b }
}

// WithIndexName labels this index's metrics. With no name set (the
// default), no metrics are recorded for the index.
func WithIndexName(name string) Option {
	return func(c *config) { c.indexName = name }
}

func newProgressBar(docCountHint int) *progressbar.ProgressBar {
	return progressbar.Default(int64(docCountHint), "indexing")
}
