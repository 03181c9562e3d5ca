package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var DocsIndexed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "boolidx_docs_indexed_total",
		Help: "Documents consumed by the indexing pipeline's producer",
	},
	[]string{"index"},
)

var TermsObserved = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "boolidx_terms_observed",
		Help: "Distinct terms currently in the vocabulary",
	},
	[]string{"index"},
)

var ChunksSealed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "boolidx_chunks_sealed_total",
		Help: "Hot chunks moved into block storage on overflow",
	},
	[]string{"index"},
)

var IndexingErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "boolidx_indexing_errors_total",
		Help: "Build failures by error kind",
	},
	[]string{"index", "kind"},
)

var QueryNodesEvaluated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "boolidx_query_nodes_evaluated_total",
		Help: "Queries compiled, labelled by the kind of their root node",
	},
	[]string{"index", "node"},
)

var BuildDurationHistogram = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "boolidx_build_duration_seconds",
		Help:    "Time to build an index from a document stream",
		Buckets: prometheus.ExponentialBuckets(0.001, 10, 8),
	},
	[]string{"index"},
)

var QueryLatencyHistogram = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "boolidx_query_latency_seconds",
		Help:    "Time to fully drain a query's result iterator",
		Buckets: prometheus.ExponentialBuckets(0.000001, 10, 10),
	},
	[]string{"index"},
)

var ChunkReadLatencyHistogram = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "boolidx_chunk_read_latency_seconds",
		Help:    "Block storage chunk read latency",
		Buckets: prometheus.ExponentialBuckets(0.000001, 10, 10),
	},
	[]string{"store"},
)
