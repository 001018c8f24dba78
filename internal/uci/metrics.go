package uci

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chessreview_engine_searches_total",
		Help: "Engine searches by outcome: ok, timeout, error or cached.",
	}, []string{"outcome"})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chessreview_engine_search_duration_seconds",
		Help:    "Time between sending go and receiving bestmove.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chessreview_engine_queue_depth",
		Help: "Requests waiting for an engine session.",
	})

	staleReplies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chessreview_engine_stale_replies_total",
		Help: "Best moves of abandoned searches that were discarded.",
	})
)
