package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics instruments the retrieval-and-answer pipeline itself:
// question outcomes, retrieval depth, cache effectiveness and provider health.
type PipelineMetrics struct {
	questionsTotal     *prometheus.CounterVec
	retrievedPassages  prometheus.Histogram
	pipelineDuration   *prometheus.HistogramVec
	documentCacheTotal *prometheus.CounterVec
	embedCacheTotal    *prometheus.CounterVec
	providerAttempts   *prometheus.CounterVec
	fallbacksTotal     prometheus.Counter
}

func newPipelineMetrics(registry *prometheus.Registry) *PipelineMetrics {
	questionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mpedge",
			Subsystem: "pipeline",
			Name:      "questions_total",
			Help:      "Total processed questions by strategy and outcome.",
		},
		[]string{"strategy", "outcome"},
	)
	retrievedPassages := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mpedge",
			Subsystem: "pipeline",
			Name:      "retrieved_passages",
			Help:      "Distribution of passages retrieved per answered question.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
	)
	pipelineDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mpedge",
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "End-to-end question processing duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)
	documentCacheTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mpedge",
			Subsystem: "document_cache",
			Name:      "lookups_total",
			Help:      "Document text cache lookups by result.",
		},
		[]string{"result"},
	)
	embedCacheTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mpedge",
			Subsystem: "embedding_cache",
			Name:      "lookups_total",
			Help:      "Passage embedding cache lookups by result.",
		},
		[]string{"result"},
	)
	providerAttempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mpedge",
			Subsystem: "llm",
			Name:      "provider_attempts_total",
			Help:      "LLM provider attempts by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)
	fallbacksTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mpedge",
			Subsystem: "llm",
			Name:      "fallbacks_total",
			Help:      "Total answers produced by the fallback provider.",
		},
	)

	registry.MustRegister(
		questionsTotal,
		retrievedPassages,
		pipelineDuration,
		documentCacheTotal,
		embedCacheTotal,
		providerAttempts,
		fallbacksTotal,
	)

	return &PipelineMetrics{
		questionsTotal:     questionsTotal,
		retrievedPassages:  retrievedPassages,
		pipelineDuration:   pipelineDuration,
		documentCacheTotal: documentCacheTotal,
		embedCacheTotal:    embedCacheTotal,
		providerAttempts:   providerAttempts,
		fallbacksTotal:     fallbacksTotal,
	}
}

func (m *PipelineMetrics) RecordQuestion(strategy, outcome string, sourceCount int, duration time.Duration) {
	if m == nil {
		return
	}
	if strategy == "" {
		strategy = "unknown"
	}
	m.questionsTotal.WithLabelValues(strategy, outcome).Inc()
	m.pipelineDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	if outcome == "success" {
		m.retrievedPassages.Observe(float64(sourceCount))
	}
}

func (m *PipelineMetrics) RecordDocumentCache(hit bool) {
	if m == nil {
		return
	}
	m.documentCacheTotal.WithLabelValues(cacheResult(hit)).Inc()
}

func (m *PipelineMetrics) RecordEmbeddingCache(hit bool) {
	if m == nil {
		return
	}
	m.embedCacheTotal.WithLabelValues(cacheResult(hit)).Inc()
}

func (m *PipelineMetrics) RecordProviderAttempt(provider, outcome string) {
	if m == nil {
		return
	}
	m.providerAttempts.WithLabelValues(provider, outcome).Inc()
}

func (m *PipelineMetrics) RecordFallback() {
	if m == nil {
		return
	}
	m.fallbacksTotal.Inc()
}

func cacheResult(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
