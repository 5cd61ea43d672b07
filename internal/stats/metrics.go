package stats

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"GoStem/internal/analysis"
)

// Metrics holds the Prometheus collectors for analysis, indexing and search.
type Metrics struct {
	tokens        *prometheus.CounterVec
	inputBytes    prometheus.Counter
	stemSteps     *prometheus.CounterVec
	searches      *prometheus.CounterVec
	searchLatency prometheus.Histogram
	indexedDocs   prometheus.Gauge
	indexTerms    prometheus.Gauge
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// DefaultMetrics returns the Metrics registered with the global registry.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics creates and registers the collectors with reg. Collectors
// that are already registered are reused; any other error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gostem",
			Subsystem: "analysis",
			Name:      "tokens_total",
			Help:      "Terms emitted by the analyzers.",
		}, []string{"analyzer"}),
		inputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gostem",
			Subsystem: "analysis",
			Name:      "input_bytes_total",
			Help:      "Bytes consumed from input streams.",
		}),
		stemSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gostem",
			Subsystem: "analysis",
			Name:      "stem_rules_total",
			Help:      "Stemming rules that stripped a suffix, by rule.",
		}, []string{"rule"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gostem",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Search requests by outcome.",
		}, []string{"status"}),
		searchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gostem",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search execution time.",
			Buckets:   prometheus.DefBuckets,
		}),
		indexedDocs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gostem",
			Subsystem: "index",
			Name:      "documents",
			Help:      "Documents in the open index.",
		}),
		indexTerms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gostem",
			Subsystem: "index",
			Name:      "terms",
			Help:      "Dictionary terms in the open index.",
		}),
	}

	m.tokens = register(reg, m.tokens)
	m.inputBytes = register(reg, m.inputBytes)
	m.stemSteps = register(reg, m.stemSteps)
	m.searches = register(reg, m.searches)
	m.searchLatency = register(reg, m.searchLatency)
	m.indexedDocs = register(reg, m.indexedDocs)
	m.indexTerms = register(reg, m.indexTerms)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveSummary records a finished stream pass.
func (m *Metrics) ObserveSummary(analyzer string, s Summary) {
	if m == nil {
		return
	}
	m.tokens.WithLabelValues(analyzer).Add(float64(s.Tokens))
	m.inputBytes.Add(float64(s.InputBytes))
}

// ObserveTerms records n terms emitted by analyzer.
func (m *Metrics) ObserveTerms(analyzer string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.tokens.WithLabelValues(analyzer).Add(float64(n))
}

// ObserveStem records the rules that fired for one word. It has the
// signature of analysis.Options.OnStem.
func (m *Metrics) ObserveStem(steps analysis.Steps) {
	if m == nil || steps == 0 {
		return
	}
	for _, r := range []struct {
		step analysis.Steps
		name string
	}{
		{analysis.StepAdjective, "adjective"},
		{analysis.StepNoun, "noun"},
		{analysis.StepI, "i"},
		{analysis.StepOst, "ost"},
	} {
		if steps.Has(r.step) {
			m.stemSteps.WithLabelValues(r.name).Inc()
		}
	}
}

// ObserveSearch records one search with its outcome and duration.
func (m *Metrics) ObserveSearch(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(status).Inc()
	m.searchLatency.Observe(d.Seconds())
}

// SetIndexSize publishes the size of the open index.
func (m *Metrics) SetIndexSize(docs, terms int) {
	if m == nil {
		return
	}
	m.indexedDocs.Set(float64(docs))
	m.indexTerms.Set(float64(terms))
}
