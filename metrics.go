package icadtone

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus instrumentation for the engine. A nil
// *Metrics is safe to call every method on (all become no-ops), the same
// nil-guard idiom the host project uses for its own optional collaborators.
type Metrics struct {
	analysisDuration  prometheus.Histogram
	detectionsTotal   *prometheus.CounterVec
	decoderInvokes    *prometheus.CounterVec
	decoderFailures   *prometheus.CounterVec
}

// NewMetrics registers the engine's metrics with reg and returns a Metrics
// ready to use. Pass prometheus.DefaultRegisterer for the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "icadtone_analysis_duration_seconds",
			Help:    "Duration of a single Analyze call.",
			Buckets: prometheus.DefBuckets,
		}),
		detectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "icadtone_detections_total",
			Help: "Number of detection records emitted, by kind.",
		}, []string{"kind"}),
		decoderInvokes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "icadtone_decoder_invocations_total",
			Help: "Number of external decoder invocations, by decoder.",
		}, []string{"decoder"}),
		decoderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "icadtone_decoder_failures_total",
			Help: "Number of external decoder invocation failures, by decoder.",
		}, []string{"decoder"}),
	}

	reg.MustRegister(m.analysisDuration, m.detectionsTotal, m.decoderInvokes, m.decoderFailures)
	return m
}

func (m *Metrics) startAnalysisTimer() func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.analysisDuration.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) observeResult(r *Result) {
	if m == nil || r == nil {
		return
	}
	m.detectionsTotal.WithLabelValues("pulsed").Add(float64(len(r.Pulsed)))
	m.detectionsTotal.WithLabelValues("two_tone").Add(float64(len(r.TwoTone)))
	m.detectionsTotal.WithLabelValues("long").Add(float64(len(r.Long)))
	m.detectionsTotal.WithLabelValues("hi_low").Add(float64(len(r.HiLow)))
	m.detectionsTotal.WithLabelValues("mdc").Add(float64(len(r.MDC)))
	m.detectionsTotal.WithLabelValues("dtmf").Add(float64(len(r.DTMF)))
}

func (m *Metrics) incDecoderInvoke(decoder string) {
	if m == nil {
		return
	}
	m.decoderInvokes.WithLabelValues(decoder).Inc()
}

func (m *Metrics) incDecoderFailure(decoder string) {
	if m == nil {
		return
	}
	m.decoderFailures.WithLabelValues(decoder).Inc()
}
