// Package metrics provides Prometheus metrics for diarization runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maauso/stereo-diarizer/internal/diarize"
)

const namespace = "stereo_diarizer"

// Metrics holds the Prometheus instruments for the service.
type Metrics struct {
	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// Audio metrics
	AudioSeconds prometheus.Counter

	// Output metrics
	SegmentsTotal  *prometheus.CounterVec
	SegmentSeconds *prometheus.CounterVec
	TracksWritten  *prometheus.CounterVec
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of diarization runs by outcome status",
		}, []string{"status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock time of diarization runs",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		AudioSeconds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_seconds_total",
			Help:      "Total seconds of audio diarized",
		}),
		SegmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_total",
			Help:      "Total number of segments produced by label",
		}, []string{"speaker"}),
		SegmentSeconds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segment_seconds_total",
			Help:      "Total segment time produced by label",
		}, []string{"speaker"}),
		TracksWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracks_written_total",
			Help:      "Total number of per-speaker tracks exported",
		}, []string{"track"}),
	}
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(status string, elapsed time.Duration) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}

// ObserveResult records what a successful run produced.
func (m *Metrics) ObserveResult(res *diarize.Result) {
	m.AudioSeconds.Add(res.Duration)
	for _, seg := range res.Segments {
		m.SegmentsTotal.WithLabelValues(string(seg.Label)).Inc()
		m.SegmentSeconds.WithLabelValues(string(seg.Label)).Add(seg.Duration())
	}
	for track := range res.AudioFiles {
		m.TracksWritten.WithLabelValues(track).Inc()
	}
}

// Handler returns the /metrics endpoint for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

var _ diarize.Recorder = (*Metrics)(nil)
