// Package metrics exposes Prometheus collectors for the image pipeline.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	entitiesTotal        *prometheus.CounterVec
	candidatesTotal      *prometheus.CounterVec
	qualityScore         *prometheus.HistogramVec
	uploadBytesTotal     *prometheus.CounterVec
	batchDurationSeconds *prometheus.HistogramVec
	httpRequestsTotal    *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		entitiesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imagepipe_entities_total",
				Help: "Entities processed, labeled by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		)

		candidatesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imagepipe_candidates_total",
				Help: "Candidate images scored, labeled by kind and image type.",
			},
			[]string{"kind", "type"},
		)

		qualityScore = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "imagepipe_quality_score",
				Help:    "Quality scores of selected primary images.",
				Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
			[]string{"kind"},
		)

		uploadBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imagepipe_upload_bytes_total",
				Help: "Bytes uploaded to object storage, labeled by kind.",
			},
			[]string{"kind"},
		)

		batchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "imagepipe_batch_duration_seconds",
				Help:    "Wall time of batch runs, labeled by kind.",
				Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
			},
			[]string{"kind"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imagepipe_http_requests_total",
				Help: "API requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)
	})
}

// ObserveEntity records one completed per-entity orchestration.
func ObserveEntity(kind, outcome string) {
	if entitiesTotal == nil {
		return
	}
	entitiesTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveCandidate records one scored candidate image.
func ObserveCandidate(kind, imageType string) {
	if candidatesTotal == nil {
		return
	}
	candidatesTotal.WithLabelValues(kind, imageType).Inc()
}

// ObserveScore records the quality score of a selected primary image.
func ObserveScore(kind string, score int) {
	if qualityScore == nil {
		return
	}
	qualityScore.WithLabelValues(kind).Observe(float64(score))
}

// ObserveUpload records bytes written to object storage.
func ObserveUpload(kind string, n int) {
	if uploadBytesTotal == nil {
		return
	}
	uploadBytesTotal.WithLabelValues(kind).Add(float64(n))
}

// ObserveBatch records the duration of one batch run.
func ObserveBatch(kind string, d time.Duration) {
	if batchDurationSeconds == nil {
		return
	}
	batchDurationSeconds.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveHTTPRequest records one served API request.
func ObserveHTTPRequest(method, code string) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, code).Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
