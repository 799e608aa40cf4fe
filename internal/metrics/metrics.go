// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_mutations_total",
		Help: "Catalog mutations by operation and result",
	}, []string{"operation", "status"})

	remoteCommitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_remote_commits_total",
		Help: "Commits sent to the remote store by method and result",
	}, []string{"method", "status"})

	remoteCommitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_remote_commit_duration_seconds",
		Help:    "Latency of remote store commits including the content hash lookup",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method"})

	warningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_storage_warnings_total",
		Help: "Non-fatal storage drift warnings by operation",
	}, []string{"operation"})

	imagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_image_uploads_total",
		Help: "Image uploads by result",
	}, []string{"status"})
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func ObserveMutation(op string, err error) {
	mutationsTotal.WithLabelValues(op, status(err)).Inc()
}

func ObserveRemoteCommit(method string, seconds float64, err error) {
	remoteCommitsTotal.WithLabelValues(method, status(err)).Inc()
	remoteCommitDuration.WithLabelValues(method).Observe(seconds)
}

func ObserveWarning(op string) {
	warningsTotal.WithLabelValues(op).Inc()
}

func ObserveImageUpload(err error) {
	imagesTotal.WithLabelValues(status(err)).Inc()
}
