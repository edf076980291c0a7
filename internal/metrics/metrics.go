// Package metrics collects per-run imagery job metrics and pushes them to a
// Prometheus Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/model"
)

const jobName = "terrasense_imagery"

// Recorder implements imagery.Metrics on a private registry.
type Recorder struct {
	registry      *prometheus.Registry
	fetchesTotal  *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with its collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "terrasense",
			Subsystem: "imagery",
			Name:      "fetches_total",
			Help:      "Total imagery fetches by provider and outcome",
		}, []string{"provider", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "terrasense",
			Subsystem: "imagery",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of imagery fetches, token exchange included",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),
	}
	r.registry.MustRegister(r.fetchesTotal, r.fetchDuration)
	return r
}

// ObserveFetch records one fetch outcome.
func (r *Recorder) ObserveFetch(provider model.Provider, outcome string, d time.Duration) {
	r.fetchesTotal.WithLabelValues(string(provider), outcome).Inc()
	r.fetchDuration.WithLabelValues(string(provider)).Observe(d.Seconds())
}

// Push sends the collected metrics to the Pushgateway at url, grouped by run id.
func (r *Recorder) Push(ctx context.Context, url string, runID model.RunID) error {
	err := push.New(url, jobName).
		Gatherer(r.registry).
		Grouping("run_id", runID.String()).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
