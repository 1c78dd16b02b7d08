package generator

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storytree_ai_requests_total",
			Help: "Total number of requests to the language model.",
		},
		[]string{"provider", "model", "status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storytree_ai_request_duration_seconds",
			Help:    "Histogram of language model request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "model"},
	)
	responseBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storytree_ai_response_bytes",
			Help:    "Histogram of language model reply sizes.",
			Buckets: prometheus.ExponentialBuckets(256, 2, 8),
		},
		[]string{"provider", "model"},
	)
)

type instrumented struct {
	next     Completer
	provider string
	model    string
}

// Instrument wraps c so every call is counted and timed in the
// storytree_ai_* metrics.
func Instrument(c Completer, provider, model string) Completer {
	return &instrumented{next: c, provider: provider, model: model}
}

func (i *instrumented) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	out, err := i.next.Complete(ctx, system, user)
	requestDuration.WithLabelValues(i.provider, i.model).Observe(time.Since(start).Seconds())

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case out == "":
		status = "error_empty_response"
	default:
		responseBytes.WithLabelValues(i.provider, i.model).Observe(float64(len(out)))
	}
	requestsTotal.WithLabelValues(i.provider, i.model, status).Inc()
	return out, err
}
