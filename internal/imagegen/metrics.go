package imagegen

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	imageRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyoa_image_requests_total",
			Help: "Total number of illustration requests, partitioned by outcome.",
		},
		[]string{"backend", "scope", "status"}, // status: success, timeout, rejected, rate_limited, error
	)
	imageRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cyoa_image_request_duration_seconds",
			Help:    "Histogram of illustration backend call durations.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"backend", "scope"},
	)
	imageCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyoa_image_cache_lookups_total",
			Help: "Image cache lookups partitioned by result (hit, miss, error).",
		},
		[]string{"result"},
	)
)
