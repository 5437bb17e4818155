package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyoa_llm_requests_total",
			Help: "Total number of requests to the LLM provider.",
		},
		[]string{"provider", "model", "status"},
	)
	llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cyoa_llm_request_duration_seconds",
			Help:    "Histogram of LLM request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "model"},
	)
	llmTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyoa_llm_tokens_total",
			Help: "Tokens reported by the LLM provider, partitioned by kind (prompt, completion).",
		},
		[]string{"provider", "model", "kind"},
	)
)

func observeRequest(provider, model, status string, seconds float64) {
	llmRequestsTotal.WithLabelValues(provider, model, status).Inc()
	if status == "success" {
		llmRequestDuration.WithLabelValues(provider, model).Observe(seconds)
	}
}

func observeTokens(provider, model string, prompt, completion int) {
	if prompt > 0 {
		llmTokensTotal.WithLabelValues(provider, model, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		llmTokensTotal.WithLabelValues(provider, model, "completion").Add(float64(completion))
	}
}
