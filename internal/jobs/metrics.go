package jobs

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

var (
	jobsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cyoa_story_jobs_started_total",
			Help: "Total number of story generation jobs picked up by a runner.",
		},
	)
	jobsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyoa_story_jobs_finished_total",
			Help: "Total number of finished story generation jobs, partitioned by status and failure reason.",
		},
		[]string{"status", "reason"},
	)
	jobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cyoa_story_job_duration_seconds",
			Help:    "Histogram of story generation job durations.",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200, 2400},
		},
	)
	jobMessagesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cyoa_story_job_messages_rejected_total",
			Help: "Queue messages rejected because they could not be decoded.",
		},
	)
)

const pushJobName = "cyoa_worker"

// MetricsPusher периодически отправляет метрики воркера в Pushgateway.
type MetricsPusher struct {
	logger *zap.Logger
	pusher *push.Pusher
}

func NewMetricsPusher(logger *zap.Logger, gatewayURL string, gatherer prometheus.Gatherer) *MetricsPusher {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	instance := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &MetricsPusher{
		logger: logger.Named("MetricsPusher").With(zap.String("instance", instance)),
		pusher: push.New(gatewayURL, pushJobName).Gatherer(gatherer).Grouping("instance", instance),
	}
}

// Run отправляет метрики с интервалом до отмены ctx, затем делает финальную отправку.
func (p *MetricsPusher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := p.pusher.Push(); err != nil {
				p.logger.Warn("Final metrics push failed", zap.Error(err))
			}
			return
		case <-ticker.C:
			if err := p.pusher.Push(); err != nil {
				p.logger.Warn("Metrics push failed", zap.Error(err))
			}
		}
	}
}
