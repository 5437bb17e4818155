package jobs

import (
	"context"
	"fmt"
	"time"

	"cyoa-server/internal/domain"
	"cyoa-server/internal/repository"

	"go.uber.org/zap"
)

const staleJobReason = "job abandoned: runner stopped before finishing"

// StaleSweeper завершает задачи, зависшие в processing после падения исполнителя.
// Генерация откатывается целиком, поэтому такая задача не оставляет частичной истории.
type StaleSweeper struct {
	logger     *zap.Logger
	db         repository.DBTX
	jobs       repository.JobRepository
	staleAfter time.Duration
	now        func() time.Time
}

// NewStaleSweeper создает StaleSweeper. staleAfter должен превышать таймаут задачи.
func NewStaleSweeper(logger *zap.Logger, db repository.DBTX, jobs repository.JobRepository, staleAfter time.Duration) *StaleSweeper {
	return &StaleSweeper{
		logger:     logger.Named("StaleJobSweeper"),
		db:         db,
		jobs:       jobs,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Sweep помечает failed задачи, начатые раньше now - staleAfter.
func (s *StaleSweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.staleAfter)
	n, err := s.jobs.FailStale(ctx, s.db, cutoff, staleJobReason)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stale jobs: %w", err)
	}
	if n > 0 {
		jobsFinished.WithLabelValues(string(domain.JobStatusFailed), "stale").Add(float64(n))
		s.logger.Warn("Stale jobs marked failed", zap.Int64("count", n), zap.Time("started_before", cutoff))
	}
	return n, nil
}

// Run выполняет Sweep сразу и затем по тикеру до отмены контекста.
func (s *StaleSweeper) Run(ctx context.Context, interval time.Duration) {
	s.logger.Info("Stale job sweeper started", zap.Duration("stale_after", s.staleAfter), zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("Stale job sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			s.logger.Info("Stale job sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}
