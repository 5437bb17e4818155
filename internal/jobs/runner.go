package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cyoa-server/internal/domain"
	"cyoa-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoryGenerator генерирует и сохраняет историю целиком.
type StoryGenerator interface {
	Generate(ctx context.Context, sessionID, theme string) (*domain.Story, error)
}

// Handler обрабатывает задачу по ее ID.
type Handler interface {
	Run(ctx context.Context, jobID uuid.UUID) error
}

// Compile-time check to ensure implementation satisfies the interface.
var _ Handler = (*Runner)(nil)

// Runner выполняет одну задачу генерации и фиксирует ее итоговый статус.
type Runner struct {
	logger    *zap.Logger
	db        repository.DBTX
	jobs      repository.JobRepository
	generator StoryGenerator
	timeout   time.Duration
}

// NewRunner создает Runner. timeout <= 0 означает отсутствие ограничения.
func NewRunner(logger *zap.Logger, db repository.DBTX, jobs repository.JobRepository, generator StoryGenerator, timeout time.Duration) *Runner {
	return &Runner{
		logger:    logger.Named("JobRunner"),
		db:        db,
		jobs:      jobs,
		generator: generator,
		timeout:   timeout,
	}
}

// Run не перезапускает завершенные задачи: повторная доставка того же ID ничего не делает.
func (r *Runner) Run(ctx context.Context, jobID uuid.UUID) error {
	log := r.logger.With(zap.String("job_id", jobID.String()))

	job, err := r.jobs.GetByID(ctx, r.db, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	if job.IsTerminal() || job.Status == domain.JobStatusProcessing {
		log.Warn("Job already picked up, skipping", zap.String("status", string(job.Status)))
		return nil
	}

	if err := r.jobs.MarkProcessing(ctx, r.db, jobID); err != nil {
		if errors.Is(err, domain.ErrJobAlreadyClaimed) {
			log.Warn("Job claimed by another runner, skipping")
			return nil
		}
		return fmt.Errorf("failed to mark job processing: %w", err)
	}
	jobsStarted.Inc()
	start := time.Now()

	genCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	story, genErr := r.generator.Generate(genCtx, job.SessionID, job.Theme)
	jobDuration.Observe(time.Since(start).Seconds())

	if genErr != nil {
		jobsFinished.WithLabelValues(string(domain.JobStatusFailed), failureReason(genErr)).Inc()
		log.Error("Story generation failed", zap.String("theme", job.Theme), zap.Error(genErr))
		if err := r.jobs.MarkFailed(context.WithoutCancel(ctx), r.db, jobID, genErr.Error()); err != nil {
			log.Error("Failed to mark job failed", zap.Error(err))
			return errors.Join(genErr, err)
		}
		return genErr
	}

	jobsFinished.WithLabelValues(string(domain.JobStatusCompleted), "").Inc()
	if err := r.jobs.MarkCompleted(ctx, r.db, jobID, story.ID); err != nil {
		log.Error("Failed to mark job completed", zap.String("story_id", story.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to mark job completed: %w", err)
	}

	log.Info("Story generated",
		zap.String("story_id", story.ID.String()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrLLMGeneration):
		return "llm"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, domain.ErrTreeTooLarge):
		return "tree_too_large"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}
