package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cyoa-server/internal/domain"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ JobRepository = (*pgJobRepository)(nil)

type pgJobRepository struct {
	logger *zap.Logger
}

// NewPgJobRepository создает репозиторий задач генерации.
func NewPgJobRepository(logger *zap.Logger) JobRepository {
	return &pgJobRepository{logger: logger.Named("PgJobRepo")}
}

const createJobQuery = `
INSERT INTO story_jobs (id, session_id, theme, status, created_at)
VALUES ($1, $2, $3, $4, $5)`

const getJobQuery = `
SELECT id, session_id, theme, status, story_id, error, created_at, started_at, completed_at
FROM story_jobs
WHERE id = $1`

const markJobProcessingQuery = `
UPDATE story_jobs SET status = $2, started_at = $3 WHERE id = $1 AND status = $4`

const markJobCompletedQuery = `
UPDATE story_jobs SET status = $2, story_id = $3, error = NULL, completed_at = $4 WHERE id = $1`

const markJobFailedQuery = `
UPDATE story_jobs SET status = $2, error = $3, completed_at = $4 WHERE id = $1`

const failStaleJobsQuery = `
UPDATE story_jobs SET status = $1, error = $2, completed_at = $3
WHERE status = $4 AND started_at < $5`

func (r *pgJobRepository) Create(ctx context.Context, querier DBTX, job *domain.StoryJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = domain.JobStatusPending
	}

	if _, err := querier.Exec(ctx, createJobQuery, job.ID, job.SessionID, job.Theme, job.Status, job.CreatedAt); err != nil {
		r.logger.Error("Failed to create story job", zap.String("session_id", job.SessionID), zap.Error(err))
		return fmt.Errorf("failed to create story job: %w", err)
	}
	return nil
}

func (r *pgJobRepository) GetByID(ctx context.Context, querier DBTX, jobID uuid.UUID) (*domain.StoryJob, error) {
	var job domain.StoryJob
	if err := pgxscan.Get(ctx, querier, &job, getJobQuery, jobID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgxscan.NotFound(err) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get story job", zap.String("job_id", jobID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get story job %s: %w", jobID, err)
	}
	return &job, nil
}

func (r *pgJobRepository) MarkProcessing(ctx context.Context, querier DBTX, jobID uuid.UUID) error {
	err := r.exec(ctx, querier, "processing", markJobProcessingQuery, jobID, domain.JobStatusProcessing, time.Now().UTC(), domain.JobStatusPending)
	if errors.Is(err, domain.ErrNotFound) {
		// 0 строк: задача либо уже не pending, либо отсутствует.
		if _, getErr := r.GetByID(ctx, querier, jobID); getErr != nil {
			return getErr
		}
		return domain.ErrJobAlreadyClaimed
	}
	return err
}

func (r *pgJobRepository) MarkCompleted(ctx context.Context, querier DBTX, jobID uuid.UUID, storyID uuid.UUID) error {
	return r.exec(ctx, querier, "completed", markJobCompletedQuery, jobID, domain.JobStatusCompleted, storyID, time.Now().UTC())
}

func (r *pgJobRepository) MarkFailed(ctx context.Context, querier DBTX, jobID uuid.UUID, reason string) error {
	return r.exec(ctx, querier, "failed", markJobFailedQuery, jobID, domain.JobStatusFailed, reason, time.Now().UTC())
}

func (r *pgJobRepository) FailStale(ctx context.Context, querier DBTX, startedBefore time.Time, reason string) (int64, error) {
	tag, err := querier.Exec(ctx, failStaleJobsQuery, domain.JobStatusFailed, reason, time.Now().UTC(), domain.JobStatusProcessing, startedBefore)
	if err != nil {
		r.logger.Error("Failed to fail stale story jobs", zap.Time("started_before", startedBefore), zap.Error(err))
		return 0, fmt.Errorf("failed to fail stale story jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgJobRepository) exec(ctx context.Context, querier DBTX, transition, query string, args ...any) error {
	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update story job", zap.String("transition", transition), zap.Any("job_id", args[0]), zap.Error(err))
		return fmt.Errorf("failed to mark story job %s: %w", transition, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
