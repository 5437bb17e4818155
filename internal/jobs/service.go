package jobs

import (
	"context"
	"fmt"
	"strings"

	"cyoa-server/internal/domain"
	"cyoa-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service создает задачи генерации и отдает их статус.
type Service interface {
	Submit(ctx context.Context, sessionID, theme string) (*domain.StoryJob, error)
	Get(ctx context.Context, jobID uuid.UUID) (*domain.StoryJob, error)
}

type jobServiceImpl struct {
	logger     *zap.Logger
	db         repository.DBTX
	jobs       repository.JobRepository
	dispatcher Dispatcher
}

// Compile-time check to ensure implementation satisfies the interface.
var _ Service = (*jobServiceImpl)(nil)

func NewService(logger *zap.Logger, db repository.DBTX, jobs repository.JobRepository, dispatcher Dispatcher) Service {
	return &jobServiceImpl{
		logger:     logger.Named("JobService"),
		db:         db,
		jobs:       jobs,
		dispatcher: dispatcher,
	}
}

func (s *jobServiceImpl) Submit(ctx context.Context, sessionID, theme string) (*domain.StoryJob, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return nil, fmt.Errorf("%w: theme is required", domain.ErrInvalidInput)
	}
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}

	job := &domain.StoryJob{
		ID:        uuid.New(),
		SessionID: sessionID,
		Theme:     theme,
		Status:    domain.JobStatusPending,
	}
	if err := s.jobs.Create(ctx, s.db, job); err != nil {
		return nil, err
	}

	if err := s.dispatcher.Dispatch(ctx, job.ID); err != nil {
		s.logger.Error("Failed to dispatch job", zap.String("job_id", job.ID.String()), zap.Error(err))
		reason := "dispatch failed: " + err.Error()
		if markErr := s.jobs.MarkFailed(ctx, s.db, job.ID, reason); markErr != nil {
			s.logger.Error("Failed to mark undispatched job failed", zap.String("job_id", job.ID.String()), zap.Error(markErr))
		}
		return nil, fmt.Errorf("failed to dispatch job: %w", err)
	}

	s.logger.Info("Story job submitted",
		zap.String("job_id", job.ID.String()),
		zap.String("theme", theme),
	)
	return job, nil
}

func (s *jobServiceImpl) Get(ctx context.Context, jobID uuid.UUID) (*domain.StoryJob, error) {
	return s.jobs.GetByID(ctx, s.db, jobID)
}
