package mocks

import (
	"context"
	"time"

	"cyoa-server/internal/domain"
	"cyoa-server/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockJobRepository is a mock type for the JobRepository type
type MockJobRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, querier, job
func (_m *MockJobRepository) Create(ctx context.Context, querier repository.DBTX, job *domain.StoryJob) error {
	ret := _m.Called(ctx, querier, job)
	return ret.Error(0)
}

// GetByID provides a mock function with given fields: ctx, querier, jobID
func (_m *MockJobRepository) GetByID(ctx context.Context, querier repository.DBTX, jobID uuid.UUID) (*domain.StoryJob, error) {
	ret := _m.Called(ctx, querier, jobID)

	var r0 *domain.StoryJob
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.StoryJob)
	}
	return r0, ret.Error(1)
}

// MarkProcessing provides a mock function with given fields: ctx, querier, jobID
func (_m *MockJobRepository) MarkProcessing(ctx context.Context, querier repository.DBTX, jobID uuid.UUID) error {
	ret := _m.Called(ctx, querier, jobID)
	return ret.Error(0)
}

// MarkCompleted provides a mock function with given fields: ctx, querier, jobID, storyID
func (_m *MockJobRepository) MarkCompleted(ctx context.Context, querier repository.DBTX, jobID uuid.UUID, storyID uuid.UUID) error {
	ret := _m.Called(ctx, querier, jobID, storyID)
	return ret.Error(0)
}

// MarkFailed provides a mock function with given fields: ctx, querier, jobID, reason
func (_m *MockJobRepository) MarkFailed(ctx context.Context, querier repository.DBTX, jobID uuid.UUID, reason string) error {
	ret := _m.Called(ctx, querier, jobID, reason)
	return ret.Error(0)
}

// FailStale provides a mock function with given fields: ctx, querier, startedBefore, reason
func (_m *MockJobRepository) FailStale(ctx context.Context, querier repository.DBTX, startedBefore time.Time, reason string) (int64, error) {
	ret := _m.Called(ctx, querier, startedBefore, reason)
	return ret.Get(0).(int64), ret.Error(1)
}

// NewMockJobRepository creates a new instance of MockJobRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockJobRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockJobRepository {
	m := &MockJobRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ repository.JobRepository = (*MockJobRepository)(nil)
