package mocks

import (
	"context"

	"cyoa-server/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockJobService is a mock type for the Service type
type MockJobService struct {
	mock.Mock
}

// Submit provides a mock function with given fields: ctx, sessionID, theme
func (_m *MockJobService) Submit(ctx context.Context, sessionID string, theme string) (*domain.StoryJob, error) {
	ret := _m.Called(ctx, sessionID, theme)

	var r0 *domain.StoryJob
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.StoryJob)
	}
	return r0, ret.Error(1)
}

// Get provides a mock function with given fields: ctx, jobID
func (_m *MockJobService) Get(ctx context.Context, jobID uuid.UUID) (*domain.StoryJob, error) {
	ret := _m.Called(ctx, jobID)

	var r0 *domain.StoryJob
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.StoryJob)
	}
	return r0, ret.Error(1)
}

// NewMockJobService creates a new instance of MockJobService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockJobService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockJobService {
	m := &MockJobService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockStoryReader is a mock type for the StoryReader type
type MockStoryReader struct {
	mock.Mock
}

// LoadComplete provides a mock function with given fields: ctx, storyID
func (_m *MockStoryReader) LoadComplete(ctx context.Context, storyID uuid.UUID) (*domain.CompleteStory, error) {
	ret := _m.Called(ctx, storyID)

	var r0 *domain.CompleteStory
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.CompleteStory)
	}
	return r0, ret.Error(1)
}

// NewMockStoryReader creates a new instance of MockStoryReader. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockStoryReader(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStoryReader {
	m := &MockStoryReader{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
