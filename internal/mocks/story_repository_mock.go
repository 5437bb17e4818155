package mocks

import (
	"context"

	"cyoa-server/internal/domain"
	"cyoa-server/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStoryRepository is a mock type for the StoryRepository type
type MockStoryRepository struct {
	mock.Mock
}

// CreateStory provides a mock function with given fields: ctx, querier, story
func (_m *MockStoryRepository) CreateStory(ctx context.Context, querier repository.DBTX, story *domain.Story) error {
	ret := _m.Called(ctx, querier, story)
	return ret.Error(0)
}

// SetStoryMainImage provides a mock function with given fields: ctx, querier, storyID, image
func (_m *MockStoryRepository) SetStoryMainImage(ctx context.Context, querier repository.DBTX, storyID uuid.UUID, image domain.EncodedImage) error {
	ret := _m.Called(ctx, querier, storyID, image)
	return ret.Error(0)
}

// CreateNode provides a mock function with given fields: ctx, querier, node
func (_m *MockStoryRepository) CreateNode(ctx context.Context, querier repository.DBTX, node *domain.StoryNode) error {
	ret := _m.Called(ctx, querier, node)
	return ret.Error(0)
}

// FinalizeNode provides a mock function with given fields: ctx, querier, nodeID, image, options
func (_m *MockStoryRepository) FinalizeNode(ctx context.Context, querier repository.DBTX, nodeID uuid.UUID, image *domain.EncodedImage, options []domain.NodeOption) error {
	ret := _m.Called(ctx, querier, nodeID, image, options)
	return ret.Error(0)
}

// GetStory provides a mock function with given fields: ctx, querier, storyID
func (_m *MockStoryRepository) GetStory(ctx context.Context, querier repository.DBTX, storyID uuid.UUID) (*domain.Story, error) {
	ret := _m.Called(ctx, querier, storyID)

	var r0 *domain.Story
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Story)
	}
	return r0, ret.Error(1)
}

// ListNodes provides a mock function with given fields: ctx, querier, storyID
func (_m *MockStoryRepository) ListNodes(ctx context.Context, querier repository.DBTX, storyID uuid.UUID) ([]*domain.StoryNode, error) {
	ret := _m.Called(ctx, querier, storyID)

	var r0 []*domain.StoryNode
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*domain.StoryNode)
	}
	return r0, ret.Error(1)
}

// NewMockStoryRepository creates a new instance of MockStoryRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockStoryRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStoryRepository {
	m := &MockStoryRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ repository.StoryRepository = (*MockStoryRepository)(nil)
