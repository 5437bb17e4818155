package mocks

import (
	"context"

	"cyoa-server/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockStoryGenerator is a mock type for the StoryGenerator type
type MockStoryGenerator struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, sessionID, theme
func (_m *MockStoryGenerator) Generate(ctx context.Context, sessionID string, theme string) (*domain.Story, error) {
	ret := _m.Called(ctx, sessionID, theme)

	var r0 *domain.Story
	if rf, ok := ret.Get(0).(func(context.Context, string, string) *domain.Story); ok {
		r0 = rf(ctx, sessionID, theme)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Story)
	}

	return r0, ret.Error(1)
}

// NewMockStoryGenerator creates a new instance of MockStoryGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockStoryGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStoryGenerator {
	m := &MockStoryGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
