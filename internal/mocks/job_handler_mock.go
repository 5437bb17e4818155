package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockJobHandler is a mock type for the Handler type
type MockJobHandler struct {
	mock.Mock
}

// Run provides a mock function with given fields: ctx, jobID
func (_m *MockJobHandler) Run(ctx context.Context, jobID uuid.UUID) error {
	ret := _m.Called(ctx, jobID)
	return ret.Error(0)
}

// NewMockJobHandler creates a new instance of MockJobHandler. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockJobHandler(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockJobHandler {
	m := &MockJobHandler{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockDispatcher is a mock type for the Dispatcher type
type MockDispatcher struct {
	mock.Mock
}

// Dispatch provides a mock function with given fields: ctx, jobID
func (_m *MockDispatcher) Dispatch(ctx context.Context, jobID uuid.UUID) error {
	ret := _m.Called(ctx, jobID)
	return ret.Error(0)
}

// NewMockDispatcher creates a new instance of MockDispatcher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockDispatcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockDispatcher {
	m := &MockDispatcher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
