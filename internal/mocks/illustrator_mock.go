package mocks

import (
	"context"

	"cyoa-server/internal/domain"
	"cyoa-server/internal/imagegen"

	"github.com/stretchr/testify/mock"
)

// MockIllustrator is a mock type for the Illustrator type
type MockIllustrator struct {
	mock.Mock
}

// DescribeAndIllustrate provides a mock function with given fields: ctx, req
func (_m *MockIllustrator) DescribeAndIllustrate(ctx context.Context, req imagegen.Request) *domain.EncodedImage {
	ret := _m.Called(ctx, req)

	var r0 *domain.EncodedImage
	if rf, ok := ret.Get(0).(func(context.Context, imagegen.Request) *domain.EncodedImage); ok {
		r0 = rf(ctx, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.EncodedImage)
	}

	return r0
}

// NewMockIllustrator creates a new instance of MockIllustrator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockIllustrator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockIllustrator {
	m := &MockIllustrator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ imagegen.Illustrator = (*MockIllustrator)(nil)
