// Package mocks provides testify mocks for the storytree interfaces.
package mocks

import (
	"context"

	"github.com/meikuraledutech/storytree"
	"github.com/meikuraledutech/storytree/generator"
	"github.com/stretchr/testify/mock"
)

// MockGenerator is a mock type for the storytree.Generator type
type MockGenerator struct {
	mock.Mock
}

// StartStory provides a mock function with given fields: ctx, topic, genre
func (_m *MockGenerator) StartStory(ctx context.Context, topic, genre string) (storytree.Opening, error) {
	ret := _m.Called(ctx, topic, genre)

	var r0 storytree.Opening
	if rf, ok := ret.Get(0).(func(context.Context, string, string) storytree.Opening); ok {
		r0 = rf(ctx, topic, genre)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(storytree.Opening)
	}

	return r0, ret.Error(1)
}

// ContinueStory provides a mock function with given fields: ctx, s, choice
func (_m *MockGenerator) ContinueStory(ctx context.Context, s *storytree.Story, choice string) (storytree.Continuation, error) {
	ret := _m.Called(ctx, s, choice)

	var r0 storytree.Continuation
	if rf, ok := ret.Get(0).(func(context.Context, *storytree.Story, string) storytree.Continuation); ok {
		r0 = rf(ctx, s, choice)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(storytree.Continuation)
	}

	return r0, ret.Error(1)
}

// NewMockGenerator creates a new instance of MockGenerator. It also registers a cleanup function to assert the mocks expectations.
func NewMockGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGenerator {
	m := &MockGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ storytree.Generator = (*MockGenerator)(nil)

// MockCompleter is a mock type for the generator.Completer type
type MockCompleter struct {
	mock.Mock
}

// Complete provides a mock function with given fields: ctx, system, user
func (_m *MockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	ret := _m.Called(ctx, system, user)
	return ret.String(0), ret.Error(1)
}

// NewMockCompleter creates a new instance of MockCompleter. It also registers a cleanup function to assert the mocks expectations.
func NewMockCompleter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCompleter {
	m := &MockCompleter{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ generator.Completer = (*MockCompleter)(nil)
