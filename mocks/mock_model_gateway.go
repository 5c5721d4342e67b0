package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"workwise/internal/port"
)

// MockModelGateway is a mock implementation of port.ModelGateway.
type MockModelGateway struct {
	mock.Mock
}

func (m *MockModelGateway) IsConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockModelGateway) CheckAvailability(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockModelGateway) Query(ctx context.Context, prompt string, opts port.QueryOptions) (*port.ModelResponse, error) {
	args := m.Called(ctx, prompt, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ModelResponse), args.Error(1)
}

func (m *MockModelGateway) QueryWithImages(ctx context.Context, prompt string, images []string, opts port.QueryOptions) (*port.ModelResponse, error) {
	args := m.Called(ctx, prompt, images, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ModelResponse), args.Error(1)
}
