package service

import (
	"context"

	"fleet-route-api/internal/features/optimization/domain"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of ports.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Submit(ctx context.Context, req *domain.Request) (domain.Submission, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Submission), args.Error(1)
}

func (m *MockProvider) Poll(ctx context.Context, id string) (*domain.Solution, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Solution), args.Bool(1), args.Error(2)
}
