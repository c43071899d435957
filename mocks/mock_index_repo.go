package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"plansift/internal/domain"
)

// MockIndexRepo is a mock implementation of port.IndexRepository.
type MockIndexRepo struct {
	mock.Mock
}

func (m *MockIndexRepo) Replace(ctx context.Context, idx *domain.Index) error {
	args := m.Called(ctx, idx)
	return args.Error(0)
}

func (m *MockIndexRepo) Get(ctx context.Context, projectID uuid.UUID) (*domain.Index, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Index), args.Error(1)
}
