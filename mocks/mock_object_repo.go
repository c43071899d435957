package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"plansift/internal/domain"
)

// MockObjectRepo is a mock implementation of port.ObjectRepository.
type MockObjectRepo struct {
	mock.Mock
}

func (m *MockObjectRepo) ReplacePage(ctx context.Context, page domain.PageRef, objects []domain.ExtractedObject) error {
	args := m.Called(ctx, page, objects)
	return args.Error(0)
}

func (m *MockObjectRepo) GetByID(ctx context.Context, projectID uuid.UUID, id string) (*domain.ExtractedObject, error) {
	args := m.Called(ctx, projectID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedObject), args.Error(1)
}

func (m *MockObjectRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.ExtractedObject, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExtractedObject), args.Error(1)
}

func (m *MockObjectRepo) ListByPage(ctx context.Context, projectID uuid.UUID, pageID string) ([]domain.ExtractedObject, error) {
	args := m.Called(ctx, projectID, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExtractedObject), args.Error(1)
}
