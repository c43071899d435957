package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"plansift/internal/domain"
)

// MockTokenProvider is a mock implementation of port.TokenProvider.
type MockTokenProvider struct {
	mock.Mock
}

func (m *MockTokenProvider) Tokens(ctx context.Context, page domain.PageRef) ([]domain.TextToken, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TextToken), args.Error(1)
}
