package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"plansift/internal/port"
)

// MockDetector is a mock implementation of port.Detector.
type MockDetector struct {
	mock.Mock
}

func (m *MockDetector) Detect(ctx context.Context, pageID string, imageBytes []byte) ([]port.Detection, error) {
	args := m.Called(ctx, pageID, imageBytes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.Detection), args.Error(1)
}
