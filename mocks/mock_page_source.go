package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"plansift/internal/domain"
	"plansift/internal/port"
)

// MockPageSource is a mock implementation of port.PageSource.
type MockPageSource struct {
	mock.Mock
}

func (m *MockPageSource) ReadPDF(ctx context.Context, page domain.PageRef) ([]byte, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPageSource) ReadPageImage(ctx context.Context, page domain.PageRef) ([]byte, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPageSource) Geometry(ctx context.Context, page domain.PageRef) (*port.PDFGeometry, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.PDFGeometry), args.Error(1)
}
