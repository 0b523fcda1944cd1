package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"resumetailor/internal/domain"
	"resumetailor/internal/service"
)

// MockTailorService is a mock implementation of service.TailorService.
type MockTailorService struct {
	mock.Mock
}

func (m *MockTailorService) Sections(ctx context.Context, input service.DocumentInput) (*domain.SectionedDocument, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SectionedDocument), args.Error(1)
}

func (m *MockTailorService) Rewrite(ctx context.Context, input service.RewriteInput) (*service.RewriteResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RewriteResult), args.Error(1)
}

func (m *MockTailorService) Tailor(ctx context.Context, input service.TailorInput) (*service.TailorResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TailorResult), args.Error(1)
}
