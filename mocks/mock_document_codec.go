package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"resumetailor/internal/domain"
)

// MockDocumentCodec is a mock implementation of port.DocumentCodec.
type MockDocumentCodec struct {
	mock.Mock
	Fmt domain.Format
}

func (m *MockDocumentCodec) Format() domain.Format {
	return m.Fmt
}

func (m *MockDocumentCodec) Extract(ctx context.Context, data []byte) (*domain.SectionedDocument, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SectionedDocument), args.Error(1)
}

func (m *MockDocumentCodec) Inject(ctx context.Context, data []byte, rs domain.RewriteSet) ([]byte, error) {
	args := m.Called(ctx, data, rs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
