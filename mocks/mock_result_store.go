package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"resumetailor/internal/port"
)

// MockResultStore is a mock implementation of port.ResultStore.
// Stored bodies are drained into Stored so tests can inspect them.
type MockResultStore struct {
	mock.Mock
	Stored [][]byte
}

func (m *MockResultStore) Put(ctx context.Context, input port.StoreInput) (*port.StoredResult, error) {
	if input.Body != nil {
		body, _ := io.ReadAll(input.Body)
		m.Stored = append(m.Stored, body)
	}
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.StoredResult), args.Error(1)
}

func (m *MockResultStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockResultStore) DownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}
