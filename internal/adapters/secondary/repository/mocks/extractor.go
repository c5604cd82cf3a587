package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockExtractor is a mock implementation of app.Extractor.
type MockExtractor struct {
	mock.Mock
}

// Extract mocks the Extract method.
func (m *MockExtractor) Extract(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)

	return args.String(0), args.Error(1)
}
