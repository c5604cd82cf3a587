package mocks

import (
	"context"

	"github.com/denchenko/mrdigest/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockResolver is a mock implementation of app.AttachmentResolver.
type MockResolver struct {
	mock.Mock
}

// Resolve mocks the Resolve method.
func (m *MockResolver) Resolve(
	ctx context.Context,
	discussions []*domain.Discussion,
	projectID int,
) (*domain.AttachmentReport, error) {
	args := m.Called(ctx, discussions, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.AttachmentReport), args.Error(1)
}
