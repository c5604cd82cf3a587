package mocks

import (
	"context"

	"github.com/denchenko/mrdigest/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of app.Repository.
type MockRepository struct {
	mock.Mock
}

// GetCurrentUser mocks the GetCurrentUser method.
func (m *MockRepository) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.User), args.Error(1)
}

// GetProject mocks the GetProject method.
func (m *MockRepository) GetProject(ctx context.Context, path string) (*domain.Project, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Project), args.Error(1)
}

// ListProjects mocks the ListProjects method.
func (m *MockRepository) ListProjects(ctx context.Context, query domain.ProjectQuery) ([]*domain.Project, error) {
	// Match is a func and cannot be compared, only Search and Limit are matched.
	args := m.Called(ctx, query.Search, query.Limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*domain.Project), args.Error(1)
}

// ListMergeRequests mocks the ListMergeRequests method.
func (m *MockRepository) ListMergeRequests(
	ctx context.Context,
	projectPath, state string,
) ([]*domain.MergeRequest, error) {
	args := m.Called(ctx, projectPath, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*domain.MergeRequest), args.Error(1)
}

// GetMergeRequest mocks the GetMergeRequest method.
func (m *MockRepository) GetMergeRequest(
	ctx context.Context,
	projectPath string,
	mrIID int,
) (*domain.MergeRequest, error) {
	args := m.Called(ctx, projectPath, mrIID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.MergeRequest), args.Error(1)
}

// ListDiscussions mocks the ListDiscussions method.
func (m *MockRepository) ListDiscussions(
	ctx context.Context,
	projectPath string,
	mrIID int,
) ([]*domain.Discussion, error) {
	args := m.Called(ctx, projectPath, mrIID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*domain.Discussion), args.Error(1)
}

// ListNotes mocks the ListNotes method.
func (m *MockRepository) ListNotes(ctx context.Context, projectPath string, mrIID int) ([]*domain.Note, error) {
	args := m.Called(ctx, projectPath, mrIID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*domain.Note), args.Error(1)
}

// ListStateEvents mocks the ListStateEvents method.
func (m *MockRepository) ListStateEvents(
	ctx context.Context,
	projectPath string,
	mrIID int,
) ([]*domain.StateEvent, error) {
	args := m.Called(ctx, projectPath, mrIID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*domain.StateEvent), args.Error(1)
}

// GetFileWindow mocks the GetFileWindow method.
func (m *MockRepository) GetFileWindow(
	ctx context.Context,
	projectPath, filePath string,
	line, contextLines int,
	ref string,
) (*domain.FileLineWindow, error) {
	args := m.Called(ctx, projectPath, filePath, line, contextLines, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.FileLineWindow), args.Error(1)
}
