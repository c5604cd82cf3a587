package app

import (
	"context"
	"errors"
	"testing"

	"github.com/denchenko/mrdigest/internal/adapters/secondary/cache"
	"github.com/denchenko/mrdigest/internal/adapters/secondary/repository/mocks"
	"github.com/denchenko/mrdigest/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

type testDeps struct {
	repo      *mocks.MockRepository
	resolver  *mocks.MockResolver
	extractor *mocks.MockExtractor
}

func newTestApp(t *testing.T) (*App, testDeps) {
	t.Helper()

	deps := testDeps{
		repo:      &mocks.MockRepository{},
		resolver:  &mocks.MockResolver{},
		extractor: &mocks.MockExtractor{},
	}

	app, err := NewApp(deps.repo, deps.resolver, deps.extractor, func() WindowCache {
		return cache.NewInMemoryCache()
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		deps.repo.AssertExpectations(t)
		deps.resolver.AssertExpectations(t)
		deps.extractor.AssertExpectations(t)
	})

	return app, deps
}

// scenarioDiscussions returns one system-only discussion, one code
// discussion and one general discussion with two notes.
func scenarioDiscussions() []*domain.Discussion {
	return []*domain.Discussion{
		{
			ID: "d1",
			Notes: []*domain.Note{
				{ID: 1, Body: "added 1 commit", System: true},
				{ID: 2, Body: "approved this merge request", System: true},
			},
		},
		{
			ID: "d2",
			Notes: []*domain.Note{
				{
					ID:     3,
					Body:   "Extract this into a helper.",
					Author: &domain.User{Username: "alice", Name: "Alice"},
					Position: &domain.Position{
						NewPath: "a.py",
						NewLine: intPtr(42),
						HeadSHA: "abc123",
					},
				},
			},
		},
		{
			ID: "d3",
			Notes: []*domain.Note{
				{ID: 4, Body: "Please add tests.", Author: &domain.User{Username: "bob"}},
				{ID: 5, Body: "Done, see ![shot](/uploads/ab/shot.png)", Author: &domain.User{Username: "carol", Name: "Carol"}},
			},
		},
	}
}

func TestNewApp(t *testing.T) {
	app, err := NewApp(&mocks.MockRepository{}, nil, &mocks.MockExtractor{}, nil)

	require.NoError(t, err)
	assert.NotNil(t, app.prompt)
}

func TestApp_GetCurrentUser(t *testing.T) {
	ctx := context.Background()
	app, deps := newTestApp(t)

	deps.repo.On("GetCurrentUser", ctx).Return(nil, &domain.Error{Kind: domain.ErrAuth}).Once()

	user, err := app.GetCurrentUser(ctx)

	require.Error(t, err)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestApp_ListMergeRequests(t *testing.T) {
	tests := []struct {
		name      string
		state     string
		wantState string
	}{
		{name: "default state", state: "", wantState: "all"},
		{name: "explicit state", state: "merged", wantState: "merged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			app, deps := newTestApp(t)

			expected := []*domain.MergeRequest{{IID: 1}}
			deps.repo.On("ListMergeRequests", ctx, "group/proj", tt.wantState).Return(expected, nil).Once()

			mrs, err := app.ListMergeRequests(ctx, "group/proj", tt.state)

			require.NoError(t, err)
			assert.Equal(t, expected, mrs)
		})
	}
}

func TestApp_ListProjects(t *testing.T) {
	ctx := context.Background()
	app, deps := newTestApp(t)

	expected := []*domain.Project{{ID: 1, Path: "acme/billing"}}
	deps.repo.On("ListProjects", ctx, "bill", 10).Return(expected, nil).Once()

	projects, err := app.ListProjects(ctx, domain.ProjectQuery{Search: "bill", Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, expected, projects)
}

func TestApp_ListStateEvents(t *testing.T) {
	ctx := context.Background()
	app, deps := newTestApp(t)

	failure := errors.New("boom")
	deps.repo.On("ListStateEvents", ctx, "group/proj", 7).Return(nil, failure).Once()

	events, err := app.ListStateEvents(ctx, "group/proj", 7)

	assert.ErrorIs(t, err, failure)
	assert.Nil(t, events)
}
