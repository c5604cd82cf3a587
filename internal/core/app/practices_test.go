package app

import (
	"context"
	"strings"
	"testing"

	"github.com/denchenko/mrdigest/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestConsolidate(t *testing.T) {
	got := Consolidate(scenarioDiscussions())

	want := "=== Discussion d2 ===\n" +
		"File: a.py, Line: 42\n" +
		"\nComment 1 by Alice:\nExtract this into a helper.\n" +
		"\n" +
		"=== Discussion d3 ===\n" +
		"\nComment 1 by bob:\nPlease add tests.\n" +
		"\nComment 2 by Carol:\nDone, see ![shot](/uploads/ab/shot.png)\n"

	assert.Equal(t, want, got)
}

func TestConsolidate_UnknownLineAndAuthor(t *testing.T) {
	discussions := []*domain.Discussion{
		{
			ID:       "d9",
			Position: &domain.Position{OldPath: "gone.go"},
			Notes:    []*domain.Note{{Body: "why?"}},
		},
	}

	got := Consolidate(discussions)

	assert.Equal(t, "=== Discussion d9 ===\nFile: gone.go, Line: N/A\n\nComment 1 by Unknown:\nwhy?\n", got)
}

func TestConsolidate_OnlySystemNotes(t *testing.T) {
	assert.Empty(t, Consolidate(scenarioDiscussions()[:1]))
	assert.Empty(t, Consolidate(nil))
}

func TestApp_ExtractBestPractices(t *testing.T) {
	tests := []struct {
		name        string
		discussions []*domain.Discussion
		setupMock   func(*testDeps)
		want        string
		wantErr     error
	}{
		{
			name:        "no discussions",
			discussions: nil,
			setupMock:   func(*testDeps) {},
			wantErr:     domain.ErrNoComments,
		},
		{
			name:        "system notes only",
			discussions: scenarioDiscussions()[:1],
			setupMock:   func(*testDeps) {},
			wantErr:     domain.ErrNoComments,
		},
		{
			name:        "answer is returned",
			discussions: scenarioDiscussions(),
			setupMock: func(d *testDeps) {
				d.extractor.On("Extract", mock.Anything, mock.MatchedBy(func(prompt string) bool {
					return strings.HasPrefix(prompt, "You are analyzing GitLab merge request review comments") &&
						strings.Contains(prompt, "=== REVIEW COMMENTS TO ANALYZE ===\n=== Discussion d2 ===") &&
						!strings.Contains(prompt, "{{")
				})).Return("1. Keep helpers small.", nil).Once()
			},
			want: "1. Keep helpers small.",
		},
		{
			name:        "classified failure passes through",
			discussions: scenarioDiscussions(),
			setupMock: func(d *testDeps) {
				d.extractor.On("Extract", mock.Anything, mock.Anything).
					Return("", &domain.Error{Kind: domain.ErrQuota, Resource: "llm request"}).Once()
			},
			wantErr: domain.ErrQuota,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, deps := newTestApp(t)
			tt.setupMock(&deps)

			got, err := app.ExtractBestPractices(context.Background(), tt.discussions)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
