package ascii

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/denchenko/mrdigest/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDiscussions(t *testing.T) {
	line := 42
	discussions := []*domain.Discussion{
		{ID: "sys", Notes: []*domain.Note{{Body: "added 1 commit", System: true}}},
		{
			ID: "code",
			Notes: []*domain.Note{{
				Body:     "See ![shot](/uploads/ab/shot.png)",
				Author:   &domain.User{Username: "alice", Name: "Alice"},
				Position: &domain.Position{NewPath: "a.py", NewLine: &line},
			}},
		},
		{ID: "general", Notes: []*domain.Note{{Body: "LGTM", Author: &domain.User{Username: "bob"}}}},
	}
	report := &domain.AttachmentReport{
		Attachments: domain.AttachmentMap{"/uploads/ab/shot.png": "images/shot.png"},
		Failures:    []domain.AttachmentFailure{{URL: "/uploads/cd/gone.png", Err: domain.ErrNotFound}},
	}
	mr := &domain.MergeRequest{IID: 7, Title: "Add cache", State: domain.StateOpened, CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}

	out, err := FormatDiscussions("group/proj", mr, discussions, report)
	require.NoError(t, err)

	assert.Contains(t, out, "!7 Add cache")
	assert.Contains(t, out, "2 discussions, 2 comments (1 code, 1 general)")
	assert.Contains(t, out, "a.py:42")
	assert.Contains(t, out, "](images/shot.png)")
	assert.NotContains(t, out, "added 1 commit")
	assert.Contains(t, out, "1 image saved.")
	assert.Contains(t, out, "skipped: /uploads/cd/gone.png")
}

func TestFormatDiscussions_NoReport(t *testing.T) {
	out, err := FormatDiscussions("group/proj", nil, nil, nil)
	require.NoError(t, err)

	assert.Contains(t, out, "0 discussions, 0 comments")
}

func TestFormatWindow(t *testing.T) {
	window, err := domain.NewFileLineWindow("a.py", "one\ntwo\nthree\nfour\n", 2, 1)
	require.NoError(t, err)

	out, err := FormatWindow("d2", window)
	require.NoError(t, err)

	assert.Contains(t, out, ">     2 │ two")
	assert.Contains(t, out, "      1 │ one")
	assert.Contains(t, out, "lines 1-3 of 4, discussion d2")
}

func TestFormatPractices(t *testing.T) {
	out, err := FormatPractices(1, "1. Name things.\n2. Test things.\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Best practices from 1 discussion\033[0m")
	assert.Contains(t, out, "│ 2. Test things.")
}

func TestFormatStateEvents(t *testing.T) {
	out, err := FormatStateEvents(7, []*domain.StateEvent{{State: "merged", User: &domain.User{Username: "carol"}}})
	require.NoError(t, err)

	assert.Contains(t, out, "merged")
	assert.Contains(t, out, "by carol")

	out, err = FormatStateEvents(7, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No state changes.")
}

func TestFormatProjects(t *testing.T) {
	out, err := FormatProjects([]*domain.Project{{Path: "acme/billing", Visibility: "private", Description: "line one\n\nline two"}})
	require.NoError(t, err)

	assert.Contains(t, out, "[private]")
	assert.Contains(t, out, "line one; line two")
	assert.Contains(t, out, "1 project,")
}

func TestFormatBoxTitle(t *testing.T) {
	title := formatBoxTitle("Projects")

	assert.True(t, strings.HasPrefix(title, "┌─ Projects "))
	assert.True(t, strings.HasSuffix(title, "┐"))
	assert.Equal(t, boxWidth, len([]rune(title)))
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "short", text: "abc", expected: "abc"},
		{name: "long", text: "abcdefgh", expected: "abcd..."},
		{name: "multibyte", text: "äöüäöüäö", expected: "äöüä..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncateText(tt.text, 7, 4))
		})
	}
}

func TestFormatLine(t *testing.T) {
	assert.Equal(t, "N/A", formatLine(0))
	assert.Equal(t, "12", formatLine(12))
}

func TestExecuteTemplate_Error(t *testing.T) {
	_, err := executeTemplate("broken", "{{.Missing", nil)
	require.Error(t, err)

	_, err = executeTemplate("exec", "{{.Missing.Field}}", struct{}{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrParse))
}
