package domain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twentyLines() string {
	lines := make([]string, 20)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}

	return strings.Join(lines, "\n") + "\n"
}

func TestNewFileLineWindow(t *testing.T) {
	window, err := NewFileLineWindow("a.go", twentyLines(), 10, 3)
	require.NoError(t, err)

	assert.Equal(t, 7, window.StartLine)
	assert.Equal(t, 13, window.EndLine)
	assert.Equal(t, 20, window.TotalLines)
	assert.Equal(t, 10, window.TargetLine)
	require.Len(t, window.Lines, 7)

	for i, line := range window.Lines {
		assert.Equal(t, 7+i, line.Number)
		assert.Equal(t, fmt.Sprintf("line %d", 7+i), line.Content)
		assert.Equal(t, i == 3, line.IsTarget)
	}
}

func TestNewFileLineWindow_Edges(t *testing.T) {
	tests := []struct {
		name          string
		target        int
		context       int
		expectedStart int
		expectedEnd   int
	}{
		{name: "clamped at top", target: 1, context: 3, expectedStart: 1, expectedEnd: 4},
		{name: "clamped at bottom", target: 20, context: 3, expectedStart: 17, expectedEnd: 20},
		{name: "zero context", target: 5, context: 0, expectedStart: 5, expectedEnd: 5},
		{name: "negative context is zero", target: 5, context: -2, expectedStart: 5, expectedEnd: 5},
		{name: "context larger than file", target: 10, context: 100, expectedStart: 1, expectedEnd: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window, err := NewFileLineWindow("a.go", twentyLines(), tt.target, tt.context)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedStart, window.StartLine)
			assert.Equal(t, tt.expectedEnd, window.EndLine)
			assert.Len(t, window.Lines, tt.expectedEnd-tt.expectedStart+1)
		})
	}
}

func TestNewFileLineWindow_OutOfRange(t *testing.T) {
	for _, target := range []int{0, -1, 21, 25} {
		t.Run(fmt.Sprintf("line %d", target), func(t *testing.T) {
			window, err := NewFileLineWindow("a.go", twentyLines(), target, 3)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRange)
			assert.Nil(t, window)
		})
	}
}

func TestNewFileLineWindow_EmptyFile(t *testing.T) {
	_, err := NewFileLineWindow("empty.go", "", 1, 3)

	assert.ErrorIs(t, err, ErrRange)
}

func TestNewFileLineWindow_CRLF(t *testing.T) {
	window, err := NewFileLineWindow("win.txt", "a\r\nb\r\nc", 2, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, window.TotalLines)
	assert.Equal(t, "b", window.Lines[1].Content)
}
