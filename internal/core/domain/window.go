package domain

import "strings"

// DefaultContextLines is the number of lines shown around a target line.
const DefaultContextLines = 3

// NewFileLineWindow cuts the lines around target out of content.
// The window is [max(1, target-contextLines), min(total, target+contextLines)].
func NewFileLineWindow(filePath, content string, target, contextLines int) (*FileLineWindow, error) {
	if contextLines < 0 {
		contextLines = 0
	}

	lines := splitLines(content)
	total := len(lines)

	if target < 1 || target > total {
		return nil, NewRangeError("line %d is out of range (file %s has %d lines)", target, filePath, total)
	}

	start := max(1, target-contextLines)
	end := min(total, target+contextLines)

	window := &FileLineWindow{
		FilePath:   filePath,
		TargetLine: target,
		StartLine:  start,
		EndLine:    end,
		TotalLines: total,
		Lines:      make([]FileLine, 0, end-start+1),
	}

	for n := start; n <= end; n++ {
		window.Lines = append(window.Lines, FileLine{
			Number:   n,
			Content:  lines[n-1],
			IsTarget: n == target,
		})
	}

	return window, nil
}

// splitLines splits on \n, \r\n and \r without producing a trailing empty line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.TrimSuffix(content, "\n")

	return strings.Split(content, "\n")
}
