package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachmentFailure_Soft(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "html instead of image", err: fmt.Errorf("text/html: %w", ErrNotImage), expected: true},
		{name: "missing upload", err: NewStatusError(404, "upload", ""), expected: true},
		{name: "forbidden", err: NewStatusError(403, "upload", ""), expected: false},
		{name: "timeout", err: &Error{Kind: ErrTimeout}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AttachmentFailure{URL: "u", Err: tt.err}.Soft())
		})
	}
}

func TestAttachmentReport_SoftFailures(t *testing.T) {
	var empty *AttachmentReport
	assert.Zero(t, empty.SoftFailures())

	report := &AttachmentReport{Failures: []AttachmentFailure{
		{URL: "a", Err: ErrNotImage},
		{URL: "b", Err: &Error{Kind: ErrNetwork}},
		{URL: "c", Err: &Error{Kind: ErrNotFound}},
	}}
	assert.Equal(t, 2, report.SoftFailures())
}
