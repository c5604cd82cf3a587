package domain

import "errors"

// AttachmentFailure records one image reference that was not downloaded.
type AttachmentFailure struct {
	URL string `json:"url"`
	Err error  `json:"-"`
}

// Soft reports whether the failure is expected noise rather than a fault.
func (f AttachmentFailure) Soft() bool {
	return errors.Is(f.Err, ErrNotImage) || errors.Is(f.Err, ErrNotFound)
}

// AttachmentReport is the outcome of one attachment resolution pass.
type AttachmentReport struct {
	Attachments AttachmentMap       `json:"attachments"`
	Failures    []AttachmentFailure `json:"-"`
}

// SoftFailures counts the failures that are not faults.
func (r *AttachmentReport) SoftFailures() int {
	if r == nil {
		return 0
	}

	n := 0
	for _, f := range r.Failures {
		if f.Soft() {
			n++
		}
	}

	return n
}
