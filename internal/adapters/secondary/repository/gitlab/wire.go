package gitlab

import (
	"time"

	"github.com/denchenko/mrdigest/internal/core/domain"
)

// The records below decode endpoints whose shape varies between GitLab
// versions. Every optional key is a pointer or a zero value; nothing is
// looked up dynamically.

type wireUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type wirePosition struct {
	BaseSHA  string `json:"base_sha"`
	StartSHA string `json:"start_sha"`
	HeadSHA  string `json:"head_sha"`
	OldPath  string `json:"old_path"`
	NewPath  string `json:"new_path"`
	OldLine  *int   `json:"old_line"`
	NewLine  *int   `json:"new_line"`
	// LineRange is only present on multi-line comments.
	LineRange *struct {
		Start *struct {
			Type string `json:"type"`
		} `json:"start"`
	} `json:"line_range"`
}

type wireNote struct {
	ID         int           `json:"id"`
	Body       string        `json:"body"`
	Author     *wireUser     `json:"author"`
	CreatedAt  string        `json:"created_at"`
	System     bool          `json:"system"`
	Resolvable bool          `json:"resolvable"`
	Resolved   bool          `json:"resolved"`
	Position   *wirePosition `json:"position"`
}

type wireDiscussion struct {
	ID             string        `json:"id"`
	IndividualNote bool          `json:"individual_note"`
	Notes          []*wireNote   `json:"notes"`
	Position       *wirePosition `json:"position"`
}

type wireMergeRequest struct {
	IID          int         `json:"iid"`
	ProjectID    int         `json:"project_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	State        string      `json:"state"`
	Author       *wireUser   `json:"author"`
	Assignees    []*wireUser `json:"assignees"`
	Reviewers    []*wireUser `json:"reviewers"`
	CreatedAt    string      `json:"created_at"`
	UpdatedAt    string      `json:"updated_at"`
	MergedAt     *string     `json:"merged_at"`
	WebURL       string      `json:"web_url"`
	SourceBranch string      `json:"source_branch"`
	TargetBranch string      `json:"target_branch"`
}

func (u *wireUser) toDomain() *domain.User {
	if u == nil {
		return nil
	}

	return &domain.User{ID: u.ID, Username: u.Username, Name: u.Name}
}

func usersToDomain(users []*wireUser) []*domain.User {
	result := make([]*domain.User, 0, len(users))
	for _, u := range users {
		if u != nil {
			result = append(result, u.toDomain())
		}
	}

	return result
}

func (p *wirePosition) toDomain() *domain.Position {
	if p == nil {
		return nil
	}

	pos := &domain.Position{
		NewPath:  p.NewPath,
		OldPath:  p.OldPath,
		NewLine:  p.NewLine,
		OldLine:  p.OldLine,
		BaseSHA:  p.BaseSHA,
		HeadSHA:  p.HeadSHA,
		StartSHA: p.StartSHA,
	}
	if p.LineRange != nil && p.LineRange.Start != nil {
		pos.LineType = p.LineRange.Start.Type
	}

	return pos
}

func (n *wireNote) toDomain() *domain.Note {
	return &domain.Note{
		ID:         n.ID,
		Author:     n.Author.toDomain(),
		CreatedAt:  parseTime(n.CreatedAt),
		Body:       n.Body,
		System:     n.System,
		Resolvable: n.Resolvable,
		Resolved:   n.Resolved,
		Position:   n.Position.toDomain(),
	}
}

func (d *wireDiscussion) toDomain() *domain.Discussion {
	notes := make([]*domain.Note, 0, len(d.Notes))
	for _, n := range d.Notes {
		if n != nil {
			notes = append(notes, n.toDomain())
		}
	}

	return &domain.Discussion{
		ID:             d.ID,
		IndividualNote: d.IndividualNote,
		Notes:          notes,
		Position:       d.Position.toDomain(),
	}
}

func (mr *wireMergeRequest) toDomain() *domain.MergeRequest {
	result := &domain.MergeRequest{
		IID:          mr.IID,
		ProjectID:    mr.ProjectID,
		Title:        mr.Title,
		Description:  mr.Description,
		State:        domain.MergeRequestState(mr.State),
		Author:       mr.Author.toDomain(),
		Assignees:    usersToDomain(mr.Assignees),
		Reviewers:    usersToDomain(mr.Reviewers),
		CreatedAt:    parseTime(mr.CreatedAt),
		UpdatedAt:    parseTime(mr.UpdatedAt),
		WebURL:       mr.WebURL,
		SourceBranch: mr.SourceBranch,
		TargetBranch: mr.TargetBranch,
		RawCreatedAt: mr.CreatedAt,
	}

	if mr.MergedAt != nil {
		if mergedAt := parseTime(*mr.MergedAt); !mergedAt.IsZero() {
			result.MergedAt = &mergedAt
		}
	}

	return result
}

// parseTime returns the zero time for values it cannot parse.
func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}

	return t
}
