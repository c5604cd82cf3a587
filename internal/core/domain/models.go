package domain

import "time"

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// DisplayName returns the user's full name, falling back to the username.
func (u *User) DisplayName() string {
	if u == nil {
		return "Unknown"
	}
	if u.Name != "" {
		return u.Name
	}
	if u.Username != "" {
		return u.Username
	}

	return "Unknown"
}

type Project struct {
	ID          int    `json:"id"`
	Path        string `json:"path"`
	Name        string `json:"name"`
	Visibility  string `json:"visibility"`
	Description string `json:"description"`
	WebURL      string `json:"web_url"`
}

type MergeRequestState string

const (
	StateOpened MergeRequestState = "opened"
	StateClosed MergeRequestState = "closed"
	StateMerged MergeRequestState = "merged"
	StateLocked MergeRequestState = "locked"
)

type MergeRequest struct {
	IID          int               `json:"iid"`
	ProjectID    int               `json:"project_id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	State        MergeRequestState `json:"state"`
	Author       *User             `json:"author"`
	Assignees    []*User           `json:"assignees"`
	Reviewers    []*User           `json:"reviewers"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	MergedAt     *time.Time        `json:"merged_at,omitempty"`
	WebURL       string            `json:"web_url"`
	SourceBranch string            `json:"source_branch"`
	TargetBranch string            `json:"target_branch"`

	// RawCreatedAt is the created_at value exactly as the server sent it.
	RawCreatedAt string `json:"-"`
}

// Position anchors a note or a discussion to a file line in a diff.
// Line numbers are nil when the server omits them.
type Position struct {
	NewPath  string `json:"new_path"`
	OldPath  string `json:"old_path"`
	NewLine  *int   `json:"new_line,omitempty"`
	OldLine  *int   `json:"old_line,omitempty"`
	BaseSHA  string `json:"base_sha"`
	HeadSHA  string `json:"head_sha"`
	StartSHA string `json:"start_sha"`
	LineType string `json:"line_type,omitempty"`
}

// FilePath prefers the new side of the diff.
func (p *Position) FilePath() string {
	if p.NewPath != "" {
		return p.NewPath
	}

	return p.OldPath
}

// Line prefers the new side of the diff. It returns 0 when neither side has a line.
func (p *Position) Line() int {
	if p.NewLine != nil {
		return *p.NewLine
	}
	if p.OldLine != nil {
		return *p.OldLine
	}

	return 0
}

type Note struct {
	ID         int       `json:"id"`
	Author     *User     `json:"author"`
	CreatedAt  time.Time `json:"created_at"`
	Body       string    `json:"body"`
	System     bool      `json:"system"`
	Resolvable bool      `json:"resolvable"`
	Resolved   bool      `json:"resolved"`
	Position   *Position `json:"position,omitempty"`
}

type Discussion struct {
	ID             string    `json:"id"`
	IndividualNote bool      `json:"individual_note"`
	Notes          []*Note   `json:"notes"`
	Position       *Position `json:"position,omitempty"`
}

type StateEvent struct {
	ID        int       `json:"id"`
	User      *User     `json:"user"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

type FileLine struct {
	Number   int    `json:"number"`
	Content  string `json:"content"`
	IsTarget bool   `json:"is_target"`
}

type FileLineWindow struct {
	FilePath   string     `json:"file_path"`
	TargetLine int        `json:"target_line"`
	StartLine  int        `json:"start_line"`
	EndLine    int        `json:"end_line"`
	TotalLines int        `json:"total_lines"`
	Lines      []FileLine `json:"lines"`
}

type CommentCounts struct {
	Discussions int `json:"discussions"`
	Total       int `json:"total"`
	Code        int `json:"code"`
	General     int `json:"general"`
}
