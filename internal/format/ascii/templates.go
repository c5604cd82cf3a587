package ascii

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/denchenko/mrdigest/internal/core/domain"
)

const (
	noneString        = "None"
	descriptionMaxLen = 100
	descriptionTrunc  = 97
	boxWidth          = 100
	boxTitlePadding   = 5
	boxBottomPadding  = 2
	titleMaxLen       = 70
	titleTrunc        = 67
)

var (
	//go:embed user.tmpl
	userTemplate string

	//go:embed projects.tmpl
	projectsTemplate string

	//go:embed merge_requests.tmpl
	mergeRequestsTemplate string

	//go:embed discussions.tmpl
	discussionsTemplate string

	//go:embed window.tmpl
	windowTemplate string

	//go:embed state_events.tmpl
	stateEventsTemplate string

	//go:embed practices.tmpl
	practicesTemplate string
)

// ProjectsData holds data for the projects template.
type ProjectsData struct {
	Projects  []*domain.Project
	Timestamp time.Time
}

// MergeRequestsData holds data for the merge request list template.
type MergeRequestsData struct {
	ProjectPath   string
	MergeRequests []*domain.MergeRequest
	Timestamp     time.Time
}

// NoteEntry is a user note ready for display.
type NoteEntry struct {
	Author    string
	CreatedAt time.Time
	Body      string
}

// DiscussionEntry is a discussion with user notes ready for display.
type DiscussionEntry struct {
	ID       string
	IsCode   bool
	FilePath string
	Line     int
	Notes    []NoteEntry
}

// DiscussionsData holds data for the discussions template.
type DiscussionsData struct {
	ProjectPath  string
	MergeRequest *domain.MergeRequest
	Counts       domain.CommentCounts
	Discussions  []DiscussionEntry
	Images       int
	Failures     []domain.AttachmentFailure
	Timestamp    time.Time
}

// WindowData holds data for the file window template.
type WindowData struct {
	DiscussionID string
	Window       *domain.FileLineWindow
}

// StateEventsData holds data for the state events template.
type StateEventsData struct {
	MergeRequestIID int
	Events          []*domain.StateEvent
}

// PracticesData holds data for the best practices template.
type PracticesData struct {
	Discussions int
	Practices   string
	Timestamp   time.Time
}

// FormatUser formats the token owner.
func FormatUser(baseURL string, user *domain.User) (string, error) {
	data := struct {
		BaseURL string
		User    *domain.User
	}{BaseURL: baseURL, User: user}

	return executeTemplate("user", userTemplate, data)
}

// FormatProjects formats a project listing.
func FormatProjects(projects []*domain.Project) (string, error) {
	return executeTemplate("projects", projectsTemplate, ProjectsData{
		Projects:  projects,
		Timestamp: time.Now(),
	})
}

// FormatMergeRequests formats the merge requests of a project.
func FormatMergeRequests(projectPath string, mrs []*domain.MergeRequest) (string, error) {
	return executeTemplate("mergeRequests", mergeRequestsTemplate, MergeRequestsData{
		ProjectPath:   projectPath,
		MergeRequests: mrs,
		Timestamp:     time.Now(),
	})
}

// FormatDiscussions formats the user discussions of a merge request. Image
// references found in report are pointed at their local files.
func FormatDiscussions(
	projectPath string,
	mr *domain.MergeRequest,
	discussions []*domain.Discussion,
	report *domain.AttachmentReport,
) (string, error) {
	var attachments domain.AttachmentMap
	if report != nil {
		attachments = report.Attachments
	}

	data := DiscussionsData{
		ProjectPath:  projectPath,
		MergeRequest: mr,
		Counts:       domain.CountComments(discussions),
		Images:       len(attachments),
		Timestamp:    time.Now(),
	}
	if report != nil {
		data.Failures = report.Failures
	}

	for _, d := range domain.UserDiscussions(discussions) {
		c := d.Classify()
		entry := DiscussionEntry{
			ID:       d.ID,
			IsCode:   c.IsCode,
			FilePath: c.FilePath,
			Line:     c.Line,
		}
		for _, note := range d.UserNotes() {
			entry.Notes = append(entry.Notes, NoteEntry{
				Author:    note.Author.DisplayName(),
				CreatedAt: note.CreatedAt,
				Body:      attachments.Rewrite(note.Body),
			})
		}
		data.Discussions = append(data.Discussions, entry)
	}

	return executeTemplate("discussions", discussionsTemplate, data)
}

// FormatWindow formats the file lines around a code discussion.
func FormatWindow(discussionID string, window *domain.FileLineWindow) (string, error) {
	return executeTemplate("window", windowTemplate, WindowData{
		DiscussionID: discussionID,
		Window:       window,
	})
}

// FormatStateEvents formats the state changes of a merge request.
func FormatStateEvents(mrIID int, events []*domain.StateEvent) (string, error) {
	return executeTemplate("stateEvents", stateEventsTemplate, StateEventsData{
		MergeRequestIID: mrIID,
		Events:          events,
	})
}

// FormatPractices formats the extracted best practices.
func FormatPractices(discussions int, practices string) (string, error) {
	return executeTemplate("practices", practicesTemplate, PracticesData{
		Discussions: discussions,
		Practices:   strings.TrimSpace(practices),
		Timestamp:   time.Now(),
	})
}

func executeTemplate(name, templateStr string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(templateFuncs()).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime":          formatTime,
		"formatLine":          formatLine,
		"joinUsernames":       joinUsernames,
		"displayName":         func(u *domain.User) string { return u.DisplayName() },
		"truncateDescription": truncateDescription,
		"truncateTitle":       func(s string) string { return truncateText(s, titleMaxLen, titleTrunc) },
		"indent":              indent,
		"formatBoxTitle":      formatBoxTitle,
		"formatBoxBottom":     formatBoxBottom,
		"bold": func(text string) string {
			return "\033[1m" + text + "\033[0m"
		},
		"add": func(a, b int) int {
			return a + b
		},
		"pluralize": pluralize,
		"repeat":    strings.Repeat,
	}
}

func truncateDescription(desc string) string {
	// Replace multiple consecutive newlines with a single semicolon
	for strings.Contains(desc, "\n\n") {
		desc = strings.ReplaceAll(desc, "\n\n", "; ")
	}
	desc = strings.ReplaceAll(desc, "\n", "; ")

	return truncateText(desc, descriptionMaxLen, descriptionTrunc)
}

func formatBoxTitle(title string) string {
	titleMax := boxWidth - boxTitlePadding // space for ┌─, ─┐, and spaces

	// Strip ANSI escape codes for length calculation
	cleanTitle := strings.ReplaceAll(title, "\033[1m", "")
	cleanTitle = strings.ReplaceAll(cleanTitle, "\033[0m", "")

	t := []rune(cleanTitle)
	if len(t) > titleMax {
		t = t[:titleMax]
	}
	dashCount := max(boxWidth-len(t)-boxTitlePadding, 0)

	return "┌─ " + title + " " + strings.Repeat("─", dashCount) + "┐"
}

func formatBoxBottom() string {
	return "└" + strings.Repeat("─", boxWidth-boxBottomPadding) + "┘"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}

	return t.Format("2006-01-02 15:04:05")
}

func formatLine(line int) string {
	if line <= 0 {
		return "N/A"
	}

	return fmt.Sprintf("%d", line)
}

func joinUsernames(users []*domain.User) string {
	if len(users) == 0 {
		return noneString
	}
	usernames := make([]string, len(users))
	for i, user := range users {
		usernames[i] = user.Username
	}

	return strings.Join(usernames, ", ")
}

func indent(prefix, text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}

	return strings.Join(lines, "\n")
}

func truncateText(text string, maxLen, truncLen int) string {
	r := []rune(text)
	if len(r) > maxLen {
		return string(r[:truncLen]) + "..."
	}

	return text
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}

	return "s"
}
