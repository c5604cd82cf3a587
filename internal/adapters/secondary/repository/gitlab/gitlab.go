package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/denchenko/mrdigest/internal/core/domain"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

const (
	perPageLimit       = 100
	projectsPerPage    = 50
	mergeRequestsLimit = 500

	defaultRef = "HEAD"

	sortKeyLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Repository implements the app.Repository interface for GitLab.
type Repository struct {
	client *gitlab.Client
}

// NewRepository creates a new GitLab repository instance.
func NewRepository(client *gitlab.Client) *Repository {
	return &Repository{client: client}
}

// GetCurrentUser gets the user owning the access token.
func (r *Repository) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	user, resp, err := r.client.Users.CurrentUser(gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", classify(resp, err, "current user"))
	}

	return &domain.User{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
	}, nil
}

// GetProject retrieves a project by path.
func (r *Repository) GetProject(ctx context.Context, path string) (*domain.Project, error) {
	project, resp, err := r.client.Projects.GetProject(path, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", classify(resp, err, "project "+path))
	}

	return projectToDomain(project), nil
}

// ListProjects lists projects the token can access, narrowed by query.
func (r *Repository) ListProjects(ctx context.Context, query domain.ProjectQuery) ([]*domain.Project, error) {
	fetch := func(ctx context.Context, page int) ([]*domain.Project, error) {
		opts := &gitlab.ListProjectsOptions{
			ListOptions: gitlab.ListOptions{
				Page:    page,
				PerPage: projectsPerPage,
			},
			OrderBy:        pointerOf("last_activity_at"),
			Sort:           pointerOf("desc"),
			Simple:         pointerOf(false),
			MinAccessLevel: pointerOf(gitlab.GuestPermissions),
		}
		if query.Search != "" {
			opts.Search = pointerOf(query.Search)
		}

		projects, resp, err := r.client.Projects.ListProjects(opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, classify(resp, err, "projects")
		}

		result := make([]*domain.Project, 0, len(projects))
		for _, project := range projects {
			result = append(result, projectToDomain(project))
		}

		return result, nil
	}

	projects, err := fetchAll(ctx, fetch, pageOptions[*domain.Project]{
		Limit: query.Limit,
		Keep:  query.Match,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

// ListDiscussions lists every discussion of a merge request.
func (r *Repository) ListDiscussions(ctx context.Context, projectPath string, mrIID int) ([]*domain.Discussion, error) {
	path := fmt.Sprintf("projects/%s/merge_requests/%d/discussions", pathEscape(projectPath), mrIID)
	resource := mergeRequestResource(projectPath, mrIID)

	fetch := func(ctx context.Context, page int) ([]*wireDiscussion, error) {
		var discussions []*wireDiscussion
		opts := &gitlab.ListOptions{Page: page, PerPage: perPageLimit}
		if err := r.get(ctx, path, opts, &discussions, resource); err != nil {
			return nil, err
		}

		return discussions, nil
	}

	wire, err := fetchAll(ctx, fetch, pageOptions[*wireDiscussion]{})
	if err != nil {
		return nil, fmt.Errorf("failed to list discussions: %w", err)
	}

	discussions := make([]*domain.Discussion, 0, len(wire))
	for _, d := range wire {
		if d != nil {
			discussions = append(discussions, d.toDomain())
		}
	}

	return discussions, nil
}

// ListNotes lists the notes of a merge request, oldest first.
func (r *Repository) ListNotes(ctx context.Context, projectPath string, mrIID int) ([]*domain.Note, error) {
	resource := mergeRequestResource(projectPath, mrIID)

	fetch := func(ctx context.Context, page int) ([]*gitlab.Note, error) {
		opts := &gitlab.ListMergeRequestNotesOptions{
			ListOptions: gitlab.ListOptions{
				Page:    page,
				PerPage: perPageLimit,
			},
			OrderBy: pointerOf("created_at"),
			Sort:    pointerOf("asc"),
		}

		notes, resp, err := r.client.Notes.ListMergeRequestNotes(projectPath, mrIID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, classify(resp, err, resource)
		}

		return notes, nil
	}

	notes, err := fetchAll(ctx, fetch, pageOptions[*gitlab.Note]{})
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	result := make([]*domain.Note, 0, len(notes))
	for _, note := range notes {
		result = append(result, noteToDomain(note))
	}

	return result, nil
}

// ListMergeRequests lists up to 500 merge requests of a project, newest first.
func (r *Repository) ListMergeRequests(ctx context.Context, projectPath, state string) ([]*domain.MergeRequest, error) {
	path := fmt.Sprintf("projects/%s/merge_requests", pathEscape(projectPath))
	resource := "project " + projectPath

	fetch := func(ctx context.Context, page int) ([]*wireMergeRequest, error) {
		opts := &gitlab.ListProjectMergeRequestsOptions{
			ListOptions: gitlab.ListOptions{
				Page:    page,
				PerPage: perPageLimit,
			},
			OrderBy: pointerOf("created_at"),
			Sort:    pointerOf("desc"),
		}
		if state != "" {
			opts.State = pointerOf(state)
		}

		var mrs []*wireMergeRequest
		if err := r.get(ctx, path, opts, &mrs, resource); err != nil {
			return nil, err
		}

		return mrs, nil
	}

	wire, err := fetchAll(ctx, fetch, pageOptions[*wireMergeRequest]{Limit: mergeRequestsLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list merge requests: %w", err)
	}

	mrs := make([]*domain.MergeRequest, 0, len(wire))
	for _, mr := range wire {
		if mr != nil {
			mrs = append(mrs, mr.toDomain())
		}
	}

	sortMergeRequests(mrs)

	return mrs, nil
}

// GetMergeRequest retrieves a merge request by project path and IID.
func (r *Repository) GetMergeRequest(ctx context.Context, projectPath string, mrIID int) (*domain.MergeRequest, error) {
	path := fmt.Sprintf("projects/%s/merge_requests/%d", pathEscape(projectPath), mrIID)

	var mr wireMergeRequest
	if err := r.get(ctx, path, nil, &mr, mergeRequestResource(projectPath, mrIID)); err != nil {
		return nil, fmt.Errorf("failed to get merge request: %w", err)
	}

	return mr.toDomain(), nil
}

// ListStateEvents lists the resource state events of a merge request.
func (r *Repository) ListStateEvents(ctx context.Context, projectPath string, mrIID int) ([]*domain.StateEvent, error) {
	resource := mergeRequestResource(projectPath, mrIID)

	fetch := func(ctx context.Context, page int) ([]*gitlab.StateEvent, error) {
		opts := &gitlab.ListStateEventsOptions{
			ListOptions: gitlab.ListOptions{
				Page:    page,
				PerPage: perPageLimit,
			},
		}

		events, resp, err := r.client.ResourceStateEvents.ListMergeStateEvents(
			projectPath, mrIID, opts, gitlab.WithContext(ctx),
		)
		if err != nil {
			return nil, classify(resp, err, resource)
		}

		return events, nil
	}

	events, err := fetchAll(ctx, fetch, pageOptions[*gitlab.StateEvent]{})
	if err != nil {
		return nil, fmt.Errorf("failed to list state events: %w", err)
	}

	result := make([]*domain.StateEvent, 0, len(events))
	for _, event := range events {
		domainEvent := &domain.StateEvent{
			ID:    event.ID,
			State: string(event.State),
		}
		if event.User != nil {
			domainEvent.User = &domain.User{
				ID:       event.User.ID,
				Username: event.User.Username,
				Name:     event.User.Name,
			}
		}
		if event.CreatedAt != nil {
			domainEvent.CreatedAt = *event.CreatedAt
		}
		result = append(result, domainEvent)
	}

	return result, nil
}

// GetFileRaw returns the content of a file at ref. A missing file is ErrNotFound.
func (r *Repository) GetFileRaw(ctx context.Context, projectPath, filePath, ref string) (string, error) {
	if ref == "" {
		ref = defaultRef
	}

	data, resp, err := r.client.RepositoryFiles.GetRawFile(
		projectPath,
		filePath,
		&gitlab.GetRawFileOptions{Ref: pointerOf(ref)},
		gitlab.WithContext(ctx),
	)
	if err != nil {
		resource := fmt.Sprintf("file %s at %s", filePath, ref)

		return "", fmt.Errorf("failed to get file content: %w", classify(resp, err, resource))
	}

	return string(data), nil
}

// GetFileWindow returns the lines around line in a file at ref.
func (r *Repository) GetFileWindow(
	ctx context.Context,
	projectPath, filePath string,
	line, contextLines int,
	ref string,
) (*domain.FileLineWindow, error) {
	if line < 1 {
		return nil, domain.NewRangeError("line %d is out of range", line)
	}

	content, err := r.GetFileRaw(ctx, projectPath, filePath, ref)
	if err != nil {
		return nil, err
	}

	window, err := domain.NewFileLineWindow(filePath, content, line, contextLines)
	if err != nil {
		return nil, fmt.Errorf("failed to cut file window: %w", err)
	}

	return window, nil
}

// get performs a GET against an API path and decodes the body into v.
func (r *Repository) get(ctx context.Context, path string, opt, v any, resource string) error {
	req, err := r.client.NewRequest(http.MethodGet, path, opt, []gitlab.RequestOptionFunc{gitlab.WithContext(ctx)})
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req, v)

	return classify(resp, err, resource)
}

// sortMergeRequests orders merge requests by creation time, newest first.
// The server is asked for the same order; sorting again keeps the result
// stable when an instance ignores order_by. Timestamps that cannot be
// parsed compare by their raw value.
func sortMergeRequests(mrs []*domain.MergeRequest) {
	keys := make(map[*domain.MergeRequest]string, len(mrs))
	for _, mr := range mrs {
		keys[mr] = createdSortKey(mr)
	}

	sort.SliceStable(mrs, func(i, j int) bool {
		return keys[mrs[i]] > keys[mrs[j]]
	})
}

func createdSortKey(mr *domain.MergeRequest) string {
	if mr.CreatedAt.IsZero() {
		return mr.RawCreatedAt
	}

	return mr.CreatedAt.UTC().Format(sortKeyLayout)
}

func projectToDomain(project *gitlab.Project) *domain.Project {
	path := project.PathWithNamespace
	if path == "" {
		path = project.Path
	}

	return &domain.Project{
		ID:          project.ID,
		Path:        path,
		Name:        project.Name,
		Visibility:  string(project.Visibility),
		Description: project.Description,
		WebURL:      project.WebURL,
	}
}

func noteToDomain(note *gitlab.Note) *domain.Note {
	result := &domain.Note{
		ID:         note.ID,
		Body:       note.Body,
		System:     note.System,
		Resolvable: note.Resolvable,
		Resolved:   note.Resolved,
		Author: &domain.User{
			ID:       note.Author.ID,
			Username: note.Author.Username,
			Name:     note.Author.Name,
		},
	}

	if note.CreatedAt != nil {
		result.CreatedAt = *note.CreatedAt
	}

	if pos := note.Position; pos != nil {
		result.Position = &domain.Position{
			NewPath:  pos.NewPath,
			OldPath:  pos.OldPath,
			NewLine:  lineOrNil(pos.NewLine),
			OldLine:  lineOrNil(pos.OldLine),
			BaseSHA:  pos.BaseSHA,
			HeadSHA:  pos.HeadSHA,
			StartSHA: pos.StartSHA,
		}
	}

	return result
}

func mergeRequestResource(projectPath string, mrIID int) string {
	return fmt.Sprintf("merge request !%d in %s", mrIID, projectPath)
}

// pathEscape escapes a project path for use as a single URL segment.
func pathEscape(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), ".", "%2E")
}

func lineOrNil(line int) *int {
	if line <= 0 {
		return nil
	}

	return &line
}

func pointerOf[T any](v T) *T {
	return &v
}
