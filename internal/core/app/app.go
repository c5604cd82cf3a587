package app

import (
	"context"
	"fmt"
	"text/template"

	"github.com/denchenko/mrdigest/internal/core/domain"
)

// Repository defines the interface for GitLab read operations (port).
type Repository interface {
	GetCurrentUser(ctx context.Context) (*domain.User, error)
	GetProject(ctx context.Context, path string) (*domain.Project, error)
	ListProjects(ctx context.Context, query domain.ProjectQuery) ([]*domain.Project, error)
	ListMergeRequests(ctx context.Context, projectPath, state string) ([]*domain.MergeRequest, error)
	GetMergeRequest(ctx context.Context, projectPath string, mrIID int) (*domain.MergeRequest, error)
	ListDiscussions(ctx context.Context, projectPath string, mrIID int) ([]*domain.Discussion, error)
	ListNotes(ctx context.Context, projectPath string, mrIID int) ([]*domain.Note, error)
	ListStateEvents(ctx context.Context, projectPath string, mrIID int) ([]*domain.StateEvent, error)
	GetFileWindow(
		ctx context.Context,
		projectPath, filePath string,
		line, contextLines int,
		ref string,
	) (*domain.FileLineWindow, error)
}

// AttachmentResolver downloads the images referenced from discussions (port).
type AttachmentResolver interface {
	Resolve(ctx context.Context, discussions []*domain.Discussion, projectID int) (*domain.AttachmentReport, error)
}

// Extractor turns a prompt into the LLM's text answer (port).
type Extractor interface {
	Extract(ctx context.Context, prompt string) (string, error)
}

// WindowCache holds the file windows of one session (port).
type WindowCache interface {
	GetWindow(key string) (*domain.FileLineWindow, bool)
	StoreWindow(key string, window *domain.FileLineWindow)
	Clear()
}

// WindowCacheFactory creates the window cache owned by a new session.
type WindowCacheFactory func() WindowCache

// App represents the core application with all business logic.
type App struct {
	repo      Repository
	resolver  AttachmentResolver
	extractor Extractor
	newCache  WindowCacheFactory
	prompt    *template.Template
}

// NewApp creates a new application instance.
func NewApp(
	repo Repository,
	resolver AttachmentResolver,
	extractor Extractor,
	newCache WindowCacheFactory,
) (*App, error) {
	prompt, err := parsePrompt()
	if err != nil {
		return nil, err
	}

	return &App{
		repo:      repo,
		resolver:  resolver,
		extractor: extractor,
		newCache:  newCache,
		prompt:    prompt,
	}, nil
}

// GetCurrentUser returns the user owning the access token.
func (a *App) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	user, err := a.repo.GetCurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	return user, nil
}

// GetProject retrieves a project by path.
func (a *App) GetProject(ctx context.Context, path string) (*domain.Project, error) {
	return a.repo.GetProject(ctx, path)
}

// ListProjects lists the accessible projects matching query.
func (a *App) ListProjects(ctx context.Context, query domain.ProjectQuery) ([]*domain.Project, error) {
	return a.repo.ListProjects(ctx, query)
}

// ListMergeRequests lists the merge requests of a project, newest first.
func (a *App) ListMergeRequests(ctx context.Context, projectPath, state string) ([]*domain.MergeRequest, error) {
	if state == "" {
		state = "all"
	}

	return a.repo.ListMergeRequests(ctx, projectPath, state)
}

// ListStateEvents lists the state changes of a merge request.
func (a *App) ListStateEvents(ctx context.Context, projectPath string, mrIID int) ([]*domain.StateEvent, error) {
	return a.repo.ListStateEvents(ctx, projectPath, mrIID)
}

// ListNotes lists the notes of a merge request, oldest first.
func (a *App) ListNotes(ctx context.Context, projectPath string, mrIID int) ([]*domain.Note, error) {
	return a.repo.ListNotes(ctx, projectPath, mrIID)
}

// NewSession opens a session on a project. Nothing is fetched until Load.
func (a *App) NewSession(projectPath string) *Session {
	var windows WindowCache
	if a.newCache != nil {
		windows = a.newCache()
	}

	return &Session{
		app:         a,
		projectPath: projectPath,
		windows:     windows,
	}
}
