package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/denchenko/mrdigest/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

const defaultRef = "HEAD"

// Session holds one project context and the state of the merge request
// loaded last. Loading another merge request replaces that state.
// A Session is safe for concurrent use.
type Session struct {
	app         *App
	projectPath string

	mu          sync.Mutex
	project     *domain.Project
	mr          *domain.MergeRequest
	discussions []*domain.Discussion
	report      *domain.AttachmentReport
	windows     WindowCache
}

type loadOptions struct {
	skipAttachments bool
}

// LoadOption customizes Session.Load.
type LoadOption func(*loadOptions)

// SkipAttachments loads discussions without downloading their images.
func SkipAttachments() LoadOption {
	return func(o *loadOptions) {
		o.skipAttachments = true
	}
}

// ProjectPath returns the path the session was opened on.
func (s *Session) ProjectPath() string {
	return s.projectPath
}

// Load fetches a merge request with its discussions and attachments.
// It holds the session for the whole fetch; concurrent loads run one after
// another. State from a previous load, the project lookup included, is
// dropped before fetching, so a failed load leaves the session empty.
func (s *Session) Load(ctx context.Context, mrIID int, opts ...LoadOption) error {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()

	project, err := s.projectLocked(ctx)
	if err != nil {
		return err
	}

	var (
		mr          *domain.MergeRequest
		discussions []*domain.Discussion
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		mr, err = s.app.repo.GetMergeRequest(gctx, s.projectPath, mrIID)

		return err
	})

	g.Go(func() error {
		var err error
		discussions, err = s.app.repo.ListDiscussions(gctx, s.projectPath, mrIID)

		return err
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load merge request !%d: %w", mrIID, err)
	}

	report := &domain.AttachmentReport{Attachments: domain.AttachmentMap{}}
	if !o.skipAttachments && s.app.resolver != nil {
		report, err = s.app.resolver.Resolve(ctx, discussions, project.ID)
		if err != nil {
			return fmt.Errorf("failed to resolve attachments: %w", err)
		}
	}

	s.mr = mr
	s.discussions = discussions
	s.report = report

	return nil
}

// LoadAsync runs Load on its own goroutine. The channel receives the
// result once and is then closed.
func (s *Session) LoadAsync(ctx context.Context, mrIID int, opts ...LoadOption) <-chan error {
	done := make(chan error, 1)

	go func() {
		defer close(done)
		done <- s.Load(ctx, mrIID, opts...)
	}()

	return done
}

// Project returns the session project, looking it up if no load has
// resolved it yet.
func (s *Session) Project(ctx context.Context) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.projectLocked(ctx)
}

// MergeRequest returns the loaded merge request, or nil before Load.
func (s *Session) MergeRequest() *domain.MergeRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mr
}

// Discussions returns the loaded discussions.
func (s *Session) Discussions() []*domain.Discussion {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.discussions
}

// UserDiscussions returns the loaded discussions that have user notes.
func (s *Session) UserDiscussions() []*domain.Discussion {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.UserDiscussions(s.discussions)
}

// Discussion returns one loaded discussion by id.
func (s *Session) Discussion(id string) (*domain.Discussion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.discussionLocked(id)
}

// Attachments returns the attachment report of the last load.
func (s *Session) Attachments() *domain.AttachmentReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.report
}

// Counts returns comment counts of the loaded discussions.
func (s *Session) Counts() domain.CommentCounts {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.CountComments(s.discussions)
}

// FileWindow returns the file lines around the position of a code
// discussion. The ref is the head commit the comment was made on, or HEAD
// when the position does not carry one.
func (s *Session) FileWindow(ctx context.Context, discussionID string, contextLines int) (*domain.FileLineWindow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	discussion, err := s.discussionLocked(discussionID)
	if err != nil {
		return nil, err
	}

	c := discussion.Classify()
	if !c.IsCode {
		return nil, &domain.Error{Kind: domain.ErrNotFound, Resource: "code position of discussion " + discussionID}
	}

	ref := defaultRef
	if c.Position != nil && c.Position.HeadSHA != "" {
		ref = c.Position.HeadSHA
	}

	key := fmt.Sprintf("%s@%s:%d:%d", c.FilePath, ref, c.Line, contextLines)
	if s.windows != nil {
		if window, ok := s.windows.GetWindow(key); ok {
			return window, nil
		}
	}

	window, err := s.app.repo.GetFileWindow(ctx, s.projectPath, c.FilePath, c.Line, contextLines, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get file window: %w", err)
	}

	if s.windows != nil {
		s.windows.StoreWindow(key, window)
	}

	return window, nil
}

// ExtractBestPractices sends the selected discussions to the LLM. No ids
// selects every discussion with user notes.
func (s *Session) ExtractBestPractices(ctx context.Context, ids ...string) (string, error) {
	s.mu.Lock()

	selected := make([]*domain.Discussion, 0, len(ids))
	for _, id := range ids {
		discussion, err := s.discussionLocked(id)
		if err != nil {
			s.mu.Unlock()
			return "", err
		}
		selected = append(selected, discussion)
	}
	if len(ids) == 0 {
		selected = domain.UserDiscussions(s.discussions)
	}

	s.mu.Unlock()

	return s.app.ExtractBestPractices(ctx, selected)
}

func (s *Session) reset() {
	s.project = nil
	s.mr = nil
	s.discussions = nil
	s.report = nil
	if s.windows != nil {
		s.windows.Clear()
	}
}

func (s *Session) projectLocked(ctx context.Context) (*domain.Project, error) {
	if s.project != nil {
		return s.project, nil
	}

	project, err := s.app.repo.GetProject(ctx, s.projectPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	s.project = project

	return project, nil
}

func (s *Session) discussionLocked(id string) (*domain.Discussion, error) {
	discussion := domain.FindDiscussion(s.discussions, id)
	if discussion == nil {
		return nil, &domain.Error{Kind: domain.ErrNotFound, Resource: "discussion " + id}
	}

	return discussion, nil
}
