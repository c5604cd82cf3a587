package cached

import (
	"context"
	"fmt"

	"github.com/denchenko/mrdigest/internal/adapters/secondary/cache"
	"github.com/denchenko/mrdigest/internal/core/app"
	"github.com/denchenko/mrdigest/internal/core/domain"
)

// CachedRepository wraps a Repository with caching functionality.
// Project lookups are remembered by path; everything else goes through.
type CachedRepository struct {
	app.Repository

	cache cache.Cache
}

// NewCachedRepository creates a new cached repository instance.
func NewCachedRepository(repo app.Repository, cache cache.Cache) *CachedRepository {
	return &CachedRepository{
		Repository: repo,
		cache:      cache,
	}
}

// GetProject retrieves a project by path.
func (r *CachedRepository) GetProject(ctx context.Context, path string) (*domain.Project, error) {
	if project, ok := r.cache.GetProject(path); ok {
		return project, nil
	}

	project, err := r.Repository.GetProject(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	r.cache.StoreProject(path, project)

	return project, nil
}

// ListProjects lists projects and remembers them by path.
func (r *CachedRepository) ListProjects(ctx context.Context, query domain.ProjectQuery) ([]*domain.Project, error) {
	projects, err := r.Repository.ListProjects(ctx, query)
	if err != nil {
		return nil, err
	}

	for _, project := range projects {
		if project != nil && project.Path != "" {
			r.cache.StoreProject(project.Path, project)
		}
	}

	return projects, nil
}
