package cache

import (
	"sync"

	"github.com/denchenko/mrdigest/internal/core/domain"
)

// InMemoryCache is an in-memory thread-safe cache implementation.
type InMemoryCache struct {
	projects sync.Map // map[string]*domain.Project
	windows  sync.Map // map[string]*domain.FileLineWindow
}

// NewInMemoryCache creates a new in-memory cache instance.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{}
}

// GetProject retrieves a project by path from the cache.
func (c *InMemoryCache) GetProject(path string) (*domain.Project, bool) {
	if cached, ok := c.projects.Load(path); ok {
		if project, ok := cached.(*domain.Project); ok {
			return project, true
		}
	}

	return nil, false
}

// StoreProject stores a project in the cache, indexed by its path.
func (c *InMemoryCache) StoreProject(path string, project *domain.Project) {
	c.projects.Store(path, project)
}

// GetWindow retrieves a window by key from the cache.
func (c *InMemoryCache) GetWindow(key string) (*domain.FileLineWindow, bool) {
	if cached, ok := c.windows.Load(key); ok {
		if window, ok := cached.(*domain.FileLineWindow); ok {
			return window, true
		}
	}

	return nil, false
}

// StoreWindow stores a window in the cache under key.
func (c *InMemoryCache) StoreWindow(key string, window *domain.FileLineWindow) {
	c.windows.Store(key, window)
}

// Clear drops every cached entry.
func (c *InMemoryCache) Clear() {
	for _, m := range []*sync.Map{&c.projects, &c.windows} {
		m.Range(func(key, _ any) bool {
			m.Delete(key)

			return true
		})
	}
}

// Len returns the number of cached windows.
func (c *InMemoryCache) Len() int {
	n := 0
	c.windows.Range(func(_, _ any) bool {
		n++

		return true
	})

	return n
}
