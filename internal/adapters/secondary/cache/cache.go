package cache

import "github.com/denchenko/mrdigest/internal/core/domain"

// Cache defines the interface for project and file window caching operations.
type Cache interface {
	// GetProject retrieves a project by path from the cache.
	// Returns the project and true if found, nil and false otherwise.
	GetProject(path string) (*domain.Project, bool)

	// StoreProject stores a project in the cache, indexed by its path.
	StoreProject(path string, project *domain.Project)

	// GetWindow retrieves a window by key from the cache.
	// Returns the window and true if found, nil and false otherwise.
	GetWindow(key string) (*domain.FileLineWindow, bool)

	// StoreWindow stores a window in the cache under key.
	StoreWindow(key string, window *domain.FileLineWindow)

	// Clear drops every cached entry.
	Clear()

	// Len returns the number of cached windows.
	Len() int
}
