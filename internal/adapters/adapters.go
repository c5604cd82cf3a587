package adapters

import (
	"fmt"
	"net/http"

	"github.com/denchenko/mrdigest/internal/adapters/primary/cli"
	httpadapter "github.com/denchenko/mrdigest/internal/adapters/primary/http"
	"github.com/denchenko/mrdigest/internal/adapters/secondary/attachment"
	"github.com/denchenko/mrdigest/internal/adapters/secondary/cache"
	"github.com/denchenko/mrdigest/internal/adapters/secondary/llm"
	"github.com/denchenko/mrdigest/internal/adapters/secondary/repository/cached"
	"github.com/denchenko/mrdigest/internal/adapters/secondary/repository/gitlab"
	"github.com/denchenko/mrdigest/internal/config"
	"github.com/denchenko/mrdigest/internal/core/app"
	do "github.com/samber/do/v2"
	"github.com/spf13/cobra"
	glclient "gitlab.com/gitlab-org/api/client-go"
)

var PrimaryPackage = do.Package(
	do.Lazy[*cobra.Command](cli.Command),
	do.Lazy[*httpadapter.Server](NewHTTPServer),
)

var SecondaryPackage = do.Package(
	do.Lazy[*http.Client](NewHTTPClient),
	do.Lazy[*glclient.Client](NewGitLabClient),
	do.Lazy[*gitlab.Repository](NewGitLabRepository),
	do.Lazy[cache.Cache](NewCache),
	do.Lazy[app.Repository](NewRepository),
	do.Lazy[app.AttachmentResolver](NewAttachmentResolver),
	do.Lazy[app.Extractor](NewExtractor),
	do.Lazy[app.WindowCacheFactory](NewWindowCacheFactory),
)

// NewHTTPClient creates the HTTP client shared by the GitLab client and the
// attachment downloader.
func NewHTTPClient(i do.Injector) (*http.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return &http.Client{Timeout: cfg.RequestTimeout}, nil
}

// NewGitLabClient creates a new GitLab client.
func NewGitLabClient(i do.Injector) (*glclient.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	httpClient := do.MustInvoke[*http.Client](i)

	client, err := glclient.NewClient(
		cfg.Token,
		glclient.WithBaseURL(cfg.BaseURL),
		glclient.WithHTTPClient(httpClient),
		glclient.WithoutRetries(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}

	return client, nil
}

// NewGitLabRepository creates a new GitLab repository instance.
func NewGitLabRepository(i do.Injector) (*gitlab.Repository, error) {
	client := do.MustInvoke[*glclient.Client](i)

	return gitlab.NewRepository(client), nil
}

// NewCache creates a new cache instance.
func NewCache(_ do.Injector) (cache.Cache, error) {
	return cache.NewInMemoryCache(), nil
}

// NewRepository creates a repository adapter that implements app.Repository.
// It wraps the GitLab repository with a cached repository for project lookups.
func NewRepository(i do.Injector) (app.Repository, error) {
	gitlabRepo := do.MustInvoke[*gitlab.Repository](i)
	cacheInstance := do.MustInvoke[cache.Cache](i)

	return cached.NewCachedRepository(gitlabRepo, cacheInstance), nil
}

// NewAttachmentResolver creates the attachment downloader.
func NewAttachmentResolver(i do.Injector) (app.AttachmentResolver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	httpClient := do.MustInvoke[*http.Client](i)

	return attachment.NewResolver(httpClient, attachment.Config{
		BaseURL: cfg.BaseURL,
		Token:   cfg.Token,
		Dir:     cfg.ImagesDir,
		Workers: cfg.DownloadWorkers,
	}), nil
}

// NewExtractor creates the LLM extractor.
func NewExtractor(i do.Injector) (app.Extractor, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return llm.NewExtractor(llm.Options{
		Provider: llm.Provider(cfg.LLM.Provider),
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout,
	}), nil
}

// NewWindowCacheFactory gives every session its own window cache.
func NewWindowCacheFactory(_ do.Injector) (app.WindowCacheFactory, error) {
	return func() app.WindowCache {
		return cache.NewInMemoryCache()
	}, nil
}

// NewHTTPServer creates a new HTTP server.
func NewHTTPServer(i do.Injector) (*httpadapter.Server, error) {
	appInstance := do.MustInvoke[*app.App](i)
	cfg := do.MustInvoke[*config.Config](i)

	return httpadapter.NewServer(cfg.ServerAddress, appInstance), nil
}
