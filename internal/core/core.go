package core

import (
	"github.com/denchenko/mrdigest/internal/core/app"
	do "github.com/samber/do/v2"
)

var Package = do.Package(
	do.Lazy[*app.App](NewApp),
)

// NewApp creates a new App instance with dependencies from the injector.
func NewApp(i do.Injector) (*app.App, error) {
	repo := do.MustInvoke[app.Repository](i)
	resolver := do.MustInvoke[app.AttachmentResolver](i)
	extractor := do.MustInvoke[app.Extractor](i)
	newCache := do.MustInvoke[app.WindowCacheFactory](i)

	return app.NewApp(repo, resolver, extractor, newCache)
}
