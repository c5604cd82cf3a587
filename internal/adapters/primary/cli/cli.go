package cli

import (
	"github.com/denchenko/mrdigest/internal/adapters/primary/cli/commands"
	"github.com/denchenko/mrdigest/internal/config"
	"github.com/denchenko/mrdigest/internal/core/app"
	do "github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// Command creates and returns the root CLI command.
func Command(i do.Injector) (*cobra.Command, error) {
	appInstance := do.MustInvoke[*app.App](i)
	cfg := do.MustInvoke[*config.Config](i)

	return NewRoot(cfg, appInstance), nil
}

// NewRoot assembles the command tree.
func NewRoot(cfg *config.Config, appInstance *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mrdigest",
		Long:          `Fetch GitLab merge request discussions and distill them into best practices.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		commands.WhoAmI(cfg, appInstance),
		commands.Projects(appInstance),
		commands.MR(cfg, appInstance),
		commands.Practices(cfg, appInstance),
	)

	return cmd
}
