package commands

import (
	"fmt"

	"github.com/denchenko/mrdigest/internal/config"
	"github.com/denchenko/mrdigest/internal/core/app"
	"github.com/denchenko/mrdigest/internal/core/domain"
	ascii "github.com/denchenko/mrdigest/internal/format/ascii"
	"github.com/denchenko/mrdigest/internal/log"
	"github.com/spf13/cobra"
)

// WhoAmI checks the connection and the token.
func WhoAmI(cfg *config.Config, appInstance *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user owning the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var user *domain.User
			err := log.WithSpinner("Connecting to GitLab...", func() error {
				var err error
				user, err = appInstance.GetCurrentUser(cmd.Context())

				return err
			})
			if err != nil {
				return err
			}

			formatted, err := ascii.FormatUser(cfg.BaseURL, user)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), formatted)

			return nil
		},
	}
}
