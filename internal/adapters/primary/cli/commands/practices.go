package commands

import (
	"fmt"

	"github.com/denchenko/mrdigest/internal/config"
	"github.com/denchenko/mrdigest/internal/core/app"
	ascii "github.com/denchenko/mrdigest/internal/format/ascii"
	"github.com/denchenko/mrdigest/internal/log"
	"github.com/spf13/cobra"
)

// Practices asks the LLM for the coding standards stated in review comments.
func Practices(cfg *config.Config, appInstance *app.App) *cobra.Command {
	var discussionIDs []string

	cmd := &cobra.Command{
		Use:   "practices MR_URL",
		Short: "Extract best practices from merge request discussions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseMRRef(cfg.BaseURL, args[0])
			if err != nil {
				return fmt.Errorf("failed to parse merge request URL: %w", err)
			}

			session, err := loadSession(cmd, appInstance, ref, app.SkipAttachments())
			if err != nil {
				return err
			}

			analyzed := len(discussionIDs)
			if analyzed == 0 {
				analyzed = len(session.UserDiscussions())
			}

			var practices string
			err = log.WithSpinner("Extracting best practices...", func() error {
				var err error
				practices, err = session.ExtractBestPractices(cmd.Context(), discussionIDs...)

				return err
			})
			if err != nil {
				return err
			}

			formatted, err := ascii.FormatPractices(analyzed, practices)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), formatted)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&discussionIDs, "discussion", nil, "discussion ids to analyze, all by default")

	return cmd
}
