package commands

import (
	"fmt"

	"github.com/denchenko/mrdigest/internal/config"
	"github.com/denchenko/mrdigest/internal/core/app"
	"github.com/denchenko/mrdigest/internal/core/domain"
	ascii "github.com/denchenko/mrdigest/internal/format/ascii"
	"github.com/denchenko/mrdigest/internal/log"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

// openPath opens a file or directory with the desktop default handler.
var openPath = open.Run

func MR(cfg *config.Config, appInstance *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mr",
		Short: "Merge Requests",
	}

	cmd.AddCommand(
		mrList(appInstance),
		mrShow(cfg, appInstance),
		mrContext(cfg, appInstance),
		mrEvents(cfg, appInstance),
	)

	return cmd
}

func mrList(appInstance *app.App) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "list PROJECT_PATH",
		Short: "List merge requests of a project, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var mrs []*domain.MergeRequest
			err := log.WithSpinner("Fetching merge requests...", func() error {
				var err error
				mrs, err = appInstance.ListMergeRequests(cmd.Context(), args[0], state)

				return err
			})
			if err != nil {
				return fmt.Errorf("failed to list merge requests: %w", err)
			}

			formatted, err := ascii.FormatMergeRequests(args[0], mrs)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), formatted)

			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "all", "opened, closed, merged, locked or all")

	return cmd
}

func mrShow(cfg *config.Config, appInstance *app.App) *cobra.Command {
	var (
		noImages   bool
		openImages bool
	)

	cmd := &cobra.Command{
		Use:   "show MR_URL",
		Short: "Show the discussions of a merge request",
		Long: `Fetch a merge request with all its discussions and download the images they reference.
MR_URL is a merge request web URL or group/project!iid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseMRRef(cfg.BaseURL, args[0])
			if err != nil {
				return fmt.Errorf("failed to parse merge request URL: %w", err)
			}

			var opts []app.LoadOption
			if noImages {
				opts = append(opts, app.SkipAttachments())
			}

			session, err := loadSession(cmd, appInstance, ref, opts...)
			if err != nil {
				return err
			}

			formatted, err := ascii.FormatDiscussions(
				session.ProjectPath(),
				session.MergeRequest(),
				session.Discussions(),
				session.Attachments(),
			)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), formatted)

			if openImages && len(session.Attachments().Attachments) > 0 {
				if err := openPath(cfg.ImagesDir); err != nil {
					return fmt.Errorf("failed to open images directory: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&noImages, "no-images", false, "do not download referenced images")
	cmd.Flags().BoolVar(&openImages, "open", false, "open the images directory afterwards")

	return cmd
}

func mrContext(cfg *config.Config, appInstance *app.App) *cobra.Command {
	var contextLines int

	cmd := &cobra.Command{
		Use:   "context MR_URL DISCUSSION_ID",
		Short: "Show the file lines a code discussion points at",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseMRRef(cfg.BaseURL, args[0])
			if err != nil {
				return fmt.Errorf("failed to parse merge request URL: %w", err)
			}

			session, err := loadSession(cmd, appInstance, ref, app.SkipAttachments())
			if err != nil {
				return err
			}

			var window *domain.FileLineWindow
			err = log.WithSpinner("Fetching file...", func() error {
				var err error
				window, err = session.FileWindow(cmd.Context(), args[1], contextLines)

				return err
			})
			if err != nil {
				return err
			}

			formatted, err := ascii.FormatWindow(args[1], window)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), formatted)

			return nil
		},
	}

	cmd.Flags().IntVar(&contextLines, "lines", domain.DefaultContextLines, "lines of context around the target line")

	return cmd
}

func mrEvents(cfg *config.Config, appInstance *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "events MR_URL",
		Short: "Show the state changes of a merge request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseMRRef(cfg.BaseURL, args[0])
			if err != nil {
				return fmt.Errorf("failed to parse merge request URL: %w", err)
			}

			var events []*domain.StateEvent
			err = log.WithSpinner("Fetching state events...", func() error {
				var err error
				events, err = appInstance.ListStateEvents(cmd.Context(), ref.ProjectPath, ref.IID)

				return err
			})
			if err != nil {
				return fmt.Errorf("failed to list state events: %w", err)
			}

			formatted, err := ascii.FormatStateEvents(ref.IID, events)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), formatted)

			return nil
		},
	}
}

func loadSession(cmd *cobra.Command, appInstance *app.App, ref mrRef, opts ...app.LoadOption) (*app.Session, error) {
	session := appInstance.NewSession(ref.ProjectPath)

	err := log.WithSpinner(fmt.Sprintf("Fetching %s...", ref), func() error {
		return session.Load(cmd.Context(), ref.IID, opts...)
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}
