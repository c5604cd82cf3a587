package commands

import (
	"fmt"

	"github.com/denchenko/mrdigest/internal/core/app"
	"github.com/denchenko/mrdigest/internal/core/domain"
	ascii "github.com/denchenko/mrdigest/internal/format/ascii"
	"github.com/denchenko/mrdigest/internal/log"
	"github.com/spf13/cobra"
)

const defaultProjectLimit = 20

// Projects lists the projects the token can see. Positional arguments are
// keywords; a project matches when its name, path or description contains
// any of them.
func Projects(appInstance *app.App) *cobra.Command {
	var (
		search string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "projects [KEYWORD...]",
		Short: "List accessible projects, most recently active first",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := domain.ProjectQuery{
				Search: search,
				Match:  domain.MatchAnySubstring(args...),
				Limit:  limit,
			}

			var projects []*domain.Project
			err := log.WithSpinner("Fetching projects...", func() error {
				var err error
				projects, err = appInstance.ListProjects(cmd.Context(), query)

				return err
			})
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}

			formatted, err := ascii.FormatProjects(projects)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), formatted)

			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "server-side search term")
	cmd.Flags().IntVar(&limit, "limit", defaultProjectLimit, "maximum number of projects, 0 for all")

	return cmd
}
