package cli

import (
	"fmt"

	"github.com/alexanderramin/azdo/internal/cli/formatter"
	"github.com/alexanderramin/azdo/internal/domain"
	"github.com/alexanderramin/azdo/internal/resolver"
	"github.com/alexanderramin/azdo/internal/service"
	"github.com/spf13/cobra"
)

func newMarshalCmd(app *App) *cobra.Command {
	var feature string

	cmd := &cobra.Command{
		Use:     "marshal-feature",
		Aliases: []string{"marshal"},
		Short:   "Fetch a feature's full work-item tree and write it as an IR document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.remote(); err != nil {
				return err
			}
			reg, err := app.registry()
			if err != nil {
				return err
			}
			name, f, err := reg.LookupOrDefault(feature)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Marshaling feature '%s' (ID %d)...\n", name, f.ID)

			res, err := app.Features.Marshal(cmd.Context(), service.MarshalRequest{
				Name:    name,
				Feature: f,
				Progress: resolver.ProgressFunc(func(n *domain.WorkItemNode, depth int) {
					fmt.Fprintln(out, formatter.ProgressLine(n, depth))
				}),
			})
			if err != nil {
				return err
			}

			fmt.Fprint(out, formatter.MarshalSummary(res.Path, res.Tree.Feature, res.Stats))
			if res.HistoryErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", res.HistoryErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&feature, "feature", "", "Registered feature name or ID (default: the default feature)")

	return cmd
}
