package cli

import (
	"fmt"

	"github.com/alexanderramin/azdo/internal/cli/formatter"
	"github.com/alexanderramin/azdo/internal/domain"
	"github.com/spf13/cobra"
)

func newTreeCmd(app *App) *cobra.Command {
	var feature string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show a feature's work-item tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.registry()
			if err != nil {
				return err
			}
			name, f, err := reg.LookupOrDefault(feature)
			if err != nil {
				return err
			}
			if err := app.remote(); err != nil {
				return err
			}

			res, err := collectFeature(cmd.Context(), app, cmd.ErrOrStderr(), name, f)
			if err != nil {
				return err
			}
			if res.SaveErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: feature %s: IR not saved: %v\n", name, res.SaveErr)
			}

			out := cmd.OutOrStdout()
			stats := domain.Summarize(res.Tree.Feature)
			fmt.Fprintln(out, formatter.Header(name))
			fmt.Fprint(out, formatter.RenderTree(formatter.TreeItems(res.Tree.Feature)))
			fmt.Fprintf(out, "\n%s  %d/%d done\n", formatter.RenderProgress(stats.DoneRatio(), 20), stats.Done, stats.Total)
			fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("marshaled %s", formatter.HumanTimestamp(res.Tree.MarshaledAt, app.now()))))
			return nil
		},
	}

	cmd.Flags().StringVar(&feature, "feature", "", "Registered feature name or ID (default: the default feature)")

	return cmd
}
