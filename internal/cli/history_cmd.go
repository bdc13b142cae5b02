package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/azdo/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	var feature string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent marshal runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			featureID := 0
			if feature != "" {
				reg, err := app.registry()
				if err != nil {
					return err
				}
				_, f, err := reg.Lookup(feature)
				if err != nil {
					return err
				}
				featureID = f.ID
			}

			runs, err := app.Features.History(cmd.Context(), featureID, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No marshal runs recorded.")
				return nil
			}

			now := app.now()
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{
					formatter.TruncID(r.ID),
					r.FeatureName,
					strconv.Itoa(r.FeatureID),
					strconv.Itoa(r.TotalItems),
					strconv.Itoa(r.MaxDepth),
					formatter.HumanTimestamp(r.MarshaledAt, now),
					r.IRPath,
				}
			}
			fmt.Fprint(out, formatter.RenderTable(
				[]string{"Run", "Feature", "ID", "Items", "Depth", "When", "Path"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&feature, "feature", "", "Only runs of this registered feature")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to show (0 for all)")

	return cmd
}
