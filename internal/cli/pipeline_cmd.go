package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/azdo/internal/ado"
	"github.com/spf13/cobra"
)

func newQueuePipelineCmd(app *App) *cobra.Command {
	var id int
	var branch string
	var params []string

	cmd := &cobra.Command{
		Use:   "queue-pipeline",
		Short: "Queue a pipeline run on a branch",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := ado.ParsePipelineParameters(params)
			if err != nil {
				return err
			}
			if err := app.remote(); err != nil {
				return err
			}
			run, err := app.WorkItems.QueuePipeline(cmd.Context(), id, branch, parsed)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Queued %s run #%s (ID %d)\n", run.Pipeline, run.Name, run.ID)
			fmt.Fprintf(out, "State: %s\n", run.State)
			fmt.Fprintf(out, "Branch: %s\n", branch)
			if len(parsed) > 0 {
				fmt.Fprintf(out, "Parameters: %s\n", formatParams(parsed))
			}
			fmt.Fprintf(out, "URL: %s\n", run.URL)
			return nil
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "Pipeline definition ID")
	cmd.Flags().StringVar(&branch, "branch", "", "Branch to build (without refs/heads/)")
	cmd.Flags().StringArrayVar(&params, "parameters", nil, "Template parameter as name=value (repeatable)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("branch")

	return cmd
}

func formatParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + params[k]
	}
	return strings.Join(parts, " ")
}
