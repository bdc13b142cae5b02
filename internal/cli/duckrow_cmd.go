package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/azdo/internal/cli/formatter"
	"github.com/alexanderramin/azdo/internal/domain"
	"github.com/alexanderramin/azdo/internal/service"
	"github.com/spf13/cobra"
)

const actionQuestion = "What would you like to do with these work items?"

func newDuckrowCmd(app *App) *cobra.Command {
	var filter, launch bool

	cmd := &cobra.Command{
		Use:   "duckrow [features...]",
		Short: "Pick work items across registered features",
		Long: "Loads each feature's IR document (fetching and saving it when missing),\n" +
			"flattens the trees, and lets you multi-select work items. Use -f to pick\n" +
			"features first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			reg, err := app.registry()
			if err != nil {
				return err
			}
			if len(reg.Features) == 0 {
				return domain.ErrNoFeatures
			}

			names, err := duckrowFeatures(app, reg, args, filter)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(out, "No features selected.")
				return nil
			}
			if err := app.remote(); err != nil {
				return err
			}

			var rows []domain.FlatRow
			for _, name := range names {
				f, ok := reg.Features[name]
				if !ok {
					return fmt.Errorf("%w: %q", domain.ErrFeatureNotFound, name)
				}
				res, err := collectFeature(cmd.Context(), app, cmd.ErrOrStderr(), name, f)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, collectLine(res))
				if res.SaveErr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: feature %s: IR not saved: %v\n", name, res.SaveErr)
				}
				rows = append(rows, res.Tree.Rows()...)
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No work items found.")
				return nil
			}

			if app.Selector == nil {
				return fmt.Errorf("no work-item selector available")
			}
			selected, err := app.Selector.Select("Work items> ", formatter.FormatRows(rows, app.width()))
			if err != nil {
				return err
			}
			if len(selected) == 0 {
				fmt.Fprintln(out, "No work items selected.")
				return nil
			}
			fmt.Fprint(out, formatter.Selection(selected))

			if !app.interactive() || app.Prompt == nil {
				return nil
			}
			return followUp(cmd.Context(), app, out, selected, launch)
		},
	}

	cmd.Flags().BoolVarP(&filter, "filter", "f", false, "Pick features interactively before listing work items")
	cmd.Flags().BoolVar(&launch, "launch", false, "Hand the selection to the claude CLI")

	return cmd
}

// duckrowFeatures returns the registered names to list, in name order.
// Arguments narrow the set; with filter the operator picks from it.
func duckrowFeatures(app *App, reg *domain.Registry, args []string, filter bool) ([]string, error) {
	names := reg.Names()
	if len(args) > 0 {
		seen := map[string]bool{}
		for _, arg := range args {
			name, _, err := reg.Lookup(arg)
			if err != nil {
				return nil, err
			}
			seen[name] = true
		}
		names = names[:0]
		for _, name := range reg.Names() {
			if seen[name] {
				names = append(names, name)
			}
		}
	}
	if !filter {
		return names, nil
	}

	if app.FeatureSelector == nil {
		return nil, fmt.Errorf("no feature selector available")
	}
	lines := make([]string, len(names))
	byLine := make(map[string]string, len(names))
	for i, name := range names {
		f := reg.Features[name]
		lines[i] = strings.TrimRight(fmt.Sprintf("%-20s %-10d %s", name, f.ID, f.Description), " ")
		byLine[lines[i]] = name
	}
	picked, err := app.FeatureSelector.Select("Features> ", lines)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(picked))
	for _, line := range picked {
		name, ok := byLine[line]
		if !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrFeatureNotFound, line)
		}
		out = append(out, name)
	}
	return out, nil
}

// collectFeature loads or resolves one feature, animating a spinner on
// interactive terminals.
func collectFeature(ctx context.Context, app *App, status io.Writer, name string, f domain.Feature) (*service.CollectResult, error) {
	if app.interactive() {
		stop := formatter.StartSpinner(status, fmt.Sprintf("Loading feature %s (%d)", name, f.ID))
		defer stop()
	}
	res, err := app.Features.Collect(ctx, name, f, nil)
	if err != nil {
		return nil, fmt.Errorf("feature %s: %w", name, err)
	}
	return res, nil
}

func collectLine(res *service.CollectResult) string {
	title := res.Tree.Feature.Title
	if title == "" {
		title = fmt.Sprintf("Feature %d", res.Feature.ID)
	}
	if res.FromCache {
		return fmt.Sprintf("[%s] %s (from IR)", res.Name, title)
	}
	return fmt.Sprintf("[%s] %s (fetched from ADO)", res.Name, title)
}

func followUp(ctx context.Context, app *App, out io.Writer, selected []string, launch bool) error {
	fmt.Fprintln(out)
	request, err := app.Prompt(actionQuestion)
	if err != nil {
		return err
	}
	request = strings.TrimSpace(request)
	if request == "" {
		fmt.Fprintln(out, "No action specified.")
		return nil
	}

	prompt := formatter.AgentPrompt(selected, request)
	if !launch || app.Launch == nil {
		fmt.Fprintf(out, "\n%s\n", prompt)
		return nil
	}
	fmt.Fprintln(out, "\nLaunching Claude to handle your request...")
	return app.Launch(ctx, prompt)
}
