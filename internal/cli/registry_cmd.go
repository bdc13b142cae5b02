package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/azdo/internal/cli/formatter"
	"github.com/alexanderramin/azdo/internal/domain"
	"github.com/spf13/cobra"
)

func newRegistryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the tracked feature registry",
	}

	cmd.AddCommand(
		newRegistryListCmd(app),
		newRegistryAddCmd(app),
		newRegistryRemoveCmd(app),
		newRegistrySetDefaultCmd(app),
		newRegistryStatusCmd(app),
	)

	return cmd
}

func newRegistryListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered features",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.registry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(reg.Features) == 0 {
				fmt.Fprintln(out, "No features registered.")
				return nil
			}

			var rows [][]string
			for _, name := range reg.Names() {
				f := reg.Features[name]
				label := name
				if name == reg.Default {
					label += " *"
				}
				rows = append(rows, []string{label, strconv.Itoa(f.ID), f.AddedAt, lastMarshaled(cmd, app, f.ID), f.Description})
			}
			fmt.Fprint(out, formatter.RenderTable([]string{"Name", "ID", "Added", "Last marshaled", "Description"}, rows))
			if reg.Default != "" {
				fmt.Fprintf(out, "\n* = default feature (%s)\n", reg.Default)
			}
			return nil
		},
	}
}

// lastMarshaled renders the newest journaled run for a feature.
func lastMarshaled(cmd *cobra.Command, app *App, featureID int) string {
	if app.Features == nil {
		return "-"
	}
	run, err := app.Features.LastRun(cmd.Context(), featureID)
	switch {
	case err != nil:
		return "?"
	case run == nil:
		return "never"
	}
	return formatter.HumanTimestamp(run.MarshaledAt, app.now())
}

func newRegistryAddCmd(app *App) *cobra.Command {
	var name, description string
	var id int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a feature by its work-item ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || id <= 0 {
				if !app.interactive() || app.Prompt == nil {
					return fmt.Errorf("--name and --id are required")
				}
				var err error
				if name, id, description, err = promptFeature(app, name, id, description); err != nil {
					return err
				}
			}

			reg, err := app.registry()
			if err != nil {
				return err
			}
			f := domain.Feature{ID: id, Description: description, AddedAt: app.now().UTC().Format("2006-01-02")}
			if err := reg.Add(name, f); err != nil {
				return err
			}
			if err := app.saveRegistry(reg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added feature '%s' (ID %d)\n", name, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Short name for the feature")
	cmd.Flags().IntVar(&id, "id", 0, "Work item ID of the feature")
	cmd.Flags().StringVar(&description, "description", "", "Description")

	return cmd
}

// promptFeature asks for whichever registry fields were not given as flags.
func promptFeature(app *App, name string, id int, description string) (string, int, string, error) {
	var err error
	if name == "" {
		if name, err = app.Prompt("Feature name"); err != nil {
			return "", 0, "", err
		}
		name = strings.TrimSpace(name)
	}
	if id <= 0 {
		raw, err := app.Prompt("Work item ID")
		if err != nil {
			return "", 0, "", err
		}
		id, err = strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || id <= 0 {
			return "", 0, "", fmt.Errorf("invalid work item ID %q", raw)
		}
	}
	if description == "" {
		if description, err = app.Prompt("Description (optional)"); err != nil {
			return "", 0, "", err
		}
	}
	return name, id, strings.TrimSpace(description), nil
}

func newRegistryRemoveCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a feature from the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.registry()
			if err != nil {
				return err
			}
			if err := reg.Remove(name); err != nil {
				return err
			}
			if err := app.saveRegistry(reg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed feature '%s'\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Feature name to remove")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newRegistrySetDefaultCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "set-default",
		Short: "Set the default feature",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.registry()
			if err != nil {
				return err
			}
			if err := reg.SetDefault(name); err != nil {
				return err
			}
			if err := app.saveRegistry(reg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default feature set to '%s'\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Feature name to make the default")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newRegistryStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show live state and child counts for every registered feature",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.registry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(reg.Features) == 0 {
				fmt.Fprintln(out, "No features registered.")
				return nil
			}
			if err := app.remote(); err != nil {
				return err
			}

			rule := strings.Repeat("=", 60)
			for _, name := range reg.Names() {
				f := reg.Features[name]
				fmt.Fprintf(out, "\n%s\nFeature: %s (ID %d)\n%s\n", rule, name, f.ID, rule)

				wi, err := app.WorkItems.GetWorkItem(cmd.Context(), f.ID)
				if err != nil {
					fmt.Fprintf(out, "  ERROR fetching: %v\n", err)
					continue
				}
				fmt.Fprintf(out, "  Title:    %s\n", wi.Title)
				fmt.Fprintf(out, "  State:    %s\n", wi.State)
				fmt.Fprintf(out, "  Created:  %s\n", formatter.ADODate(wi.CreatedDate))
				fmt.Fprintf(out, "  Changed:  %s\n", formatter.ADODate(wi.ChangedDate))

				children, err := app.WorkItems.ListChildren(cmd.Context(), f.ID)
				if err != nil {
					fmt.Fprintf(out, "  ERROR fetching children: %v\n", err)
					continue
				}
				types := make([]string, len(children))
				for i, c := range children {
					types[i] = c.Type
				}
				fmt.Fprintf(out, "  Children: %s\n", formatter.ChildCounts(types))
			}
			return nil
		},
	}
}
