package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/azdo/internal/ado"
	"github.com/alexanderramin/azdo/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newGetWorkItemCmd(app *App) *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "get-work-item",
		Short: "Show one work item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.remote(); err != nil {
				return err
			}
			wi, err := app.WorkItems.GetWorkItem(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Work Item %d\n", wi.ID)
			fmt.Fprintf(out, "Type: %s\n", wi.Type)
			fmt.Fprintf(out, "Title: %s\n", wi.Title)
			fmt.Fprintf(out, "State: %s\n", wi.State)
			fmt.Fprintf(out, "Area Path: %s\n", orNA(wi.AreaPath))
			fmt.Fprintf(out, "Assigned To: %s\n", orValue(wi.AssignedTo, "Unassigned"))
			fmt.Fprintf(out, "URL: %s\n", orNA(wi.URL))
			fmt.Fprintln(out, strings.Repeat("-", 80))
			fmt.Fprintln(out, "Description:")
			fmt.Fprintln(out, orValue(wi.Description, "No description"))
			return nil
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "Work item ID")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func newListChildrenCmd(app *App) *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "list-children",
		Short: "List the direct children of a work item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.remote(); err != nil {
				return err
			}
			children, err := app.WorkItems.ListChildren(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(children) == 0 {
				fmt.Fprintf(out, "No child work items found for %d\n", id)
				return nil
			}
			rows := make([][]string, len(children))
			for i, c := range children {
				rows[i] = []string{strconv.Itoa(c.ID), c.Type, c.State, c.Title}
			}
			fmt.Fprintf(out, "Child work items of %d:\n", id)
			fmt.Fprint(out, formatter.RenderTable([]string{"ID", "Type", "State", "Title"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "Parent work item ID")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func newCreateWorkItemCmd(app *App) *cobra.Command {
	var in ado.NewWorkItem

	cmd := &cobra.Command{
		Use:   "create-work-item",
		Short: "Create a work item of any type",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.remote(); err != nil {
				return err
			}
			if in.AreaPath == "" {
				in.AreaPath = app.Config.DefaultAreaPath
			}
			wi, err := app.WorkItems.CreateWorkItem(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %d\nURL: %s\n", in.Type, wi.ID, orNA(wi.URL))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Type, "type", "", "Work item type (Feature, User Story, Task, Bug)")
	cmd.Flags().StringVar(&in.Title, "title", "", "Title")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	cmd.Flags().StringVar(&in.AreaPath, "area-path", "", "Area path (default: default_area_path from config)")
	cmd.Flags().StringVar(&in.AssignedTo, "assigned-to", "", "Assignee email or display name")
	cmd.Flags().IntVar(&in.ParentID, "parent", 0, "Parent work item ID")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newUpdateWorkItemCmd(app *App) *cobra.Command {
	var id int
	var title, description string

	cmd := &cobra.Command{
		Use:   "update-work-item",
		Short: "Change the title and/or description of a work item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" && description == "" {
				return fmt.Errorf("no updates specified: pass --title and/or --description")
			}
			if err := app.remote(); err != nil {
				return err
			}
			wi, err := app.WorkItems.UpdateWorkItem(cmd.Context(), id, title, description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated work item %d\nURL: %s\n", id, orNA(wi.URL))
			return nil
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "Work item ID")
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func newCreateTaskCmd(app *App) *cobra.Command {
	var pr, parent int
	var description string

	cmd := &cobra.Command{
		Use:   "create-task",
		Short: "Create a Task linked to a pull request",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := app.repo()
			if err != nil {
				return err
			}
			wi, err := app.WorkItems.CreateTaskForPR(cmd.Context(), repo, pr, parent, description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created Task %d linked to PR %d\nURL: %s\n", wi.ID, pr, orNA(wi.URL))
			return nil
		},
	}

	cmd.Flags().IntVar(&pr, "pr", 0, "Pull request ID")
	cmd.Flags().IntVar(&parent, "parent", 0, "Parent work item ID")
	cmd.Flags().StringVar(&description, "description", "", "Task description (default: derived from the PR title)")
	_ = cmd.MarkFlagRequired("pr")

	return cmd
}

func orNA(s string) string { return orValue(s, "N/A") }

func orValue(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
