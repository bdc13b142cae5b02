package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the top-level "azdo" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var opts GlobalOptions

	root := &cobra.Command{
		Use:           "azdo",
		Short:         "Azure DevOps work items, feature trees, and PR threads",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Bootstrap == nil {
				return nil
			}
			return app.Bootstrap(app, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "Config file (default: $AZDO_CONFIG or config.yaml next to the binary)")
	pf.StringVar(&opts.Org, "org", "", "Organization override")
	pf.StringVar(&opts.Project, "project", "", "Project override")
	pf.StringVar(&opts.Repo, "repo", "", "Repository name or alias override")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "Log service calls to stderr")

	root.AddCommand(
		newMarshalCmd(app),
		newDuckrowCmd(app),
		newTreeCmd(app),
		newHistoryCmd(app),
		newRegistryCmd(app),
		newGetWorkItemCmd(app),
		newListChildrenCmd(app),
		newCreateWorkItemCmd(app),
		newUpdateWorkItemCmd(app),
		newCreateTaskCmd(app),
		newQueuePipelineCmd(app),
		newListCommentsCmd(app),
		newShowThreadCmd(app),
		newReplyCmd(app),
		newResolveCmd(app),
		newReplyAndResolveCmd(app),
	)

	return root
}
