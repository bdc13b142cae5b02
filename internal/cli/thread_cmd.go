package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderramin/azdo/internal/cli/formatter"
	"github.com/spf13/cobra"
)

type threadFlags struct {
	pr     int
	thread int
}

func (f *threadFlags) register(cmd *cobra.Command, withThread bool) {
	cmd.Flags().IntVar(&f.pr, "pr", 0, "Pull request ID")
	_ = cmd.MarkFlagRequired("pr")
	if withThread {
		cmd.Flags().IntVar(&f.thread, "thread", 0, "Thread ID")
		_ = cmd.MarkFlagRequired("thread")
	}
}

func newListCommentsCmd(app *App) *cobra.Command {
	var f threadFlags

	cmd := &cobra.Command{
		Use:   "list-comments",
		Short: "List active comment threads of a pull request",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := app.repo()
			if err != nil {
				return err
			}
			threads, err := app.Threads.ListThreads(cmd.Context(), repo, f.pr, true)
			if err != nil {
				return err
			}

			sort.SliceStable(threads, func(i, j int) bool { return threads[i].Line < threads[j].Line })
			var rows [][]string
			for _, t := range threads {
				human := t.HumanComments()
				if len(human) == 0 {
					continue
				}
				line := ""
				if t.Line > 0 {
					line = strconv.Itoa(t.Line)
				}
				rows = append(rows, []string{
					strconv.Itoa(t.ID),
					t.Status,
					clip(t.FilePath, 48),
					line,
					clip(strings.Join(strings.Fields(human[0].Content), " "), 50),
				})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintf(out, "No active comment threads on PR %d\n", f.pr)
				return nil
			}
			fmt.Fprint(out, formatter.RenderTable([]string{"Thread ID", "Status", "File", "Line", "Content"}, rows))
			return nil
		},
	}
	f.register(cmd, false)

	return cmd
}

func newShowThreadCmd(app *App) *cobra.Command {
	var f threadFlags

	cmd := &cobra.Command{
		Use:   "show-thread",
		Short: "Show every comment in one thread",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := app.repo()
			if err != nil {
				return err
			}
			t, err := app.Threads.GetThread(cmd.Context(), repo, f.pr, f.thread)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			line := "N/A"
			if t.Line > 0 {
				line = strconv.Itoa(t.Line)
			}
			fmt.Fprintf(out, "Thread %d (status: %s)\n", t.ID, orValue(t.Status, "unknown"))
			fmt.Fprintf(out, "File: %s\n", orNA(t.FilePath))
			fmt.Fprintf(out, "Line: %s\n", line)
			fmt.Fprintln(out, strings.Repeat("-", 80))
			for _, c := range t.Comments {
				if c.IsDeleted {
					continue
				}
				fmt.Fprintf(out, "\n[%s]:\n%s\n", orValue(c.Author, "unknown"), c.Content)
			}
			return nil
		},
	}
	f.register(cmd, true)

	return cmd
}

func newReplyCmd(app *App) *cobra.Command {
	var f threadFlags
	var comment string

	cmd := &cobra.Command{
		Use:   "reply",
		Short: "Reply to a comment thread",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := app.repo()
			if err != nil {
				return err
			}
			if err := app.Threads.ReplyToThread(cmd.Context(), repo, f.pr, f.thread, comment); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replied to thread %d\n", f.thread)
			return nil
		},
	}
	f.register(cmd, true)
	cmd.Flags().StringVar(&comment, "comment", "", "Comment text")
	_ = cmd.MarkFlagRequired("comment")

	return cmd
}

func newResolveCmd(app *App) *cobra.Command {
	var f threadFlags

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Mark a comment thread as fixed",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := app.repo()
			if err != nil {
				return err
			}
			if err := app.Threads.ResolveThread(cmd.Context(), repo, f.pr, f.thread); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resolved thread %d\n", f.thread)
			return nil
		},
	}
	f.register(cmd, true)

	return cmd
}

func newReplyAndResolveCmd(app *App) *cobra.Command {
	var f threadFlags
	var comment string

	cmd := &cobra.Command{
		Use:   "reply-and-resolve",
		Short: "Reply to a comment thread and mark it fixed",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := app.repo()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := app.Threads.ReplyToThread(cmd.Context(), repo, f.pr, f.thread, comment); err != nil {
				return err
			}
			fmt.Fprintf(out, "Replied to thread %d\n", f.thread)
			if err := app.Threads.ResolveThread(cmd.Context(), repo, f.pr, f.thread); err != nil {
				return err
			}
			fmt.Fprintf(out, "Resolved thread %d\n", f.thread)
			return nil
		},
	}
	f.register(cmd, true)
	cmd.Flags().StringVar(&comment, "comment", "", "Comment text")
	_ = cmd.MarkFlagRequired("comment")

	return cmd
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
