package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/azdo/internal/domain"
)

// ProgressLine is printed for each node as a tree is resolved.
func ProgressLine(n *domain.WorkItemNode, depth int) string {
	return fmt.Sprintf("  %s%s #%d: %s", strings.Repeat(indentUnit, depth), n.Type, n.ID, n.Title)
}

// MarshalSummary reports a written IR document with per-type and per-state
// counts, types and states in name order.
func MarshalSummary(path string, root *domain.WorkItemNode, stats domain.TreeStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nWrote %s\n", path)
	if root != nil {
		fmt.Fprintf(&b, "Feature: %s\n", root.Title)
	}
	fmt.Fprintf(&b, "Total items: %d\n", stats.Total)
	for _, typ := range stats.Types() {
		states := stats.ByType[typ]
		names := make([]string, 0, len(states))
		for s := range states {
			names = append(names, s)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, s := range names {
			parts[i] = fmt.Sprintf("%s: %d", s, states[s])
		}
		fmt.Fprintf(&b, "  %s: %d (%s)\n", typ, stats.TypeTotal(typ), strings.Join(parts, ", "))
	}
	return b.String()
}

// ChildCounts summarizes direct children by type, e.g. "3 total: 1 Bug, 2 Task".
func ChildCounts(types []string) string {
	if len(types) == 0 {
		return "0"
	}
	counts := map[string]int{}
	for _, t := range types {
		counts[t]++
	}
	names := make([]string, 0, len(counts))
	for t := range counts {
		names = append(names, t)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, t := range names {
		parts[i] = fmt.Sprintf("%d %s", counts[t], t)
	}
	return fmt.Sprintf("%d total: %s", len(types), strings.Join(parts, ", "))
}

// Selection lists selected lines under a count header.
func Selection(lines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%d work item(s) selected:\n", len(lines))
	for _, l := range lines {
		fmt.Fprintf(&b, "  %s\n", l)
	}
	return b.String()
}

// AgentPrompt composes the instruction handed to a coding agent for the
// selected rows.
func AgentPrompt(lines []string, request string) string {
	return "Use the /azdo skill to work with the following Azure DevOps work items.\n" +
		"\n" +
		"Work items:\n" +
		"```\n" + strings.Join(lines, "\n") + "\n```\n" +
		"\n" +
		"The ID is the first column of each line. The type is the second column. " +
		"The state is the third column. The rest is the title.\n" +
		"\n" +
		"User request: " + request + "\n" +
		"\n" +
		"Use the /azdo skill's commands as needed to accomplish the user's request. " +
		"Work through the items methodically."
}
