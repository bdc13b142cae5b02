package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/azdo/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	ID     int
	Type   string
	Title  string
	State  string
	Prefix string // connector characters drawn before the item
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// TreeItems lays out root and its descendants in pre-order with box-drawing
// connectors. The root has no connector.
func TreeItems(root *domain.WorkItemNode) []TreeItem {
	if root == nil {
		return nil
	}
	items := []TreeItem{itemFor(root, "")}
	appendTreeItems(&items, root.Children, "")
	return items
}

func appendTreeItems(items *[]TreeItem, children []*domain.WorkItemNode, lead string) {
	for i, c := range children {
		last := i == len(children)-1
		connector, next := treeBranch, treePipe
		if last {
			connector, next = treeCorner, treeBlank
		}
		*items = append(*items, itemFor(c, lead+connector))
		appendTreeItems(items, c.Children, lead+next)
	}
}

func itemFor(n *domain.WorkItemNode, prefix string) TreeItem {
	return TreeItem{ID: n.ID, Type: n.Type, Title: n.Title, State: n.State, Prefix: prefix}
}

// RenderTree renders TreeItems one per line. Done items get a green ✔ and a
// dimmed title; states are right-aligned as badges.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	for idx, item := range items {
		title := item.Title
		marker := ""
		if domain.IsDoneState(item.State) {
			marker = StyleGreen.Render("✔ ")
			title = Dim(title)
		}

		label := TypeStyle(item.Type).Render(item.Type) + " " + StyleDim.Render(fmt.Sprintf("#%d", item.ID))
		content := StyleDim.Render(item.Prefix) + marker + label + " " + title
		lines[idx].content = content
		if item.State != "" {
			lines[idx].badge = StateStyle(item.State).Render(fmt.Sprintf("[ %s ]", item.State))
		}

		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	var b strings.Builder
	for _, li := range lines {
		if li.badge == "" {
			b.WriteString(li.content + "\n")
			continue
		}
		pad := maxContentWidth - lipgloss.Width(li.content)
		if pad < 0 {
			pad = 0
		}
		b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
	}
	return b.String()
}
