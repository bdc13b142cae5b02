package domain

// FlatRow is a node projected into a selectable row with its depth below the
// root. The root's direct children are at depth 1.
type FlatRow struct {
	ID    int
	Type  string
	Title string
	State string
	Depth int
}

// Flatten returns the pre-order traversal of root's descendants. The root
// itself is never emitted. Each call builds a fresh slice.
func Flatten(root *WorkItemNode) []FlatRow {
	if root == nil {
		return nil
	}
	var rows []FlatRow
	for _, child := range root.Children {
		rows = appendRows(rows, child, 1)
	}
	return rows
}

func appendRows(rows []FlatRow, n *WorkItemNode, depth int) []FlatRow {
	if n == nil {
		return rows
	}
	rows = append(rows, FlatRow{
		ID:    n.ID,
		Type:  n.Type,
		Title: n.Title,
		State: n.State,
		Depth: depth,
	})
	for _, child := range n.Children {
		rows = appendRows(rows, child, depth+1)
	}
	return rows
}
