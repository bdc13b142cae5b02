package domain

import "time"

// WorkItem is the full field set fetched for a single remote item.
type WorkItem struct {
	ID    int
	Type  string
	Title string
	State string
}

// ItemRef is the summary stub returned by a children query.
type ItemRef struct {
	ID int
}

// WorkItemNode is one item in a resolved hierarchy. Children is nil both for
// leaves and for containers that resolved with no children.
type WorkItemNode struct {
	ID       int             `yaml:"id"`
	Type     string          `yaml:"type"`
	Title    string          `yaml:"title"`
	State    string          `yaml:"state"`
	Children []*WorkItemNode `yaml:"children,omitempty"`
}

// NewNode creates a childless node from fetched fields.
func NewNode(wi WorkItem) *WorkItemNode {
	return &WorkItemNode{
		ID:    wi.ID,
		Type:  wi.Type,
		Title: wi.Title,
		State: wi.State,
	}
}

// Kind classifies the node by its type.
func (n *WorkItemNode) Kind() ItemKind {
	return Classify(n.Type)
}

// Walk visits n and its descendants in pre-order. The receiver is at depth 0.
func (n *WorkItemNode) Walk(fn func(node *WorkItemNode, depth int)) {
	n.walk(fn, 0)
}

func (n *WorkItemNode) walk(fn func(*WorkItemNode, int), depth int) {
	if n == nil {
		return
	}
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// FeatureTree is the persisted IR document for one feature.
type FeatureTree struct {
	Source      string        `yaml:"source"`
	MarshaledAt time.Time     `yaml:"marshaled_at"`
	Feature     *WorkItemNode `yaml:"feature"`
}

// NewFeatureTree wraps a resolved root with provenance. The timestamp is
// normalized to whole seconds in UTC.
func NewFeatureTree(root *WorkItemNode, now time.Time) *FeatureTree {
	return &FeatureTree{
		Source:      SourceADO,
		MarshaledAt: now.UTC().Truncate(time.Second),
		Feature:     root,
	}
}

// Rows flattens the tree below its feature root.
func (t *FeatureTree) Rows() []FlatRow {
	if t == nil {
		return nil
	}
	return Flatten(t.Feature)
}

// MarshalRun records one successful marshal of a feature.
type MarshalRun struct {
	ID          string
	FeatureID   int
	FeatureName string
	IRPath      string
	TotalItems  int
	MaxDepth    int
	MarshaledAt time.Time
}
