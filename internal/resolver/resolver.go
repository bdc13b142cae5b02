package resolver

import (
	"context"
	"slices"

	"github.com/alexanderramin/azdo/internal/domain"
)

// DefaultMaxDepth bounds traversal depth against malformed hierarchies.
const DefaultMaxDepth = 64

// Source returns remote work items and their direct children.
type Source interface {
	FetchItem(ctx context.Context, id int) (domain.WorkItem, error)
	FetchChildren(ctx context.Context, parentID int) ([]domain.ItemRef, error)
}

// ProgressObserver is told about each node as it is resolved, in traversal
// order. The root is at depth 0.
type ProgressObserver interface {
	OnNode(node *domain.WorkItemNode, depth int)
}

// ProgressFunc adapts a function to ProgressObserver.
type ProgressFunc func(node *domain.WorkItemNode, depth int)

func (f ProgressFunc) OnNode(node *domain.WorkItemNode, depth int) { f(node, depth) }

type noopProgress struct{}

func (noopProgress) OnNode(*domain.WorkItemNode, int) {}

// Result is a resolved tree together with the counts gathered on the way.
type Result struct {
	Root  *domain.WorkItemNode
	Stats domain.TreeStats
}

// Resolver builds work-item trees by sequential, depth-first fetching.
type Resolver struct {
	source   Source
	progress ProgressObserver
	maxDepth int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithProgress reports each resolved node to p.
func WithProgress(p ProgressObserver) Option {
	return func(r *Resolver) {
		if p != nil {
			r.progress = p
		}
	}
}

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// New creates a Resolver over source.
func New(source Source, opts ...Option) *Resolver {
	r := &Resolver{source: source, progress: noopProgress{}, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches rootID and, for container types, every descendant. Leaf
// types never have their children queried. Children keep the order the
// source returns them in. Any fetch failure aborts the whole resolve.
func (r *Resolver) Resolve(ctx context.Context, rootID int) (*Result, error) {
	res := &Result{}
	root, err := r.resolve(ctx, rootID, nil, &res.Stats)
	if err != nil {
		return nil, err
	}
	res.Root = root
	return res, nil
}

// resolve handles one node. path holds the ancestors of id, root first.
func (r *Resolver) resolve(ctx context.Context, id int, path []int, stats *domain.TreeStats) (*domain.WorkItemNode, error) {
	depth := len(path)
	if slices.Contains(path, id) || depth > r.maxDepth {
		return nil, &CycleDetected{ItemID: id, Path: append(slices.Clone(path), id)}
	}

	wi, err := r.source.FetchItem(ctx, id)
	if err != nil {
		return nil, newRemoteFetchError("fetch work item", id, err)
	}
	node := domain.NewNode(wi)
	r.progress.OnNode(node, depth)
	stats.Add(node, depth)

	if domain.Classify(node.Type) == domain.KindLeaf {
		return node, nil
	}

	refs, err := r.source.FetchChildren(ctx, node.ID)
	if err != nil {
		return nil, newRemoteFetchError("fetch children of", node.ID, err)
	}

	childPath := append(slices.Clone(path), node.ID)
	for _, ref := range refs {
		if ref.ID == node.ID {
			continue
		}
		child, err := r.resolve(ctx, ref.ID, childPath, stats)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}
