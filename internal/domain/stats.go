package domain

import "sort"

// TreeStats accumulates counts over a resolved tree.
type TreeStats struct {
	Total    int
	MaxDepth int
	Done     int
	// ByType maps type -> state -> count.
	ByType map[string]map[string]int
}

// Add records one node seen at depth.
func (s *TreeStats) Add(n *WorkItemNode, depth int) {
	if s.ByType == nil {
		s.ByType = make(map[string]map[string]int)
	}
	s.Total++
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
	if IsDoneState(n.State) {
		s.Done++
	}
	states := s.ByType[n.Type]
	if states == nil {
		states = make(map[string]int)
		s.ByType[n.Type] = states
	}
	states[n.State]++
}

// Types returns the counted types in sorted order.
func (s TreeStats) Types() []string {
	out := make([]string, 0, len(s.ByType))
	for t := range s.ByType {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// TypeTotal is the number of nodes counted for itemType across all states.
func (s TreeStats) TypeTotal(itemType string) int {
	n := 0
	for _, c := range s.ByType[itemType] {
		n += c
	}
	return n
}

// DoneRatio is the fraction of counted nodes in a done state.
func (s TreeStats) DoneRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Done) / float64(s.Total)
}

// Summarize counts every node of an already-resolved tree, root included.
func Summarize(root *WorkItemNode) TreeStats {
	var s TreeStats
	root.Walk(s.Add)
	return s
}
