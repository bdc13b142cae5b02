package testutil

import (
	"time"

	"github.com/alexanderramin/azdo/internal/domain"
	"github.com/google/uuid"
)

// FixedNow is the clock used by tests that persist timestamps.
var FixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// ScenarioTree returns feature 100 holding task 101 and story 102, which in
// turn holds bug 103.
func ScenarioTree() *domain.WorkItemNode {
	return &domain.WorkItemNode{
		ID: 100, Type: domain.TypeFeature, Title: "Checkout revamp", State: "Active",
		Children: []*domain.WorkItemNode{
			{ID: 101, Type: domain.TypeTask, Title: "Fix bug", State: "New"},
			{ID: 102, Type: domain.TypeUserStory, Title: "Pay with card", State: "Active",
				Children: []*domain.WorkItemNode{
					{ID: 103, Type: domain.TypeBug, Title: "Card declined twice", State: "Closed"},
				},
			},
		},
	}
}

// ScenarioSource serves ScenarioTree. Task 101 also has children on the
// remote side, which a resolver must never ask for.
func ScenarioSource() *FakeSource {
	return NewFakeSource().
		Add(100, domain.TypeFeature, "Checkout revamp", "Active", 101, 102).
		Add(101, domain.TypeTask, "Fix bug", "New", 900).
		Add(102, domain.TypeUserStory, "Pay with card", "Active", 103).
		Add(103, domain.TypeBug, "Card declined twice", "Closed").
		Add(900, domain.TypeTask, "Hidden under a task", "New")
}

// Run options
type RunOption func(*domain.MarshalRun)

func WithRunTime(t time.Time) RunOption {
	return func(r *domain.MarshalRun) {
		r.MarshaledAt = t
	}
}

func WithRunName(name string) RunOption {
	return func(r *domain.MarshalRun) {
		r.FeatureName = name
	}
}

func NewTestRun(featureID int, opts ...RunOption) *domain.MarshalRun {
	r := &domain.MarshalRun{
		ID:          uuid.New().String(),
		FeatureID:   featureID,
		FeatureName: "checkout",
		IRPath:      "ir/feature.yaml",
		TotalItems:  4,
		MaxDepth:    2,
		MarshaledAt: FixedNow,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
