package service

import (
	"context"

	"github.com/alexanderramin/azdo/internal/domain"
	"github.com/alexanderramin/azdo/internal/resolver"
)

// TreeStore persists feature trees by remote root id.
type TreeStore interface {
	Load(remoteID int) (*domain.FeatureTree, error)
	Save(tree *domain.FeatureTree, remoteID int) (string, error)
	Path(remoteID int) string
}

// MarshalRequest names the feature to resolve and persist.
type MarshalRequest struct {
	Name     string
	Feature  domain.Feature
	Progress resolver.ProgressObserver
}

// MarshalResult is a freshly resolved and saved feature. HistoryErr is set
// when the tree was saved but the run could not be journaled.
type MarshalResult struct {
	Name       string
	Tree       *domain.FeatureTree
	Path       string
	Stats      domain.TreeStats
	Run        *domain.MarshalRun
	HistoryErr error
}

// CollectResult is a feature tree ready for flattening. FromCache reports a
// stored document was used; SaveErr is set when a fresh tree could not be
// persisted but is still usable in memory.
type CollectResult struct {
	Name      string
	Feature   domain.Feature
	Tree      *domain.FeatureTree
	FromCache bool
	Path      string
	SaveErr   error
}

type FeatureService interface {
	Marshal(ctx context.Context, req MarshalRequest) (*MarshalResult, error)
	Collect(ctx context.Context, name string, f domain.Feature, progress resolver.ProgressObserver) (*CollectResult, error)
	History(ctx context.Context, featureID, limit int) ([]*domain.MarshalRun, error)
	LastRun(ctx context.Context, featureID int) (*domain.MarshalRun, error)
}
