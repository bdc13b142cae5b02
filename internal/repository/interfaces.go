package repository

import (
	"context"

	"github.com/alexanderramin/azdo/internal/domain"
)

// MarshalRunRepo is the journal of successful marshal runs.
type MarshalRunRepo interface {
	Create(ctx context.Context, r *domain.MarshalRun) error
	ListRecent(ctx context.Context, limit int) ([]*domain.MarshalRun, error)
	ListByFeature(ctx context.Context, featureID, limit int) ([]*domain.MarshalRun, error)
	LatestByFeature(ctx context.Context, featureID int) (*domain.MarshalRun, error)
	PruneFeature(ctx context.Context, featureID, keep int) (int, error)
}
