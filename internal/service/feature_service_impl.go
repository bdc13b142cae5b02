package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/azdo/internal/db"
	"github.com/alexanderramin/azdo/internal/domain"
	"github.com/alexanderramin/azdo/internal/irstore"
	"github.com/alexanderramin/azdo/internal/repository"
	"github.com/alexanderramin/azdo/internal/resolver"
	"github.com/google/uuid"
)

// HistoryKeep is how many runs per feature the journal retains.
const HistoryKeep = 50

// ErrHistoryUnavailable is returned by History when no journal is configured.
var ErrHistoryUnavailable = errors.New("marshal history is unavailable")

type featureService struct {
	source   resolver.Source
	store    TreeStore
	runs     repository.MarshalRunRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

// NewFeatureService wires the resolver source, the IR store, and the run
// journal. runs and uow may be nil, in which case no history is kept.
func NewFeatureService(
	source resolver.Source,
	store TreeStore,
	runs repository.MarshalRunRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) FeatureService {
	return &featureService{
		source:   source,
		store:    store,
		runs:     runs,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
}

func (s *featureService) Marshal(ctx context.Context, req MarshalRequest) (res *MarshalResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"feature":    req.Name,
		"feature_id": req.Feature.ID,
	}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "marshal-feature",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	var resolved *resolver.Result
	resolved, err = s.resolve(ctx, req.Feature.ID, req.Progress)
	if err != nil {
		return nil, err
	}
	tree := domain.NewFeatureTree(resolved.Root, s.now())
	fields["total_items"] = resolved.Stats.Total
	fields["max_depth"] = resolved.Stats.MaxDepth

	var path string
	path, err = s.store.Save(tree, req.Feature.ID)
	if err != nil {
		return nil, err
	}

	res = &MarshalResult{Name: req.Name, Tree: tree, Path: path, Stats: resolved.Stats}
	res.Run, res.HistoryErr = s.record(ctx, req.Name, req.Feature.ID, path, tree.MarshaledAt, resolved.Stats)
	if res.HistoryErr != nil {
		fields["history_error"] = res.HistoryErr.Error()
	}
	return res, nil
}

func (s *featureService) Collect(ctx context.Context, name string, f domain.Feature, progress resolver.ProgressObserver) (res *CollectResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"feature":    name,
		"feature_id": f.ID,
	}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "collect-feature",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	res = &CollectResult{Name: name, Feature: f, Path: s.store.Path(f.ID)}

	tree, err := s.store.Load(f.ID)
	if err == nil {
		res.Tree = tree
		res.FromCache = true
		fields["from_cache"] = true
		return res, nil
	}
	if !errors.Is(err, irstore.ErrNotFound) {
		return nil, err
	}

	var resolved *resolver.Result
	resolved, err = s.resolve(ctx, f.ID, progress)
	if err != nil {
		return nil, err
	}
	res.Tree = domain.NewFeatureTree(resolved.Root, s.now())
	fields["from_cache"] = false
	fields["total_items"] = resolved.Stats.Total

	if _, saveErr := s.store.Save(res.Tree, f.ID); saveErr != nil {
		res.SaveErr = saveErr
		fields["save_error"] = saveErr.Error()
	}
	return res, nil
}

func (s *featureService) History(ctx context.Context, featureID, limit int) ([]*domain.MarshalRun, error) {
	if s.runs == nil {
		return nil, ErrHistoryUnavailable
	}
	if featureID > 0 {
		return s.runs.ListByFeature(ctx, featureID, limit)
	}
	return s.runs.ListRecent(ctx, limit)
}

// LastRun returns the newest journaled run for a feature, or nil when the
// feature was never marshaled or no journal is configured.
func (s *featureService) LastRun(ctx context.Context, featureID int) (*domain.MarshalRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	run, err := s.runs.LatestByFeature(ctx, featureID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return run, err
}

func (s *featureService) resolve(ctx context.Context, rootID int, progress resolver.ProgressObserver) (*resolver.Result, error) {
	var opts []resolver.Option
	if progress != nil {
		opts = append(opts, resolver.WithProgress(progress))
	}
	return resolver.New(s.source, opts...).Resolve(ctx, rootID)
}

// record journals a successful marshal and trims old runs in one transaction.
func (s *featureService) record(ctx context.Context, name string, featureID int, path string, at time.Time, stats domain.TreeStats) (*domain.MarshalRun, error) {
	if s.uow == nil {
		return nil, nil
	}
	run := &domain.MarshalRun{
		ID:          uuid.New().String(),
		FeatureID:   featureID,
		FeatureName: name,
		IRPath:      path,
		TotalItems:  stats.Total,
		MaxDepth:    stats.MaxDepth,
		MarshaledAt: at,
	}
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRuns := repository.NewSQLiteMarshalRunRepo(tx)
		if err := txRuns.Create(ctx, run); err != nil {
			return err
		}
		_, err := txRuns.PruneFeature(ctx, featureID, HistoryKeep)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("recording marshal run: %w", err)
	}
	return run, nil
}
