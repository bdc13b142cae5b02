package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/azdo/internal/db"
	"github.com/alexanderramin/azdo/internal/domain"
)

const marshalRunColumns = `id, feature_id, feature_name, ir_path, total_items, max_depth, marshaled_at`

// SQLiteMarshalRunRepo implements MarshalRunRepo over a SQLite connection or
// transaction.
type SQLiteMarshalRunRepo struct {
	db db.DBTX
}

// NewSQLiteMarshalRunRepo creates a new SQLiteMarshalRunRepo.
func NewSQLiteMarshalRunRepo(conn db.DBTX) *SQLiteMarshalRunRepo {
	return &SQLiteMarshalRunRepo{db: conn}
}

func (r *SQLiteMarshalRunRepo) Create(ctx context.Context, run *domain.MarshalRun) error {
	query := `INSERT INTO marshal_runs (` + marshalRunColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.FeatureID,
		run.FeatureName,
		run.IRPath,
		run.TotalItems,
		run.MaxDepth,
		formatTime(run.MarshaledAt),
	)
	if err != nil {
		return fmt.Errorf("inserting marshal run: %w", err)
	}
	return nil
}

// ListRecent returns runs newest first. A non-positive limit returns all.
func (r *SQLiteMarshalRunRepo) ListRecent(ctx context.Context, limit int) ([]*domain.MarshalRun, error) {
	query := `SELECT ` + marshalRunColumns + ` FROM marshal_runs
		ORDER BY marshaled_at DESC, rowid DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("listing recent marshal runs: %w", err)
	}
	defer rows.Close()
	return r.scanRuns(rows)
}

func (r *SQLiteMarshalRunRepo) ListByFeature(ctx context.Context, featureID, limit int) ([]*domain.MarshalRun, error) {
	query := `SELECT ` + marshalRunColumns + ` FROM marshal_runs
		WHERE feature_id = ?
		ORDER BY marshaled_at DESC, rowid DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, featureID, limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("listing marshal runs by feature: %w", err)
	}
	defer rows.Close()
	return r.scanRuns(rows)
}

func (r *SQLiteMarshalRunRepo) LatestByFeature(ctx context.Context, featureID int) (*domain.MarshalRun, error) {
	query := `SELECT ` + marshalRunColumns + ` FROM marshal_runs
		WHERE feature_id = ?
		ORDER BY marshaled_at DESC, rowid DESC LIMIT 1`
	return r.scanRun(r.db.QueryRowContext(ctx, query, featureID))
}

// PruneFeature keeps the newest keep runs of a feature and deletes the rest,
// returning how many were deleted.
func (r *SQLiteMarshalRunRepo) PruneFeature(ctx context.Context, featureID, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	query := `DELETE FROM marshal_runs
		WHERE feature_id = ?
		  AND id NOT IN (
			SELECT id FROM marshal_runs WHERE feature_id = ?
			ORDER BY marshaled_at DESC, rowid DESC LIMIT ?
		  )`
	res, err := r.db.ExecContext(ctx, query, featureID, featureID, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning marshal runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned marshal runs: %w", err)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteMarshalRunRepo) scanRun(row *sql.Row) (*domain.MarshalRun, error) {
	run, err := scanMarshalRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("marshal run: %w", ErrNotFound)
		}
		return nil, err
	}
	return run, nil
}

func (r *SQLiteMarshalRunRepo) scanRuns(rows *sql.Rows) ([]*domain.MarshalRun, error) {
	var runs []*domain.MarshalRun
	for rows.Next() {
		run, err := scanMarshalRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating marshal runs: %w", err)
	}
	return runs, nil
}

func scanMarshalRun(s rowScanner) (*domain.MarshalRun, error) {
	var run domain.MarshalRun
	var marshaledAt string
	err := s.Scan(&run.ID, &run.FeatureID, &run.FeatureName, &run.IRPath, &run.TotalItems, &run.MaxDepth, &marshaledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning marshal run: %w", err)
	}
	run.MarshaledAt, err = time.Parse(time.RFC3339, marshaledAt)
	if err != nil {
		return nil, fmt.Errorf("parsing marshaled_at: %w", err)
	}
	return &run, nil
}
