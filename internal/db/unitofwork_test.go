package db_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/azdo/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insertRun = `INSERT INTO marshal_runs (id, feature_id, feature_name, ir_path, total_items, marshaled_at)
	VALUES (?, 100, 'checkout', 'ir/feature-100.yaml', 4, '2026-03-14T09:26:53Z')`

func openUoW(t *testing.T) (*sql.DB, *db.SQLiteUnitOfWork) {
	t.Helper()
	database, err := db.OpenDB(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, db.NewSQLiteUnitOfWork(database)
}

func runExists(t *testing.T, database *sql.DB, id string) bool {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM marshal_runs WHERE id = ?`, id).Scan(&n))
	return n > 0
}

func TestWithinTx_CommitsRecordAndPrune(t *testing.T) {
	database, uow := openUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, insertRun, "old"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertRun, "new"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM marshal_runs WHERE id = ?`, "old")
		return err
	})
	require.NoError(t, err)

	assert.True(t, runExists(t, database, "new"))
	assert.False(t, runExists(t, database, "old"))
}

func TestWithinTx_ErrorRollsBackEveryWrite(t *testing.T) {
	database, uow := openUoW(t)
	boom := errors.New("prune failed")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, insertRun, "r1"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, runExists(t, database, "r1"))
}

func TestWithinTx_ConstraintViolationRollsBack(t *testing.T) {
	database, uow := openUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, insertRun, "dup"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, insertRun, "dup")
		return err
	})
	require.Error(t, err)
	assert.False(t, runExists(t, database, "dup"))
}

func TestWithinTx_PanicRollsBackAndRepanics(t *testing.T) {
	database, uow := openUoW(t)

	assert.PanicsWithValue(t, "boom", func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_, _ = tx.ExecContext(ctx, insertRun, "r2")
			panic("boom")
		})
	})
	assert.False(t, runExists(t, database, "r2"))
}

func TestWithinTx_CancelledContext(t *testing.T) {
	_, uow := openUoW(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := uow.WithinTx(ctx, func(context.Context, db.DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}
