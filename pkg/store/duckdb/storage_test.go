package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_CreatesSchema(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "duckdb-test-*")
	require.NoError(t, err)

	defer func() {
		err := os.RemoveAll(tmpDir)
		if err != nil {
			t.Errorf("failed to cleanup test directory: %v", err)
		}
	}()

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := NewDB(Settings{
		DbPath: dbPath,
	})
	require.NoError(t, err)
	require.NotNil(t, db)

	defer func() {
		err := db.Close()
		if err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	}()

	_, err = db.Exec(
		`INSERT INTO price_observations (id, commodity, specification, price, observed_on, region, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"obs-001", "rice", "well milled", 42.5, "2025-01-05", "NCR", "reference",
	)
	require.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM price_observations WHERE id = ?", "obs-001").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPrepare_UsesTransactionFromContext(t *testing.T) {
	db, err := NewDB(Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	stmt, err := Prepare(WithTransaction(ctx, tx), db, "INSERT INTO price_observations (id, commodity) VALUES (?, ?)")
	require.NoError(t, err)
	_, err = stmt.ExecContext(ctx, "tx-1", "corn")
	require.NoError(t, err)
	require.NoError(t, stmt.Close())
	require.NoError(t, tx.Rollback())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM price_observations").Scan(&count))
	assert.Equal(t, 0, count)
}
