package imports

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/price-atlas/pkg/models/store"
	"github.com/de-tools/price-atlas/pkg/store/duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{db: db, store: s}
}

func TestNewStore(t *testing.T) {
	t.Run("nil db", func(t *testing.T) {
		s, err := NewStore(nil)
		assert.Error(t, err)
		assert.Nil(t, s)
	})
}

func TestImportStore_AddAndList(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	first := &store.ImportRun{Source: "reference", File: "prices.csv", Read: 10, Accepted: 9, Dropped: 1}
	require.NoError(t, f.store.Add(ctx, first))
	assert.NotEmpty(t, first.ID)

	second := &store.ImportRun{ID: "run-2", Source: "manual", Read: 2, Accepted: 2, Replaced: 5}
	require.NoError(t, f.store.Add(ctx, second))

	runs, err := f.store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byID := map[string]store.ImportRun{}
	for _, r := range runs {
		byID[r.ID] = r
	}
	assert.Equal(t, "prices.csv", byID[first.ID].File)
	assert.Equal(t, 1, byID[first.ID].Dropped)
	assert.Equal(t, "", byID["run-2"].File)
	assert.Equal(t, int64(5), byID["run-2"].Replaced)
	assert.False(t, byID["run-2"].ImportedAt.IsZero())

	runs, err = f.store.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestImportStore_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM import_runs").WillReturnError(errors.New("connection reset"))

	_, err = s.List(context.Background(), 5)
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
