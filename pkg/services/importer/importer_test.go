package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/price-atlas/pkg/models/store"
	"github.com/de-tools/price-atlas/pkg/store/duckdb"
	"github.com/de-tools/price-atlas/pkg/store/duckdb/imports"
	duckdbobservations "github.com/de-tools/price-atlas/pkg/store/duckdb/observations"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupImporter(t *testing.T) (*Importer, duckdbobservations.Store) {
	t.Helper()
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := duckdbobservations.NewStore(db)
	require.NoError(t, err)
	runs, err := imports.NewStore(db)
	require.NoError(t, err)
	imp, err := NewImporter(db, s, runs)
	require.NoError(t, err)
	return imp, s
}

func TestImporter_ImportFile(t *testing.T) {
	imp, s := setupImporter(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "prices.csv")
	csv := "Commodity,Specification,Price,Date\n" +
		"Rice,Well Milled,40,2025-01-05\n" +
		"Rice,Well Milled,44,2025-01-20\n" +
		"Rice,Well Milled,n/a,2025-02-01\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	result, err := imp.ImportFile(ctx, path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Read)
	assert.Equal(t, 2, result.Report.Accepted)
	assert.Equal(t, 1, result.Report.Dropped)

	records, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	result, err = imp.ImportFile(ctx, path, Options{Replace: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Replaced)

	records, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	runs, err := imp.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, path, runs[0].File)
	assert.Equal(t, 2, runs[0].Accepted)
}

func TestImporter_SourcesAreIndependent(t *testing.T) {
	imp, s := setupImporter(t)
	ctx := context.Background()
	logger := zerolog.Nop()

	_, err := imp.Import(ctx, []store.ObservationRecord{
		{Commodity: "Corn", Price: 20, ObservedOn: "2025-03-01"},
	}, Options{}, logger)
	require.NoError(t, err)

	_, err = imp.Import(ctx, []store.ObservationRecord{
		{Commodity: "Corn", Price: 21, ObservedOn: "2025-03-02"},
	}, Options{Source: "manual", Replace: true}, logger)
	require.NoError(t, err)

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.ElementsMatch(t, []string{"reference", "manual"}, []string{records[0].Source, records[1].Source})
}

func TestImporter_RollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := duckdbobservations.NewStore(db)
	require.NoError(t, err)
	runs, err := imports.NewStore(db)
	require.NoError(t, err)
	imp, err := NewImporter(db, s, runs)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO price_observations").
		ExpectExec().
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = imp.Import(context.Background(), []store.ObservationRecord{
		{Commodity: "Corn", Price: 20, ObservedOn: "2025-03-01"},
	}, Options{}, zerolog.Nop())
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImporter_UnsupportedFile(t *testing.T) {
	imp, _ := setupImporter(t)
	_, err := imp.ImportFile(context.Background(), "prices.json", Options{})
	assert.Error(t, err)
}

func TestNewImporter_NilDependencies(t *testing.T) {
	_, err := NewImporter(nil, nil, nil)
	assert.Error(t, err)
}
