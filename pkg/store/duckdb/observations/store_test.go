package observations

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/price-atlas/pkg/models/store"
	"github.com/de-tools/price-atlas/pkg/store/duckdb"
	_ "github.com/marcboeker/go-duckdb/v2"
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

func sampleRecords() []store.ObservationRecord {
	return []store.ObservationRecord{
		{Commodity: "Rice", Specification: "Well Milled", Price: 40, ObservedOn: "2025-01-05", Region: "NCR", Source: "reference"},
		{Commodity: "rice ", Specification: "well milled", Price: 44, ObservedOn: "2025-01-20", Region: "NCR", Source: "reference"},
		{Commodity: "Tilapia", Specification: "Medium", Price: 0, ObservedOn: "not a date", Region: "R3", Source: "manual"},
	}
}

func TestObservationStore_Add(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	t.Run("success - add records", func(t *testing.T) {
		err := f.store.Add(ctx, sampleRecords())
		require.NoError(t, err)

		var count int
		err = f.db.QueryRow("SELECT COUNT(*) FROM price_observations").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("success - empty records", func(t *testing.T) {
		require.NoError(t, f.store.Add(ctx, nil))
	})

	t.Run("error - duplicate ids", func(t *testing.T) {
		records := []store.ObservationRecord{{ID: "duplicate", Commodity: "corn", Price: 1, ObservedOn: "2025-01-01"}}

		require.NoError(t, f.store.Add(ctx, records))
		assert.Error(t, f.store.Add(ctx, records))
	})
}

func TestObservationStore_ListKeepsInvalidRows(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Add(ctx, sampleRecords()))

	records, err := f.store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	var tilapia *store.ObservationRecord
	for i := range records {
		assert.NotEmpty(t, records[i].ID)
		if records[i].Commodity == "Tilapia" {
			tilapia = &records[i]
		}
	}
	require.NotNil(t, tilapia)
	assert.Equal(t, "not a date", tilapia.ObservedOn)
	assert.Equal(t, 0.0, tilapia.Price)
}

func TestObservationStore_ListCommodity(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Add(ctx, sampleRecords()))

	records, err := f.store.ListCommodity(ctx, "RICE", " Well Milled")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2025-01-05", records[0].ObservedOn)
	assert.Equal(t, "2025-01-20", records[1].ObservedOn)
}

func TestObservationStore_DeleteSourceAndStats(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Add(ctx, sampleRecords()))

	stats, err := f.store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.RecordsCount)
	assert.Equal(t, int64(2), stats.Commodities)

	n, err := f.store.DeleteSource(ctx, "manual")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stats, err = f.store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.RecordsCount)
	require.NotNil(t, stats.FirstObserved)
	assert.Equal(t, "2025-01-05", *stats.FirstObserved)
	assert.Equal(t, "2025-01-20", *stats.LastObserved)
}

func TestObservationStore_ListQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM price_observations ORDER BY commodity")).
		WillReturnError(errors.New("connection reset"))

	s, err := NewStore(db)
	require.NoError(t, err)

	_, err = s.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query observations")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObservationStore_AddExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPrepare("INSERT INTO price_observations").
		ExpectExec().
		WillReturnError(errors.New("disk full"))

	s, err := NewStore(db)
	require.NoError(t, err)

	err = s.Add(context.Background(), sampleRecords()[:1])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert record")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewStore_NilDB(t *testing.T) {
	_, err := NewStore(nil)
	assert.Error(t, err)
}
