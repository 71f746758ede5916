package overrides

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/de-tools/price-atlas/pkg/models/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (Store, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := Connect(context.Background(), mr.Addr(), 0, "")
	require.NoError(t, err)
	return s, mr
}

func testStores(t *testing.T) map[string]Store {
	redisStore, _ := setupRedisStore(t)
	return map[string]Store{
		"redis":  redisStore,
		"memory": NewMemoryStore(),
	}
}

func TestStore_SetGetDelete(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			updated := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

			err := s.Set(ctx, store.OverrideRecord{
				Commodity:     "Rice",
				Specification: "Well Milled",
				Date:          "2026-09-30",
				Price:         47.5,
				UpdatedAt:     updated,
			})
			require.NoError(t, err)

			got, err := s.Get(ctx, " rice", "WELL MILLED")
			require.NoError(t, err)
			assert.Equal(t, 47.5, got.Price)
			assert.Equal(t, "2026-09-30", got.Date)
			assert.True(t, updated.Equal(got.UpdatedAt))

			require.NoError(t, s.Delete(ctx, "rice", "well milled"))
			_, err = s.Get(ctx, "rice", "well milled")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.Delete(ctx, "rice", "well milled"), ErrNotFound)
		})
	}
}

func TestStore_List(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, store.OverrideRecord{Commodity: "tilapia", Specification: "medium", Date: "2026-10-01", Price: 130}))
			require.NoError(t, s.Set(ctx, store.OverrideRecord{Commodity: "corn", Date: "2026-10-02", Price: 28}))
			require.NoError(t, s.Set(ctx, store.OverrideRecord{Commodity: "corn", Date: "2026-10-03", Price: 29}))

			records, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "corn", records[0].Commodity)
			assert.Equal(t, 29.0, records[0].Price)
			assert.Equal(t, "tilapia", records[1].Commodity)
			assert.False(t, records[1].UpdatedAt.IsZero())
		})
	}
}

func TestRedisStore_ListSkipsCorruptEntries(t *testing.T) {
	s, mr := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, store.OverrideRecord{Commodity: "corn", Date: "2026-10-02", Price: 28}))
	require.NoError(t, mr.Set(keyPrefix+"garbage|", "{not json"))

	records, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), "127.0.0.1:1", 0, "")
	assert.Error(t, err)
}

func TestNewRedisStore_NilClient(t *testing.T) {
	var client *redis.Client
	_, err := NewRedisStore(client)
	assert.Error(t, err)
}
