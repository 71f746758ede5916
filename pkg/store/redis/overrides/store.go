package overrides

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/de-tools/price-atlas/pkg/models/store"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "priceatlas:override:"

var ErrNotFound = errors.New("override not found")

// Store keeps at most one manual price override per commodity key.
type Store interface {
	Set(ctx context.Context, record store.OverrideRecord) error
	Get(ctx context.Context, commodity, specification string) (*store.OverrideRecord, error)
	Delete(ctx context.Context, commodity, specification string) error
	List(ctx context.Context) ([]store.OverrideRecord, error)
	Close() error
}

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) (Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &redisStore{client: client}, nil
}

// Connect dials addr and checks the connection before returning a Store.
func Connect(ctx context.Context, addr string, db int, password string) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStore(client)
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

func recordKey(commodity, specification string) string {
	return keyPrefix + normalize(commodity) + "|" + normalize(specification)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func (s *redisStore) Set(ctx context.Context, record store.OverrideRecord) error {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal override: %w", err)
	}
	if err := s.client.Set(ctx, recordKey(record.Commodity, record.Specification), data, 0).Err(); err != nil {
		return fmt.Errorf("set override: %w", err)
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, commodity, specification string) (*store.OverrideRecord, error) {
	val, err := s.client.Get(ctx, recordKey(commodity, specification)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get override: %w", err)
	}

	var record store.OverrideRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return nil, fmt.Errorf("unmarshal override: %w", err)
	}
	return &record, nil
}

func (s *redisStore) Delete(ctx context.Context, commodity, specification string) error {
	n, err := s.client.Del(ctx, recordKey(commodity, specification)).Result()
	if err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *redisStore) List(ctx context.Context) ([]store.OverrideRecord, error) {
	var records []store.OverrideRecord
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()

	for iter.Next(ctx) {
		val, err := s.client.Get(ctx, iter.Val()).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("get override %s: %w", iter.Val(), err)
		}

		var record store.OverrideRecord
		if err := json.Unmarshal([]byte(val), &record); err != nil {
			// corrupt entries are skipped
			continue
		}
		records = append(records, record)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan overrides: %w", err)
	}

	sortRecords(records)
	return records, nil
}

// memoryStore is used when no redis address is configured.
type memoryStore struct {
	mu      sync.RWMutex
	records map[string]store.OverrideRecord
}

func NewMemoryStore() Store {
	return &memoryStore{records: make(map[string]store.OverrideRecord)}
}

func (m *memoryStore) Set(_ context.Context, record store.OverrideRecord) error {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[recordKey(record.Commodity, record.Specification)] = record
	return nil
}

func (m *memoryStore) Get(_ context.Context, commodity, specification string) (*store.OverrideRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[recordKey(commodity, specification)]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (m *memoryStore) Delete(_ context.Context, commodity, specification string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := recordKey(commodity, specification)
	if _, ok := m.records[key]; !ok {
		return ErrNotFound
	}
	delete(m.records, key)
	return nil
}

func (m *memoryStore) List(_ context.Context) ([]store.OverrideRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]store.OverrideRecord, 0, len(m.records))
	for _, r := range m.records {
		records = append(records, r)
	}
	sortRecords(records)
	return records, nil
}

func (m *memoryStore) Close() error { return nil }

func sortRecords(records []store.OverrideRecord) {
	sort.Slice(records, func(i, j int) bool {
		return recordKey(records[i].Commodity, records[i].Specification) <
			recordKey(records[j].Commodity, records[j].Specification)
	})
}
