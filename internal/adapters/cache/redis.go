package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tickstats/internal/domain"
)

// RedisCache stores the last tick per instrument in Redis, falling
// back to an in-memory map when Redis misbehaves mid-flight.
type RedisCache struct {
	rdb *redis.Client
	mem *MemoryCache
	ttl time.Duration
}

type redisMember struct {
	Price float64 `json:"price"`
	Ts    int64   `json:"ts"` // original tick timestamp, ms
}

// NewRedisCache connects and pings Redis; an unreachable server fails
// construction so callers can fall back to MemoryCache.
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{
		rdb: rdb,
		mem: NewMemoryCache(ttl),
		ttl: ttl,
	}, nil
}

func lastKey(instrument string) string { return "last:" + instrument }

func (r *RedisCache) PushTick(ctx context.Context, t domain.Tick) error {
	b, _ := json.Marshal(redisMember{Price: t.Price, Ts: t.Timestamp})
	if err := r.rdb.Set(ctx, lastKey(t.Instrument), b, r.ttl).Err(); err != nil {
		_ = r.mem.PushTick(ctx, t)
		return fmt.Errorf("redis set last %s: %w", t.Instrument, err)
	}
	return nil
}

func (r *RedisCache) GetLatest(ctx context.Context, instrument string) (domain.Tick, error) {
	b, err := r.rdb.Get(ctx, lastKey(instrument)).Bytes()
	if err != nil {
		// Redis down or key missing; the memory fallback may still
		// hold ticks pushed while Redis was unavailable.
		return r.mem.GetLatest(ctx, instrument)
	}
	var m redisMember
	if err := json.Unmarshal(b, &m); err != nil {
		return domain.Tick{}, fmt.Errorf("decode cached tick %s: %w", instrument, err)
	}
	return domain.Tick{Instrument: instrument, Price: m.Price, Timestamp: m.Ts}, nil
}

func (r *RedisCache) Health(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	_ = r.mem.Close()
	return r.rdb.Close()
}
