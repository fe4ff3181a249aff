// Package raterepo manages the cache store layer of exchange rate tables.
package raterepo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-petr/pln-wallet/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	freshKey = "exchange_rates:fresh"
	// lastKey keeps the latest table without expiry so a provider outage can
	// be served from stale data.
	lastKey = "exchange_rates:last"
)

// RepoRedis stores exchange rate table snapshots in Redis.
type RepoRedis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRepoRedis returns rate table RepoRedis with the given freshness window.
func NewRepoRedis(client *redis.Client, ttl time.Duration) *RepoRedis {
	return &RepoRedis{
		client: client,
		ttl:    ttl,
	}
}

// GetFresh returns the cached table that is still within its freshness window.
func (r *RepoRedis) GetFresh(ctx context.Context) (domain.RateTable, error) {
	return r.get(ctx, freshKey)
}

// GetLast returns the most recently fetched table regardless of freshness.
func (r *RepoRedis) GetLast(ctx context.Context) (domain.RateTable, error) {
	return r.get(ctx, lastKey)
}

// SetTable stores the table under both the expiring fresh key and the
// non-expiring fallback key.
func (r *RepoRedis) SetTable(ctx context.Context, table domain.RateTable) error {
	l := zerolog.Ctx(ctx)

	payload, err := json.Marshal(table)
	if err != nil {
		l.Error().Err(err).Send()
		return err
	}

	if err := r.client.Set(ctx, freshKey, payload, r.ttl).Err(); err != nil {
		l.Error().Err(err).Send()
		return err
	}

	if err := r.client.Set(ctx, lastKey, payload, 0).Err(); err != nil {
		l.Error().Err(err).Send()
		return err
	}

	return nil
}

func (r *RepoRedis) get(ctx context.Context, key string) (domain.RateTable, error) {
	l := zerolog.Ctx(ctx)

	var table domain.RateTable

	payload, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return table, domain.ErrRateTableNotFound
		}

		l.Error().Err(err).Send()

		return table, err
	}

	if err := json.Unmarshal(payload, &table); err != nil {
		l.Error().Err(err).Send()
		return table, err
	}

	return table, nil
}
