package service

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-submit-api/internal/dto"
	"github.com/noah-isme/gema-submit-api/internal/observability"
)

const studentCachePrefix = "submissions:student:"

// ListingCache keeps per-student submission listings in Redis. A listing
// depends on submissions and on the users table (a key may match the owner's
// display name), so both submission and user mutations must call Invalidate.
// A nil *ListingCache is valid and caches nothing.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewListingCache returns nil when client is nil.
func NewListingCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *ListingCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &ListingCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "listing_cache").Logger(),
	}
}

// Get returns the cached listing for key, if present.
func (c *ListingCache) Get(ctx context.Context, key string) ([]dto.SubmissionResponse, bool) {
	if c == nil {
		return nil, false
	}

	cached, err := c.client.Get(ctx, studentCachePrefix+key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		observability.CacheLookups().WithLabelValues("miss").Inc()
		return nil, false
	case err != nil:
		observability.CacheLookups().WithLabelValues("error").Inc()
		c.logger.Warn().Err(err).Msg("failed to read submission cache")
		return nil, false
	}

	var response []dto.SubmissionResponse
	if err := sonic.UnmarshalString(cached, &response); err != nil {
		observability.CacheLookups().WithLabelValues("error").Inc()
		return nil, false
	}
	observability.CacheLookups().WithLabelValues("hit").Inc()
	return response, true
}

// Set stores the listing for key.
func (c *ListingCache) Set(ctx context.Context, key string, response []dto.SubmissionResponse) {
	if c == nil {
		return
	}

	payload, err := sonic.MarshalString(response)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, studentCachePrefix+key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store submission cache")
	}
}

// Invalidate drops every cached listing. A submission may be reachable from
// several keys (raw student value, owner email), so entries are not targeted
// individually.
func (c *ListingCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}

	iter := c.client.Scan(ctx, 0, studentCachePrefix+"*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to scan submission cache")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to invalidate submission cache")
	}
}
