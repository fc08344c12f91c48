package outcome

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"matchday-bot/internal/model"
)

// CachedProvider keeps found outcomes in Redis so repeated verifications of
// a round do not hit the statistics API again. Redis failures fall back to
// the wrapped provider.
type CachedProvider struct {
	next   Provider
	client *redis.Client
	ttl    time.Duration
}

// NewCachedProvider wraps next with a Redis cache.
func NewCachedProvider(next Provider, client *redis.Client, ttl time.Duration) *CachedProvider {
	return &CachedProvider{next: next, client: client, ttl: ttl}
}

func cacheKey(matchID string) string { return "outcome:" + matchID }

// Lookup serves from cache or asks the wrapped provider.
func (c *CachedProvider) Lookup(ctx context.Context, matchID string) (*model.MatchOutcome, error) {
	raw, err := c.client.Get(ctx, cacheKey(matchID)).Bytes()
	switch {
	case err == nil:
		var out model.MatchOutcome
		if uerr := json.Unmarshal(raw, &out); uerr == nil {
			return &out, nil
		}
		log.Warn().Str("match", matchID).Msg("Discarding undecodable cached outcome")
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("match", matchID).Msg("Outcome cache read failed")
	}

	out, err := c.next.Lookup(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if b, merr := json.Marshal(out); merr == nil {
		if serr := c.client.Set(ctx, cacheKey(matchID), b, c.ttl).Err(); serr != nil {
			log.Warn().Err(serr).Str("match", matchID).Msg("Outcome cache write failed")
		}
	}
	return out, nil
}
