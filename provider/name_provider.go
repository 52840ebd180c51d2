package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	coreredis "github.com/Digital-Creators-Team/lucky-draw-module/db/redis"
	"github.com/rs/zerolog"
)

// JSONStore is the part of the Redis client the name provider needs.
type JSONStore interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// RedisNameProvider implements providers.NameProvider using Redis.
// Only the candidate list is stored; winners never are.
type RedisNameProvider struct {
	store  JSONStore
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisNameProvider creates a name provider. A zero ttl keeps keys forever.
func NewRedisNameProvider(store JSONStore, prefix string, ttl time.Duration, logger zerolog.Logger) *RedisNameProvider {
	if prefix == "" {
		prefix = "reel:names:"
	}
	return &RedisNameProvider{
		store:  store,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With().Str("component", "name_provider").Logger(),
	}
}

func (p *RedisNameProvider) namesKey(reelCode string) string {
	return p.prefix + reelCode
}

// LoadNames reads the saved list of reelCode.
func (p *RedisNameProvider) LoadNames(ctx context.Context, reelCode string) ([]string, bool, error) {
	key := p.namesKey(reelCode)
	var names []string
	if err := p.store.GetJSON(ctx, key, &names); err != nil {
		if errors.Is(err, coreredis.ErrNotFound) {
			p.logger.Debug().Str("key", key).Msg("No saved name list")
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load names: %w", err)
	}
	return names, true, nil
}

// SaveNames overwrites the saved list of reelCode.
func (p *RedisNameProvider) SaveNames(ctx context.Context, reelCode string, names []string) error {
	if names == nil {
		names = []string{}
	}
	if err := p.store.SetJSON(ctx, p.namesKey(reelCode), names, p.ttl); err != nil {
		return fmt.Errorf("failed to save names: %w", err)
	}
	return nil
}
