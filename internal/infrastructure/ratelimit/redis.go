package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

// RedisGate shares the registration cooldown across processes.
// Key format: regcooldown:<device key>, expiring after the cooldown window.
type RedisGate struct {
	client   *redis.Client
	cooldown time.Duration
}

var _ ports.CooldownGate = (*RedisGate)(nil)

func NewRedisGate(client *redis.Client, cooldown time.Duration) *RedisGate {
	return &RedisGate{client: client, cooldown: cooldown}
}

func (g *RedisGate) Allow(ctx context.Context, key string) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown check: %w", err)
	}
	return n == 0, nil
}

func (g *RedisGate) Mark(ctx context.Context, key string) error {
	return g.client.Set(ctx, g.key(key), "1", g.cooldown).Err()
}

func (g *RedisGate) key(device string) string {
	return fmt.Sprintf("regcooldown:%s", device)
}
