// Package ratelimit implements the registration cooldown gate. The in-memory
// gate covers single-process deployments; the Redis gate shares the cooldown
// across processes on the same device.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

// MemoryGate tracks the last successful registration per key in process
// memory.
type MemoryGate struct {
	cooldown time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

var _ ports.CooldownGate = (*MemoryGate)(nil)

func NewMemoryGate(cooldown time.Duration) *MemoryGate {
	return &MemoryGate{
		cooldown: cooldown,
		now:      time.Now,
		last:     make(map[string]time.Time),
	}
}

func (g *MemoryGate) Allow(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.last[key]
	if !ok {
		return true, nil
	}
	return g.now().Sub(last) >= g.cooldown, nil
}

func (g *MemoryGate) Mark(_ context.Context, key string) error {
	g.mu.Lock()
	g.last[key] = g.now()
	g.mu.Unlock()
	return nil
}
