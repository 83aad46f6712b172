package cache

import (
	"context"
	"fmt"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/config"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
)

const snapshotKey = "ppic:snapshot"

// SnapshotCache holds the last store snapshot so that restarts and parallel
// server instances skip the full spreadsheet read.
type SnapshotCache interface {
	Get(ctx context.Context) (*domain.Snapshot, bool, error)
	Set(ctx context.Context, snap *domain.Snapshot) error
	Invalidate(ctx context.Context) error
}

type redisSnapshotCache struct {
	*redisStore
}

type noopSnapshotCache struct{}

func NewSnapshotCache(cfg config.CacheConfig) (SnapshotCache, error) {
	if !cfg.Enabled {
		return &noopSnapshotCache{}, nil
	}

	store, err := openRedis(cfg)
	if err != nil {
		return nil, err
	}
	return &redisSnapshotCache{store}, nil
}

func NewNoopSnapshotCache() SnapshotCache {
	return &noopSnapshotCache{}
}

func (c *redisSnapshotCache) Get(ctx context.Context) (*domain.Snapshot, bool, error) {
	var snap domain.Snapshot
	ok, err := c.getJSON(ctx, snapshotKey, &snap)
	if err != nil || !ok {
		return nil, false, err
	}
	return &snap, true, nil
}

func (c *redisSnapshotCache) Set(ctx context.Context, snap *domain.Snapshot) error {
	return c.setJSON(ctx, snapshotKey, snap)
}

// Invalidate drops the snapshot together with every analytics entry derived
// from it.
func (c *redisSnapshotCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, snapshotKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return c.deletePrefix(ctx, analyticsKeyPrefix)
}

func (n *noopSnapshotCache) Get(ctx context.Context) (*domain.Snapshot, bool, error) {
	return nil, false, nil
}

func (n *noopSnapshotCache) Set(ctx context.Context, snap *domain.Snapshot) error {
	return nil
}

func (n *noopSnapshotCache) Invalidate(ctx context.Context) error {
	return nil
}
