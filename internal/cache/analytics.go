package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/analytics"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/config"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
)

const analyticsKeyPrefix = "ppic:analytics"

// AnalyticsKey identifies one sales analysis run. DataVersion is a content
// hash of the inputs, so edits made directly in the spreadsheet miss the
// cache on the next poll.
type AnalyticsKey struct {
	Start       string
	End         string
	SKUIDs      []string
	DataVersion string
}

// NewAnalyticsKey builds the key for analysing sales against products over
// [start, end].
func NewAnalyticsKey(start, end string, sales []domain.SalesRecord, products []domain.FinishGood) AnalyticsKey {
	key := AnalyticsKey{
		Start:       start,
		End:         end,
		DataVersion: DataVersion(sales, products),
	}
	for _, p := range products {
		key.SKUIDs = append(key.SKUIDs, p.ID)
	}
	return key
}

// DataVersion hashes every field the sales analysis reads.
func DataVersion(sales []domain.SalesRecord, products []domain.FinishGood) string {
	h := sha1.New()
	for _, r := range sales {
		fmt.Fprintf(h, "s|%s|%s|%s|%v\n", r.ID, r.SKUID, r.Date, r.QuantitySold)
	}
	for _, p := range products {
		fmt.Fprintf(h, "p|%s|%s|%v\n", p.ID, p.Name, p.QtyPerBatch)
	}
	return hex.EncodeToString(h.Sum(nil))
}

type AnalyticsCache interface {
	Get(ctx context.Context, key AnalyticsKey) ([]analytics.SkuDemandStats, bool, error)
	Set(ctx context.Context, key AnalyticsKey, stats []analytics.SkuDemandStats) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalyticsCache struct {
	*redisStore
}

type noopAnalyticsCache struct{}

func NewAnalyticsCache(cfg config.CacheConfig) (AnalyticsCache, error) {
	if !cfg.Enabled {
		return &noopAnalyticsCache{}, nil
	}

	store, err := openRedis(cfg)
	if err != nil {
		return nil, err
	}
	return &redisAnalyticsCache{store}, nil
}

func NewNoopAnalyticsCache() AnalyticsCache {
	return &noopAnalyticsCache{}
}

func (c *redisAnalyticsCache) Get(ctx context.Context, key AnalyticsKey) ([]analytics.SkuDemandStats, bool, error) {
	var stats []analytics.SkuDemandStats
	ok, err := c.getJSON(ctx, buildAnalyticsKey(key), &stats)
	if err != nil || !ok {
		return nil, false, err
	}
	return stats, true, nil
}

func (c *redisAnalyticsCache) Set(ctx context.Context, key AnalyticsKey, stats []analytics.SkuDemandStats) error {
	return c.setJSON(ctx, buildAnalyticsKey(key), stats)
}

func (c *redisAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return c.deletePrefix(ctx, analyticsKeyPrefix)
}

func (n *noopAnalyticsCache) Get(ctx context.Context, key AnalyticsKey) ([]analytics.SkuDemandStats, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) Set(ctx context.Context, key AnalyticsKey, stats []analytics.SkuDemandStats) error {
	return nil
}

func (n *noopAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildAnalyticsKey(key AnalyticsKey) string {
	return fmt.Sprintf("%s:%s", analyticsKeyPrefix, analyticsKeyHash(key))
}

func analyticsKeyHash(key AnalyticsKey) string {
	parts := []string{
		"start=" + strings.TrimSpace(key.Start),
		"end=" + strings.TrimSpace(key.End),
		"data=" + key.DataVersion,
	}
	// product order is part of the result, so the ids are not sorted
	if len(key.SKUIDs) > 0 {
		parts = append(parts, "skus="+strings.Join(key.SKUIDs, ","))
	}

	sort.Strings(parts)
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
