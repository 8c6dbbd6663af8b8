package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/platable/insights-backend/internal/config"
	"github.com/platable/insights-backend/internal/domain"
)

const (
	kpiKeyPrefix  = "insights:kpis"
	scanBatchSize = 100
)

// KPICache caches the scalar KPI block per (dataset revision, filter).
// The revision in the key makes stale entries unreachable after an upload
// or refresh; InvalidateAll reclaims them eagerly.
type KPICache interface {
	Get(ctx context.Context, revision uint64, filter domain.Filter) (*domain.KPISummary, bool, error)
	Set(ctx context.Context, revision uint64, filter domain.Filter, kpis *domain.KPISummary) error
	InvalidateAll(ctx context.Context) error
}

type redisKPICache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopKPICache struct{}

// NewKPICache returns a redis-backed cache when caching is enabled, and a
// noop implementation otherwise.
func NewKPICache(cfg config.CacheConfig) (KPICache, error) {
	if !cfg.Enabled {
		return &noopKPICache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisKPICache{client: client, ttl: ttl}, nil
}

// NewNoopKPICache returns a cache that never hits.
func NewNoopKPICache() KPICache {
	return &noopKPICache{}
}

func (c *redisKPICache) Get(ctx context.Context, revision uint64, filter domain.Filter) (*domain.KPISummary, bool, error) {
	key := buildKPIKey(revision, filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var kpis domain.KPISummary
	if err := json.Unmarshal(payload, &kpis); err != nil {
		return nil, false, fmt.Errorf("decode kpi cache: %w", err)
	}

	return &kpis, true, nil
}

func (c *redisKPICache) Set(ctx context.Context, revision uint64, filter domain.Filter, kpis *domain.KPISummary) error {
	key := buildKPIKey(revision, filter)
	payload, err := json.Marshal(kpis)
	if err != nil {
		return fmt.Errorf("encode kpi cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisKPICache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, kpiKeyPrefix, scanBatchSize)
}

func (n *noopKPICache) Get(ctx context.Context, revision uint64, filter domain.Filter) (*domain.KPISummary, bool, error) {
	return nil, false, nil
}

func (n *noopKPICache) Set(ctx context.Context, revision uint64, filter domain.Filter, kpis *domain.KPISummary) error {
	return nil
}

func (n *noopKPICache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildKPIKey(revision uint64, filter domain.Filter) string {
	var parts []string
	if filter.DateFrom != nil {
		parts = append(parts, "from="+filter.DateFrom.Format("2006-01-02"))
	}
	if filter.DateTo != nil {
		parts = append(parts, "to="+filter.DateTo.Format("2006-01-02"))
	}
	appendSet := func(name string, vals []string) {
		if len(vals) > 0 {
			parts = append(parts, name+"="+strings.Join(vals, ","))
		}
	}
	appendSet("service_mode", filter.ServiceModes)
	appendSet("order_state", filter.OrderStates)
	appendSet("brand", filter.Brands)
	appendSet("outlet", filter.Outlets)
	appendSet("item", filter.Items)
	appendSet("account_manager", filter.AccountManagers)

	if len(parts) == 0 {
		return fmt.Sprintf("%s:r%d:default", kpiKeyPrefix, revision)
	}

	hash := sha1.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s:r%d:%s", kpiKeyPrefix, revision, hex.EncodeToString(hash[:]))
}
