package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapCache is an in-process Cache that counts hits
type mapCache struct {
	mu      sync.Mutex
	values  map[string][]byte
	hits    int
	failGet bool
}

func newMapCache() *mapCache {
	return &mapCache{values: make(map[string][]byte)}
}

func (c *mapCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return false, errors.New("cache down")
	}
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dst)
}

func (c *mapCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = raw
	return nil
}

func TestAnalyticsService_CachesViews(t *testing.T) {
	ctx := context.Background()
	cache := newMapCache()
	svc := NewAnalyticsService(testDataset(false), cache, time.Minute)

	first := svc.CategoryPerformance(ctx)
	require.Len(t, first, 3)
	assert.Equal(t, 0, cache.hits)

	second := svc.CategoryPerformance(ctx)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.hits)

	ov := svc.Overview(ctx)
	assert.Equal(t, testDataset(false).Len(), ov.TotalOrders)
	assert.Len(t, cache.values, 2)
}

func TestAnalyticsService_CacheFailureFallsBack(t *testing.T) {
	cache := newMapCache()
	cache.failGet = true
	svc := NewAnalyticsService(testDataset(false), cache, time.Minute)

	trends := svc.SalesTrends(context.Background())
	assert.NotEmpty(t, trends)
}

func TestAnalyticsService_NoCache(t *testing.T) {
	ctx := context.Background()
	svc := NewAnalyticsService(testDataset(true), nil, 0)

	assert.Len(t, svc.TopProducts(ctx), 4)
	assert.Len(t, svc.QuarterlyTrends(ctx), 4)
	assert.NotEmpty(t, svc.AgeDistribution(ctx))
	assert.NotEmpty(t, svc.GeographicSales(ctx))
	assert.NotEmpty(t, svc.GenderAnalysis(ctx))
	assert.Len(t, svc.SeasonalityImpact(ctx), 1)
	assert.Empty(t, svc.PriceDistribution(ctx))

	summary, err := svc.MonthlySummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, summary.Months)
	assert.Len(t, summary.Recent, 6)
}
