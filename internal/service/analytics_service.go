package service

import (
	"context"
	"log"
	"time"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/analytics"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/dataset"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
)

// AnalyticsService serves the dashboard aggregates, caching each view
type AnalyticsService struct {
	data  *dataset.Dataset
	cache Cache
	ttl   time.Duration
}

// NewAnalyticsService creates a new analytics service. A nil cache disables caching.
func NewAnalyticsService(data *dataset.Dataset, cache Cache, ttl time.Duration) *AnalyticsService {
	return &AnalyticsService{data: data, cache: cache, ttl: ttl}
}

// cached returns the value stored under key, computing and storing it on a
// miss. Cache failures are logged and never fail the request.
func cached[T any](ctx context.Context, s *AnalyticsService, key string, compute func() T) T {
	if s.cache == nil || s.ttl <= 0 {
		return compute()
	}
	// the dataset is fixed per process, so its load time versions the keys
	key = key + ":" + s.data.LoadedAt().UTC().Format("20060102T150405")

	var v T
	found, err := s.cache.Get(ctx, key, &v)
	if err != nil {
		log.Printf("Analytics cache read failed: %v", err)
	}
	if found {
		return v
	}

	v = compute()
	if err := s.cache.Set(ctx, key, v, s.ttl); err != nil {
		log.Printf("Analytics cache write failed: %v", err)
	}
	return v
}

// Overview returns the KPI card values
func (s *AnalyticsService) Overview(ctx context.Context) domain.Overview {
	return cached(ctx, s, "overview", func() domain.Overview {
		return analytics.ComputeOverview(s.data.Orders(), s.data.Products())
	})
}

// SalesTrends returns weekly revenue, orders and units
func (s *AnalyticsService) SalesTrends(ctx context.Context) []domain.WeeklySales {
	return cached(ctx, s, "sales-trends", func() []domain.WeeklySales {
		return analytics.WeeklySalesTrend(s.data.Orders())
	})
}

// CategoryPerformance returns revenue and orders per category
func (s *AnalyticsService) CategoryPerformance(ctx context.Context) []domain.GroupTotal {
	return cached(ctx, s, "category-performance", func() []domain.GroupTotal {
		return analytics.CategoryPerformance(s.data.Orders())
	})
}

// AgeDistribution returns revenue per age group
func (s *AnalyticsService) AgeDistribution(ctx context.Context) []domain.GroupTotal {
	return cached(ctx, s, "age-distribution", func() []domain.GroupTotal {
		return analytics.AgeDistribution(s.data.Orders())
	})
}

// GeographicSales returns the top countries by revenue
func (s *AnalyticsService) GeographicSales(ctx context.Context) []domain.GroupTotal {
	return cached(ctx, s, "geographic-sales", func() []domain.GroupTotal {
		return analytics.GeographicSales(s.data.Orders(), analytics.TopCountries)
	})
}

// GenderAnalysis returns revenue per gender
func (s *AnalyticsService) GenderAnalysis(ctx context.Context) []domain.GroupTotal {
	return cached(ctx, s, "gender-analysis", func() []domain.GroupTotal {
		return analytics.GenderAnalysis(s.data.Orders())
	})
}

// SeasonalityImpact compares seasonal and non-seasonal orders
func (s *AnalyticsService) SeasonalityImpact(ctx context.Context) []domain.SeasonalityTotal {
	return cached(ctx, s, "seasonality-impact", func() []domain.SeasonalityTotal {
		return analytics.SeasonalityImpact(s.data.Orders())
	})
}

// PriceDistribution returns the unit price histogram
func (s *AnalyticsService) PriceDistribution(ctx context.Context) []domain.PriceBin {
	return cached(ctx, s, "price-distribution", func() []domain.PriceBin {
		return analytics.PriceDistribution(s.data.Products(), analytics.PriceBins)
	})
}

// QuarterlyTrends returns revenue per quarter
func (s *AnalyticsService) QuarterlyTrends(ctx context.Context) []domain.QuarterTotal {
	return cached(ctx, s, "quarterly-trends", func() []domain.QuarterTotal {
		return analytics.QuarterlyTrends(s.data.Orders())
	})
}

// TopProducts returns the best-selling products by revenue
func (s *AnalyticsService) TopProducts(ctx context.Context) []domain.ProductTotal {
	return cached(ctx, s, "top-products", func() []domain.ProductTotal {
		return analytics.TopProducts(s.data.Orders(), analytics.TopProductsN)
	})
}

// MonthlySummary returns recent monthly revenue with rolling averages
func (s *AnalyticsService) MonthlySummary(ctx context.Context) (domain.MonthlySummary, error) {
	return analytics.Summarize(s.data.Orders(), analytics.SummaryMonths)
}
