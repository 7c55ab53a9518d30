package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ForecastKind names one of the three prediction operations
type ForecastKind string

const (
	KindSales         ForecastKind = "sales"
	KindCategorySales ForecastKind = "category_sales"
	KindProductDemand ForecastKind = "product_demand"
)

// ForecastRun is a persisted forecast payload. Only results are stored,
// never fitted models.
type ForecastRun struct {
	ID        uuid.UUID       `json:"id"`
	Kind      ForecastKind    `json:"kind"`
	Trigger   string          `json:"trigger"` // "request", "schedule", "cli"
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderSource provides the cleaned dataset.
// It is read once at process start.
type OrderSource interface {
	// LoadOrders returns every cleaned order merged with product details
	LoadOrders(ctx context.Context) ([]OrderRecord, error)

	// LoadProducts returns the de-duplicated product catalogue
	LoadProducts(ctx context.Context) ([]Product, error)
}

// ForecastRepository defines the interface for forecast-run persistence
// This follows the Dependency Inversion Principle - domain defines the interface
type ForecastRepository interface {
	// SaveForecastRun persists a forecast payload
	SaveForecastRun(ctx context.Context, run ForecastRun) error

	// ListForecastRuns returns the newest runs first, optionally filtered by kind
	ListForecastRuns(ctx context.Context, kind ForecastKind, limit int) ([]ForecastRun, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error
}

// Cache stores JSON-encodable values for a bounded time
type Cache interface {
	// Get decodes the cached value into dst and reports whether it was found
	Get(ctx context.Context, key string, dst any) (bool, error)

	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}
