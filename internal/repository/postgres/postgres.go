package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS forecast_runs (
		id         UUID PRIMARY KEY,
		kind       TEXT NOT NULL,
		trigger    TEXT NOT NULL,
		payload    JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS forecast_runs_kind_created_idx ON forecast_runs (kind, created_at DESC);
`

// PostgresRepository implements domain.OrderSource and domain.ForecastRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate creates the forecast_runs table if it does not exist
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: failed to migrate schema: %w", err)
	}
	return nil
}

// LoadProducts retrieves the product catalogue, one row per product_id
func (r *PostgresRepository) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT DISTINCT ON (product_id)
			product_id, product_name, category, unit_price, tax_rate
		FROM products
		ORDER BY product_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query products: %w", err)
	}
	defer rows.Close()

	var results []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.UnitPrice, &p.TaxRate); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan product row: %w", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read products: %w", err)
	}

	return results, nil
}

// LoadOrders retrieves every order left-joined to its product
func (r *PostgresRepository) LoadOrders(ctx context.Context) ([]domain.OrderRecord, error) {
	query := `
		SELECT o.order_date, o.product_id,
			   COALESCE(p.product_name, ''), COALESCE(p.category, ''),
			   o.net_price::text, o.quantity, o.shipping_fee::text,
			   o.age_group, o.age_group_order, o.gender, o.city, o.country, o.seasonal
		FROM orders o
		LEFT JOIN (
			SELECT DISTINCT ON (product_id) product_id, product_name, category
			FROM products
			ORDER BY product_id
		) p ON p.product_id = o.product_id
		ORDER BY o.order_date
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query orders: %w", err)
	}
	defer rows.Close()

	var results []domain.OrderRecord
	for rows.Next() {
		var (
			o                 domain.OrderRecord
			revenue, shipping string
		)
		err := rows.Scan(
			&o.OrderDate, &o.ProductID, &o.ProductName, &o.Category,
			&revenue, &o.Quantity, &shipping,
			&o.AgeGroup, &o.AgeGroupOrder, &o.Gender, &o.City, &o.Country, &o.Seasonal,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan order row: %w", err)
		}
		if o.Revenue, err = decimal.NewFromString(revenue); err != nil {
			return nil, fmt.Errorf("postgres: failed to parse net price %q: %w", revenue, err)
		}
		if o.ShippingFee, err = decimal.NewFromString(shipping); err != nil {
			return nil, fmt.Errorf("postgres: failed to parse shipping fee %q: %w", shipping, err)
		}
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read orders: %w", err)
	}

	return results, nil
}

// SaveForecastRun persists a forecast payload to PostgreSQL
func (r *PostgresRepository) SaveForecastRun(ctx context.Context, run domain.ForecastRun) error {
	query := `
		INSERT INTO forecast_runs (id, kind, trigger, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		run.ID.String(), string(run.Kind), run.Trigger, []byte(run.Payload), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save forecast run: %w", err)
	}

	return nil
}

// ListForecastRuns retrieves the newest forecast runs. An empty kind matches all.
func (r *PostgresRepository) ListForecastRuns(ctx context.Context, kind domain.ForecastKind, limit int) ([]domain.ForecastRun, error) {
	query := `
		SELECT id::text, kind, trigger, payload, created_at
		FROM forecast_runs
		WHERE $1::text = '' OR kind = $1::text
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query forecast runs: %w", err)
	}
	defer rows.Close()

	results := []domain.ForecastRun{}
	for rows.Next() {
		var (
			run     domain.ForecastRun
			id      string
			kindStr string
			payload []byte
		)
		if err := rows.Scan(&id, &kindStr, &run.Trigger, &payload, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan forecast run row: %w", err)
		}
		if err := run.ID.UnmarshalText([]byte(id)); err != nil {
			return nil, fmt.Errorf("postgres: failed to parse forecast run id: %w", err)
		}
		run.Kind = domain.ForecastKind(kindStr)
		run.Payload = json.RawMessage(payload)
		results = append(results, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read forecast runs: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
