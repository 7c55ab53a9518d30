package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/cache"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/dataset"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/repository/postgres"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Count   int             `json:"count"`
}

func ordersFor(category string, months int) []domain.OrderRecord {
	var out []domain.OrderRecord
	for m := 0; m < months; m++ {
		out = append(out, domain.OrderRecord{
			OrderDate:   time.Date(2024, time.Month(m+1), 3, 0, 0, 0, 0, time.UTC),
			ProductID:   category + "-1",
			ProductName: category + " item",
			Category:    category,
			Revenue:     decimal.NewFromInt(int64(100 + 10*m + (m%3)*7)),
			Quantity:    2 + m%4,
			Country:     "France",
			Seasonal:    m%2 == 0,
		})
	}
	return out
}

// downCache is a remote cache whose backend cannot be reached
type downCache struct{ cache.Nop }

func (downCache) Health(ctx context.Context) error { return errors.New("connection refused") }

func setupAppWithCache(orders []domain.OrderRecord, c service.Cache) (*fiber.App, *service.ForecastService) {
	ds := dataset.New(orders, []domain.Product{{ID: "p", UnitPrice: 10}})
	repo := postgres.NewMemoryRepository()
	forecastSvc := service.NewForecastService(ds, repo, service.DefaultForecastOptions())
	analyticsSvc := service.NewAnalyticsService(ds, c, 0)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupRoutes(app, NewHandler(forecastSvc, analyticsSvc, repo, c))
	return app, forecastSvc
}

func setupApp(orders []domain.OrderRecord) (*fiber.App, *service.ForecastService) {
	return setupAppWithCache(orders, cache.Nop{})
}

func getHealth(t *testing.T, app *fiber.App) map[string]string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func doGet(t *testing.T, app *fiber.App, path string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return resp.StatusCode, env
}

func TestHealthCheck(t *testing.T) {
	app, _ := setupApp(ordersFor("Books", 12))

	body := getHealth(t, app)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["storage"])
	assert.Equal(t, "disabled", body["cache"])
}

func TestHealthCheck_CacheDown(t *testing.T) {
	app, _ := setupAppWithCache(ordersFor("Books", 12), downCache{})

	body := getHealth(t, app)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "ok", body["storage"])
	assert.Equal(t, "unavailable", body["cache"])
}

func TestPredictSales(t *testing.T) {
	app, svc := setupApp(ordersFor("Books", 12))

	code, env := doGet(t, app, "/api/v1/predict/sales")
	assert.Equal(t, 200, code)
	assert.True(t, env.Success)

	var res domain.ForecastResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, domain.Period{Year: 2025, Month: time.January}, res.PredictedPeriod)
	assert.Equal(t, domain.MetricsNote, res.MetricsNote)

	svc.WaitBackground()
	code, env = doGet(t, app, "/api/v1/forecast-runs?kind=sales")
	assert.Equal(t, 200, code)
	assert.Equal(t, 1, env.Count)
}

func TestPredictSales_InsufficientHistory(t *testing.T) {
	app, _ := setupApp(ordersFor("Books", 3))

	code, env := doGet(t, app, "/api/v1/predict/sales")
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "insufficient history")
}

func TestPredictCategorySales_PartialBatch(t *testing.T) {
	orders := append(ordersFor("Books", 12), ordersFor("Toys", 12)...)
	orders = append(orders, ordersFor("Fads", 2)...)
	app, svc := setupApp(orders)

	code, env := doGet(t, app, "/api/v1/predict/category-sales")
	assert.Equal(t, 200, code)

	var batch domain.GroupForecastBatch
	require.NoError(t, json.Unmarshal(env.Data, &batch))
	assert.Len(t, batch.Results, 2)
	require.Len(t, batch.Skipped, 1)
	assert.Equal(t, "Fads", batch.Skipped[0].Key)
	svc.WaitBackground()
}

func TestPredictProductDemand(t *testing.T) {
	app, svc := setupApp(append(ordersFor("Books", 12), ordersFor("Toys", 12)...))

	code, env := doGet(t, app, "/api/v1/predict/product-demand")
	assert.Equal(t, 200, code)

	var batch domain.GroupForecastBatch
	require.NoError(t, json.Unmarshal(env.Data, &batch))
	assert.Equal(t, domain.GroupProduct, batch.GroupBy)
	assert.Len(t, batch.Results, 2)
	svc.WaitBackground()
}

func TestListForecastRuns_BadKind(t *testing.T) {
	app, _ := setupApp(ordersFor("Books", 12))

	code, env := doGet(t, app, "/api/v1/forecast-runs?kind=weather")
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Unknown forecast kind", env.Error)
}

func TestAnalyticsRoutes(t *testing.T) {
	app, _ := setupApp(ordersFor("Books", 12))

	for _, path := range []string{
		"/api/v1/analytics/overview",
		"/api/v1/analytics/sales-trends",
		"/api/v1/analytics/category-performance",
		"/api/v1/analytics/age-distribution",
		"/api/v1/analytics/geographic-sales",
		"/api/v1/analytics/gender-analysis",
		"/api/v1/analytics/seasonality-impact",
		"/api/v1/analytics/price-distribution",
		"/api/v1/analytics/quarterly-trends",
		"/api/v1/analytics/top-products",
		"/api/v1/analytics/monthly-summary",
	} {
		code, env := doGet(t, app, path)
		assert.Equal(t, 200, code, path)
		assert.True(t, env.Success, path)
		assert.NotEmpty(t, env.Data, path)
	}

	_, env := doGet(t, app, "/api/v1/analytics/overview")
	var ov domain.Overview
	require.NoError(t, json.Unmarshal(env.Data, &ov))
	assert.Equal(t, 12, ov.TotalOrders)
}

func TestForecastError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrInsufficientData, fiber.StatusUnprocessableEntity},
		{context.DeadlineExceeded, fiber.StatusServiceUnavailable},
		{errors.New("disk on fire"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		var fe *fiber.Error
		require.True(t, errors.As(forecastError(tc.err, "fallback"), &fe))
		assert.Equal(t, tc.code, fe.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	app, _ := setupApp(ordersFor("Books", 12))

	code, env := doGet(t, app, "/api/v1/nope")
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.False(t, env.Success)
}
