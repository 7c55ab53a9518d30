package http

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler) {
	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Forecasts
		api.Get("/predict/sales", handler.PredictSales)
		api.Get("/predict/category-sales", handler.PredictCategorySales)
		api.Get("/predict/product-demand", handler.PredictProductDemand)
		api.Get("/forecast-runs", handler.ListForecastRuns)

		// Dashboard analytics
		a := handler.analyticsSvc
		analytics := api.Group("/analytics")
		analytics.Get("/overview", analyticsView(a.Overview))
		analytics.Get("/sales-trends", analyticsView(a.SalesTrends))
		analytics.Get("/category-performance", analyticsView(a.CategoryPerformance))
		analytics.Get("/age-distribution", analyticsView(a.AgeDistribution))
		analytics.Get("/geographic-sales", analyticsView(a.GeographicSales))
		analytics.Get("/gender-analysis", analyticsView(a.GenderAnalysis))
		analytics.Get("/seasonality-impact", analyticsView(a.SeasonalityImpact))
		analytics.Get("/price-distribution", analyticsView(a.PriceDistribution))
		analytics.Get("/quarterly-trends", analyticsView(a.QuarterlyTrends))
		analytics.Get("/top-products", analyticsView(a.TopProducts))
		analytics.Get("/monthly-summary", handler.MonthlySummary)
	}
}
