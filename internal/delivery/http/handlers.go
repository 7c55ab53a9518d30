package http

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/service"
	"github.com/RahulBhaskar05/lugXieee-datathon/pkg/utils"
)

// Handler contains all HTTP handlers
type Handler struct {
	forecastSvc  *service.ForecastService
	analyticsSvc *service.AnalyticsService
	repo         service.ForecastRepository
	cache        service.Cache
}

// healthChecker is implemented by caches backed by a remote store
type healthChecker interface {
	Health(ctx context.Context) error
}

// NewHandler creates a new handler. cache may be nil.
func NewHandler(forecastSvc *service.ForecastService, analyticsSvc *service.AnalyticsService, repo service.ForecastRepository, cache service.Cache) *Handler {
	return &Handler{
		forecastSvc:  forecastSvc,
		analyticsSvc: analyticsSvc,
		repo:         repo,
		cache:        cache,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	status := "ok"
	storage := "ok"
	if err := h.repo.Health(c.Context()); err != nil {
		log.Printf("Health check: %v", err)
		status = "degraded"
		storage = "unavailable"
	}

	cacheStatus := "disabled"
	if hc, ok := h.cache.(healthChecker); ok {
		cacheStatus = "ok"
		if err := hc.Health(c.Context()); err != nil {
			log.Printf("Health check: %v", err)
			status = "degraded"
			cacheStatus = "unavailable"
		}
	}

	return c.JSON(fiber.Map{
		"status":  status,
		"storage": storage,
		"cache":   cacheStatus,
		"service": "datathon-dashboard",
		"version": "1.0.0",
	})
}

// PredictSales returns next month's whole-store revenue forecast
func (h *Handler) PredictSales(c *fiber.Ctx) error {
	res, err := h.forecastSvc.PredictSales(c.Context())
	if err != nil {
		return forecastError(err, "Failed to compute sales forecast")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    res,
	})
}

// PredictCategorySales returns next month's revenue forecast per category
func (h *Handler) PredictCategorySales(c *fiber.Ctx) error {
	batch, err := h.forecastSvc.PredictCategorySales(c.Context())
	if err != nil {
		return forecastError(err, "Failed to compute category forecasts")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    batch,
	})
}

// PredictProductDemand returns next month's unit forecast for the top products
func (h *Handler) PredictProductDemand(c *fiber.Ctx) error {
	batch, err := h.forecastSvc.PredictProductDemand(c.Context())
	if err != nil {
		return forecastError(err, "Failed to compute product demand forecasts")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    batch,
	})
}

// ListForecastRuns returns persisted forecasts, newest first
func (h *Handler) ListForecastRuns(c *fiber.Ctx) error {
	kind := domain.ForecastKind(c.Query("kind"))
	switch kind {
	case "", domain.KindSales, domain.KindCategorySales, domain.KindProductDemand:
	default:
		return fiber.NewError(fiber.StatusBadRequest, "Unknown forecast kind")
	}
	limit := int(utils.Clamp(float64(c.QueryInt("limit", 20)), 1, 100))

	runs, err := h.forecastSvc.ListRuns(c.Context(), kind, limit)
	if err != nil {
		log.Printf("List forecast runs: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch forecast history")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    runs,
		"count":   len(runs),
	})
}

// MonthlySummary returns recent monthly revenue with 3- and 6-month averages
func (h *Handler) MonthlySummary(c *fiber.Ctx) error {
	sum, err := h.analyticsSvc.MonthlySummary(c.Context())
	if err != nil {
		return forecastError(err, "Failed to summarize monthly revenue")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    sum,
	})
}

// analyticsView adapts an analytics method to a handler
func analyticsView[T any](view func(context.Context) T) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"data":    view(c.Context()),
		})
	}
}

// forecastError maps pipeline failures onto HTTP status codes
func forecastError(err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrInsufficientHistory), errors.Is(err, domain.ErrInsufficientData), errors.Is(err, domain.ErrDegenerateSeries):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusServiceUnavailable, "Forecast request was cancelled")
	default:
		log.Printf("%s: %v", fallback, err)
		return fiber.NewError(fiber.StatusInternalServerError, fallback)
	}
}

// ErrorHandler renders every error as {"success": false, "error": message}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
