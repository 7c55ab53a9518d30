package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/dataset"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/forecast"
)

// Run triggers
const (
	TriggerRequest  = "request"
	TriggerSchedule = "schedule"
	TriggerCLI      = "cli"
)

// ForecastOptions configures the models and the product bellwether set
type ForecastOptions struct {
	StoreModel  forecast.Trainer
	GroupModel  forecast.Trainer
	TopProducts int
}

// DefaultForecastOptions is gradient boosting for the store series and a
// random forest per group, with the top 10 products.
func DefaultForecastOptions() ForecastOptions {
	return ForecastOptions{
		StoreModel:  forecast.DefaultGradientBoosting(),
		GroupModel:  forecast.DefaultRandomForest(),
		TopProducts: 10,
	}
}

// ForecastService runs the forecasting pipeline against the loaded dataset.
// It holds no mutable state besides the background-save tracker.
type ForecastService struct {
	data *dataset.Dataset
	repo ForecastRepository
	opts ForecastOptions

	wgBg sync.WaitGroup // tracks background saves for graceful shutdown
}

// NewForecastService creates a new forecast service
func NewForecastService(data *dataset.Dataset, repo ForecastRepository, opts ForecastOptions) *ForecastService {
	def := DefaultForecastOptions()
	if opts.StoreModel == nil {
		opts.StoreModel = def.StoreModel
	}
	if opts.GroupModel == nil {
		opts.GroupModel = def.GroupModel
	}
	if opts.TopProducts <= 0 {
		opts.TopProducts = def.TopProducts
	}
	return &ForecastService{data: data, repo: repo, opts: opts}
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *ForecastService) WaitBackground() {
	s.wgBg.Wait()
}

// PredictSales forecasts next month's whole-store revenue
func (s *ForecastService) PredictSales(ctx context.Context) (domain.ForecastResult, error) {
	res, err := s.predictSales(ctx)
	if err != nil {
		return domain.ForecastResult{}, err
	}
	s.saveAsync(domain.KindSales, TriggerRequest, res)
	return res, nil
}

// PredictCategorySales forecasts next month's revenue per category
func (s *ForecastService) PredictCategorySales(ctx context.Context) (domain.GroupForecastBatch, error) {
	batch, err := s.predictCategorySales(ctx)
	if err != nil {
		return domain.GroupForecastBatch{}, err
	}
	s.saveAsync(domain.KindCategorySales, TriggerRequest, batch)
	return batch, nil
}

// PredictProductDemand forecasts next month's units for the top products
// by historical revenue.
func (s *ForecastService) PredictProductDemand(ctx context.Context) (domain.GroupForecastBatch, error) {
	batch, err := s.predictProductDemand(ctx)
	if err != nil {
		return domain.GroupForecastBatch{}, err
	}
	s.saveAsync(domain.KindProductDemand, TriggerRequest, batch)
	return batch, nil
}

// ListRuns returns persisted forecast runs, newest first
func (s *ForecastService) ListRuns(ctx context.Context, kind domain.ForecastKind, limit int) ([]domain.ForecastRun, error) {
	runs, err := s.repo.ListForecastRuns(ctx, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("forecast_service: failed to list runs: %w", err)
	}
	return runs, nil
}

// Snapshot is the output of all three forecasts taken together
type Snapshot struct {
	GeneratedAt     time.Time                 `json:"generated_at"`
	Sales           *domain.ForecastResult    `json:"sales,omitempty"`
	SalesError      string                    `json:"sales_error,omitempty"`
	CategorySales   domain.GroupForecastBatch `json:"category_sales"`
	ProductDemand   domain.GroupForecastBatch `json:"product_demand"`
	DatasetOrders   int                       `json:"dataset_orders"`
	DatasetLastDate time.Time                 `json:"dataset_last_date"`
}

// TakeSnapshot runs every forecast and persists each result synchronously.
// A whole-store failure is recorded in SalesError; only cancellation and
// storage failures abort.
func (s *ForecastService) TakeSnapshot(ctx context.Context, trigger string) (Snapshot, error) {
	_, last := s.data.DateRange()
	snap := Snapshot{GeneratedAt: time.Now().UTC(), DatasetOrders: s.data.Len(), DatasetLastDate: last}

	sales, err := s.predictSales(ctx)
	switch {
	case err == nil:
		snap.Sales = &sales
		if err := s.save(ctx, domain.KindSales, trigger, sales); err != nil {
			return snap, err
		}
	case ctx.Err() != nil:
		return snap, err
	default:
		snap.SalesError = err.Error()
	}

	if snap.CategorySales, err = s.predictCategorySales(ctx); err != nil {
		return snap, err
	}
	if err := s.save(ctx, domain.KindCategorySales, trigger, snap.CategorySales); err != nil {
		return snap, err
	}

	if snap.ProductDemand, err = s.predictProductDemand(ctx); err != nil {
		return snap, err
	}
	if err := s.save(ctx, domain.KindProductDemand, trigger, snap.ProductDemand); err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *ForecastService) predictSales(ctx context.Context) (domain.ForecastResult, error) {
	series, err := forecast.AggregateMonthly(s.data.Orders(), domain.MetricRevenue, domain.GroupNone)
	if err != nil {
		return domain.ForecastResult{}, fmt.Errorf("forecast_service: failed to aggregate sales: %w", err)
	}
	if len(series) == 0 {
		return domain.ForecastResult{}, fmt.Errorf("forecast_service: no orders to aggregate: %w", domain.ErrInsufficientHistory)
	}
	logGaps(series[0])

	return forecast.Forecast(ctx, series[0], s.opts.StoreModel, domain.MetricRevenue)
}

func (s *ForecastService) predictCategorySales(ctx context.Context) (domain.GroupForecastBatch, error) {
	series, err := forecast.AggregateMonthly(s.data.Orders(), domain.MetricRevenue, domain.GroupCategory)
	if err != nil {
		return domain.GroupForecastBatch{}, fmt.Errorf("forecast_service: failed to aggregate categories: %w", err)
	}
	return s.forecastGroups(ctx, domain.GroupCategory, domain.MetricRevenue, series)
}

func (s *ForecastService) predictProductDemand(ctx context.Context) (domain.GroupForecastBatch, error) {
	records := s.data.Orders()
	keys, err := forecast.TopKeys(records, domain.MetricRevenue, domain.GroupProduct, s.opts.TopProducts)
	if err != nil {
		return domain.GroupForecastBatch{}, fmt.Errorf("forecast_service: failed to rank products: %w", err)
	}
	all, err := forecast.AggregateMonthly(records, domain.MetricQuantity, domain.GroupProduct)
	if err != nil {
		return domain.GroupForecastBatch{}, fmt.Errorf("forecast_service: failed to aggregate products: %w", err)
	}
	return s.forecastGroups(ctx, domain.GroupProduct, domain.MetricQuantity, forecast.SelectSeries(all, keys))
}

func (s *ForecastService) forecastGroups(ctx context.Context, groupBy domain.GroupBy, metric domain.Metric, series []domain.Series) (domain.GroupForecastBatch, error) {
	eligible, skipped := forecast.FilterByHistory(series, forecast.MinGroupPeriods)
	for _, ser := range eligible {
		logGaps(ser)
	}

	results, failed, err := forecast.ForecastGroups(ctx, eligible, s.opts.GroupModel, metric)
	if err != nil {
		return domain.GroupForecastBatch{}, err
	}
	skipped = append(skipped, failed...)

	for _, k := range skipped {
		log.Printf("Skipping %s %q: %s", groupBy, k.Key, k.Reason)
	}
	if skipped == nil {
		skipped = []domain.SkippedKey{}
	}

	return domain.GroupForecastBatch{GroupBy: groupBy, Results: results, Skipped: skipped}, nil
}

func logGaps(s domain.Series) {
	if len(s.Gaps) == 0 {
		return
	}
	months := make([]string, len(s.Gaps))
	for i, p := range s.Gaps {
		months[i] = p.String()
	}
	log.Printf("Series %q has no orders in %d months: %s", s.Key, len(s.Gaps), strings.Join(months, ", "))
}

func (s *ForecastService) save(ctx context.Context, kind domain.ForecastKind, trigger string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("forecast_service: failed to encode %s run: %w", kind, err)
	}
	run := domain.ForecastRun{
		ID:        uuid.New(),
		Kind:      kind,
		Trigger:   trigger,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.SaveForecastRun(ctx, run); err != nil {
		return fmt.Errorf("forecast_service: failed to save %s run: %w", kind, err)
	}
	return nil
}

// saveAsync persists a run without holding up the response
func (s *ForecastService) saveAsync(kind domain.ForecastKind, trigger string, payload any) {
	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.save(bgCtx, kind, trigger, payload); err != nil {
			log.Printf("Failed to save forecast run: %v", err)
		}
	}()
}
