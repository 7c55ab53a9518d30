package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
	"github.com/RahulBhaskar05/lugXieee-datathon/pkg/utils"
)

// MinFeatureRows is the fewest feature rows a series may have before a
// model is fitted on it.
const MinFeatureRows = 4

// Forecast fits trainer on all feature rows but the newest, scores the fit,
// and predicts the month after the series ends.
func Forecast(ctx context.Context, series domain.Series, trainer Trainer, metric domain.Metric) (domain.ForecastResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ForecastResult{}, err
	}
	if len(series.Points) < domain.MaxLag+1 {
		return domain.ForecastResult{}, fmt.Errorf("forecast: %q has %d periods, need at least %d: %w",
			series.Key, len(series.Points), domain.MaxLag+1, domain.ErrInsufficientHistory)
	}
	if !utils.AllFinite(series.Values()) {
		return domain.ForecastResult{}, fmt.Errorf("forecast: %q contains non-finite values: %w", series.Key, domain.ErrDegenerateSeries)
	}

	rows := BuildFeatures(series.Points)
	if len(rows) < MinFeatureRows {
		return domain.ForecastResult{}, fmt.Errorf("forecast: %q has %d feature rows, need at least %d: %w",
			series.Key, len(rows), MinFeatureRows, domain.ErrInsufficientData)
	}

	train, held := rows[:len(rows)-1], rows[len(rows)-1]
	X := make([][]float64, len(train))
	y := make([]float64, len(train))
	for i, r := range train {
		X[i] = r.Inputs()
		y[i] = r.Target
	}

	model, err := trainer.Fit(X, y)
	if err != nil {
		return domain.ForecastResult{}, fmt.Errorf("forecast: failed to fit %s for %q: %w", trainer.Name(), series.Key, err)
	}

	fitted := make([]float64, len(X))
	for i, x := range X {
		fitted[i] = model.Predict(x)
	}
	metrics := Evaluate(y, fitted)

	heldPred := model.Predict(held.Inputs())
	next, _ := NextFeatures(series.Points)
	predicted := model.Predict(next.Inputs())
	last := series.Points[len(series.Points)-1]

	return domain.ForecastResult{
		PredictedPeriod: next.Period,
		PredictedValue:  predicted,
		LastPeriod:      last.Period,
		LastValue:       last.Value,
		GrowthRate:      domain.ComputeGrowthRate(predicted, last.Value),
		R2:              metrics.R2,
		MAE:             metrics.MAE,
		RMSE:            metrics.RMSE,
		MAPE:            metrics.MAPE,
		MAPEExcluded:    metrics.MAPEExcluded,
		Degenerate:      metrics.Degenerate,
		TrainingRows:    len(train),
		Holdout: &domain.Holdout{
			Period:    held.Period,
			Actual:    held.Target,
			Predicted: heldPred,
			AbsError:  math.Abs(held.Target - heldPred),
		},
		Model:       trainer.Name(),
		Metric:      metric,
		Gaps:        series.Gaps,
		MetricsNote: domain.MetricsNote,
	}, nil
}

// ForecastGroups forecasts every series independently. A series that cannot
// be forecast is reported in the skipped list; only cancellation aborts.
// Results are sorted by predicted value descending, then key.
func ForecastGroups(ctx context.Context, series []domain.Series, trainer Trainer, metric domain.Metric) ([]domain.GroupForecast, []domain.SkippedKey, error) {
	results := make([]domain.GroupForecast, 0, len(series))
	var skipped []domain.SkippedKey
	for _, s := range series {
		res, err := Forecast(ctx, s, trainer, metric)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, nil, err
			}
			skipped = append(skipped, domain.SkippedKey{Key: s.Key, Reason: err.Error()})
			continue
		}
		results = append(results, domain.GroupForecast{Key: s.Key, ForecastResult: res})
	}
	SortGroupForecasts(results)
	return results, skipped, nil
}

// SortGroupForecasts orders by predicted value descending, ties by key.
func SortGroupForecasts(results []domain.GroupForecast) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].PredictedValue != results[j].PredictedValue {
			return results[i].PredictedValue > results[j].PredictedValue
		}
		return results[i].Key < results[j].Key
	})
}
