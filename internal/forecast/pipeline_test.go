package forecast

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
)

func seriesOf(key string, values ...float64) domain.Series {
	return domain.Series{Key: key, Points: monthlyPoints(jan2024, values...)}
}

var twelveMonths = []float64{100, 110, 105, 120, 130, 125, 140, 150, 145, 160, 170, 165}

func TestForecast_InsufficientHistory(t *testing.T) {
	_, err := Forecast(context.Background(), seriesOf("s", 1, 2, 3), DefaultGradientBoosting(), domain.MetricRevenue)
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory)
}

func TestForecast_InsufficientFeatureRows(t *testing.T) {
	// six months give three feature rows
	_, err := Forecast(context.Background(), seriesOf("s", 100, 110, 105, 120, 130, 125), DefaultGradientBoosting(), domain.MetricRevenue)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestForecast_NonFiniteSeries(t *testing.T) {
	_, err := Forecast(context.Background(), seriesOf("s", 1, 2, 3, math.Inf(1), 5, 6, 7), DefaultGradientBoosting(), domain.MetricRevenue)
	assert.ErrorIs(t, err, domain.ErrDegenerateSeries)
}

func TestForecast_ResultShape(t *testing.T) {
	s := seriesOf("store", twelveMonths...)

	res, err := Forecast(context.Background(), s, DefaultGradientBoosting(), domain.MetricRevenue)
	require.NoError(t, err)

	last := s.Points[len(s.Points)-1]
	assert.Equal(t, last.Period, res.LastPeriod)
	assert.Equal(t, last.Value, res.LastValue)
	assert.Equal(t, last.Period.Next(), res.PredictedPeriod)
	assert.Equal(t, len(twelveMonths)-domain.MaxLag-1, res.TrainingRows)
	require.NotNil(t, res.Holdout)
	assert.Equal(t, last.Period, res.Holdout.Period)
	assert.Equal(t, last.Value, res.Holdout.Actual)
	assert.Equal(t, "gradient_boosting", res.Model)
	assert.Equal(t, domain.MetricsNote, res.MetricsNote)
	assert.InDelta(t, (res.PredictedValue-res.LastValue)/res.LastValue, res.GrowthRate, 1e-12)
	assert.Greater(t, res.R2, 0.9)
}

func TestForecast_Deterministic(t *testing.T) {
	s := seriesOf("store", twelveMonths...)
	for _, tr := range []Trainer{DefaultGradientBoosting(), DefaultRandomForest()} {
		a, err := Forecast(context.Background(), s, tr, domain.MetricRevenue)
		require.NoError(t, err)
		b, err := Forecast(context.Background(), s, tr, domain.MetricRevenue)
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(a.PredictedValue), math.Float64bits(b.PredictedValue), tr.Name())
	}
}

func TestForecast_GrowthRateSignMatchesChange(t *testing.T) {
	cases := [][]float64{
		twelveMonths,
		{500, 480, 470, 450, 440, 420, 400, 390, 380},
		{10, 10, 10, 10, 10, 10, 10, 10},
		{0, 5, 0, 5, 0, 5, 0, 0},
	}
	for _, values := range cases {
		res, err := Forecast(context.Background(), seriesOf("s", values...), DefaultRandomForest(), domain.MetricQuantity)
		require.NoError(t, err)
		diff := res.PredictedValue - res.LastValue
		switch {
		case diff > 0:
			assert.Greater(t, res.GrowthRate, 0.0)
		case diff < 0:
			assert.Less(t, res.GrowthRate, 0.0)
		default:
			assert.Zero(t, res.GrowthRate)
		}
	}
}

func TestForecast_ConstantSeries(t *testing.T) {
	res, err := Forecast(context.Background(), seriesOf("flat", 10, 10, 10, 10, 10, 10, 10, 10), DefaultGradientBoosting(), domain.MetricRevenue)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.PredictedValue)
	assert.Zero(t, res.GrowthRate)
	assert.True(t, res.Degenerate)
	assert.Zero(t, res.R2)
}

func TestForecast_CarriesGaps(t *testing.T) {
	s := seriesOf("store", twelveMonths...)
	s.Gaps = []domain.Period{{Year: 2023, Month: 12}}
	res, err := Forecast(context.Background(), s, DefaultRandomForest(), domain.MetricRevenue)
	require.NoError(t, err)
	assert.Equal(t, s.Gaps, res.Gaps)
}

func TestForecast_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Forecast(ctx, seriesOf("store", twelveMonths...), DefaultRandomForest(), domain.MetricRevenue)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForecastGroups_SkipsFailuresAndSorts(t *testing.T) {
	small := make([]float64, len(twelveMonths))
	for i, v := range twelveMonths {
		small[i] = v / 10
	}
	series := []domain.Series{
		seriesOf("small", small...),
		seriesOf("short", 1, 2, 3),
		seriesOf("big", twelveMonths...),
	}

	results, skipped, err := ForecastGroups(context.Background(), series, DefaultRandomForest(), domain.MetricRevenue)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "big", results[0].Key)
	assert.Equal(t, "small", results[1].Key)
	assert.GreaterOrEqual(t, results[0].PredictedValue, results[1].PredictedValue)

	require.Len(t, skipped, 1)
	assert.Equal(t, "short", skipped[0].Key)
	assert.Contains(t, skipped[0].Reason, domain.ErrInsufficientHistory.Error())
}

func TestForecastGroups_CancelAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := ForecastGroups(ctx, []domain.Series{seriesOf("a", twelveMonths...)}, DefaultRandomForest(), domain.MetricRevenue)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSortGroupForecasts_TieBreaksByKey(t *testing.T) {
	results := []domain.GroupForecast{
		{Key: "b", ForecastResult: domain.ForecastResult{PredictedValue: 5}},
		{Key: "c", ForecastResult: domain.ForecastResult{PredictedValue: 9}},
		{Key: "a", ForecastResult: domain.ForecastResult{PredictedValue: 5}},
	}
	SortGroupForecasts(results)
	assert.Equal(t, "c", results[0].Key)
	assert.Equal(t, "a", results[1].Key)
	assert.Equal(t, "b", results[2].Key)
}
