package domain

import (
	"fmt"
	"math"
	"time"
)

// MaxLag is the number of trailing periods used as lag features
const MaxLag = 3

// MetricsNote accompanies every forecast payload.
const MetricsNote = "r2, mae, rmse and mape describe how well the model fits historical periods; they are not a measure of the accuracy of the predicted value."

// Metric selects the quantity summed by the aggregator
type Metric string

const (
	MetricRevenue  Metric = "revenue"
	MetricQuantity Metric = "quantity"
)

// GroupBy selects the series key
type GroupBy string

const (
	GroupNone     GroupBy = "none"
	GroupCategory GroupBy = "category"
	GroupProduct  GroupBy = "product"
)

// Period is a calendar month
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// PeriodOf truncates t to its calendar month
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Next returns the following calendar month
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Before reports whether p is strictly earlier than o
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// String formats the period as YYYY-MM
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// MarshalText lets periods appear as "2024-07" in JSON payloads
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the YYYY-MM form
func (p *Period) UnmarshalText(b []byte) error {
	t, err := time.Parse("2006-01", string(b))
	if err != nil {
		return fmt.Errorf("domain: invalid period %q: %w", string(b), err)
	}
	*p = PeriodOf(t)
	return nil
}

// TimeSeriesPoint is one aggregated month
type TimeSeriesPoint struct {
	Period Period  `json:"period"`
	Value  float64 `json:"value"`
}

// Series is an ordered monthly series for one key.
// Gaps lists months absent between the first and last period; they are
// reported, never filled.
type Series struct {
	Key    string            `json:"key"`
	Points []TimeSeriesPoint `json:"points"`
	Gaps   []Period          `json:"gaps,omitempty"`
}

// Values returns the point values in period order
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// FeatureRow holds the regression inputs for one period.
// All lag and rolling fields come from periods strictly before Period.
type FeatureRow struct {
	Period       Period  `json:"period"`
	Lag1         float64 `json:"lag_1"`
	Lag2         float64 `json:"lag_2"`
	Lag3         float64 `json:"lag_3"`
	RollingMean3 float64 `json:"rolling_mean_3"`
	RollingMean6 float64 `json:"rolling_mean_6"`
	Target       float64 `json:"target"`
}

// Inputs returns the model input vector in a fixed order
func (r FeatureRow) Inputs() []float64 {
	return []float64{r.Lag1, r.Lag2, r.Lag3, r.RollingMean3, r.RollingMean6}
}

// Holdout scores the most recent known row, which is excluded from training
type Holdout struct {
	Period    Period  `json:"period"`
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
	AbsError  float64 `json:"abs_error"`
}

// ForecastResult is a single-step-ahead prediction plus historical fit metrics
type ForecastResult struct {
	PredictedPeriod Period   `json:"predicted_period"`
	PredictedValue  float64  `json:"predicted_value"`
	LastPeriod      Period   `json:"last_period"`
	LastValue       float64  `json:"last_value"`
	GrowthRate      float64  `json:"growth_rate"`
	R2              float64  `json:"r2"`
	MAE             float64  `json:"mae"`
	RMSE            float64  `json:"rmse"`
	MAPE            float64  `json:"mape"`
	MAPEExcluded    int      `json:"mape_excluded_rows"`
	Degenerate      bool     `json:"degenerate"`
	TrainingRows    int      `json:"training_rows"`
	Holdout         *Holdout `json:"holdout,omitempty"`
	Model           string   `json:"model"`
	Metric          Metric   `json:"metric"`
	Gaps            []Period `json:"gaps,omitempty"`
	MetricsNote     string   `json:"metrics_note"`
}

// ComputeGrowthRate returns (predicted - last) / |last|. A zero last value
// yields ±1 (or 0 when both are zero) so the sign always follows the change.
func ComputeGrowthRate(predicted, last float64) float64 {
	diff := predicted - last
	if diff == 0 {
		return 0
	}
	if last == 0 {
		return math.Copysign(1, diff)
	}
	return diff / math.Abs(last)
}

// GroupForecast is a ForecastResult keyed by category or product name
type GroupForecast struct {
	Key string `json:"key"`
	ForecastResult
}

// SkippedKey records a group left out of a batch and why
type SkippedKey struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// GroupForecastBatch is sorted by PredictedValue descending
type GroupForecastBatch struct {
	GroupBy GroupBy         `json:"group_by"`
	Results []GroupForecast `json:"results"`
	Skipped []SkippedKey    `json:"skipped"`
}
