package forecast

import (
	"gonum.org/v1/gonum/stat"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
)

const longWindow = 6

// BuildFeatures derives one FeatureRow for every point that has MaxLag
// predecessors. A series of n points yields n-MaxLag rows, or none when
// n <= MaxLag.
func BuildFeatures(points []domain.TimeSeriesPoint) []domain.FeatureRow {
	if len(points) <= domain.MaxLag {
		return nil
	}
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}

	rows := make([]domain.FeatureRow, 0, len(points)-domain.MaxLag)
	for t := domain.MaxLag; t < len(points); t++ {
		row := featuresAt(values, t)
		row.Period = points[t].Period
		row.Target = values[t]
		rows = append(rows, row)
	}
	return rows
}

// NextFeatures builds the inference input for the month after the last
// point, using the full series. ok is false when the series is too short.
func NextFeatures(points []domain.TimeSeriesPoint) (row domain.FeatureRow, ok bool) {
	if len(points) < domain.MaxLag {
		return domain.FeatureRow{}, false
	}
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	row = featuresAt(values, len(values))
	row.Period = points[len(points)-1].Period.Next()
	return row, true
}

// featuresAt reads only values[:t]; t may equal len(values).
func featuresAt(values []float64, t int) domain.FeatureRow {
	start := t - longWindow
	if start < 0 {
		start = 0
	}
	return domain.FeatureRow{
		Lag1:         values[t-1],
		Lag2:         values[t-2],
		Lag3:         values[t-3],
		RollingMean3: stat.Mean(values[t-3:t], nil),
		RollingMean6: stat.Mean(values[start:t], nil),
	}
}
