package forecast

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
)

func monthlyPoints(start domain.Period, values ...float64) []domain.TimeSeriesPoint {
	points := make([]domain.TimeSeriesPoint, len(values))
	p := start
	for i, v := range values {
		points[i] = domain.TimeSeriesPoint{Period: p, Value: v}
		p = p.Next()
	}
	return points
}

var jan2024 = domain.Period{Year: 2024, Month: time.January}

func TestBuildFeatures_SixMonthScenario(t *testing.T) {
	points := monthlyPoints(jan2024, 100, 110, 105, 120, 130, 125)

	rows := BuildFeatures(points)
	require.Len(t, rows, 3)

	assert.Equal(t, domain.Period{Year: 2024, Month: time.April}, rows[0].Period)
	assert.Equal(t, 105.0, rows[0].Lag1)
	assert.Equal(t, 110.0, rows[0].Lag2)
	assert.Equal(t, 100.0, rows[0].Lag3)
	assert.InDelta(t, 105.0, rows[0].RollingMean3, 1e-9)
	assert.InDelta(t, 105.0, rows[0].RollingMean6, 1e-9)
	assert.Equal(t, 120.0, rows[0].Target)

	assert.Equal(t, domain.Period{Year: 2024, Month: time.May}, rows[1].Period)
	assert.Equal(t, 120.0, rows[1].Lag1)
	assert.Equal(t, 105.0, rows[1].Lag2)
	assert.Equal(t, 110.0, rows[1].Lag3)
	assert.InDelta(t, 335.0/3, rows[1].RollingMean3, 1e-9)
	assert.InDelta(t, 108.75, rows[1].RollingMean6, 1e-9)
	assert.Equal(t, 130.0, rows[1].Target)

	assert.Equal(t, domain.Period{Year: 2024, Month: time.June}, rows[2].Period)
	assert.Equal(t, 130.0, rows[2].Lag1)
	assert.Equal(t, 120.0, rows[2].Lag2)
	assert.Equal(t, 105.0, rows[2].Lag3)
	assert.InDelta(t, 355.0/3, rows[2].RollingMean3, 1e-9)
	assert.InDelta(t, 113.0, rows[2].RollingMean6, 1e-9)
	assert.Equal(t, 125.0, rows[2].Target)
}

func TestNextFeatures_UsesFullSeries(t *testing.T) {
	points := monthlyPoints(jan2024, 100, 110, 105, 120, 130, 125)

	next, ok := NextFeatures(points)
	require.True(t, ok)
	assert.Equal(t, domain.Period{Year: 2024, Month: time.July}, next.Period)
	assert.Equal(t, 125.0, next.Lag1)
	assert.Equal(t, 130.0, next.Lag2)
	assert.Equal(t, 120.0, next.Lag3)
	assert.InDelta(t, 125.0, next.RollingMean3, 1e-9)
	assert.InDelta(t, 115.0, next.RollingMean6, 1e-9)

	_, ok = NextFeatures(points[:2])
	assert.False(t, ok)
}

func TestBuildFeatures_TooShort(t *testing.T) {
	for n := 0; n <= domain.MaxLag; n++ {
		vals := make([]float64, n)
		assert.Empty(t, BuildFeatures(monthlyPoints(jan2024, vals...)), "n=%d", n)
	}
}

func TestBuildFeatures_RowCountAndNoLeakage(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := domain.MaxLag + 1; n <= 30; n++ {
		values := make([]float64, n)
		for i := range values {
			values[i] = rng.Float64() * 1000
		}
		points := monthlyPoints(jan2024, values...)

		rows := BuildFeatures(points)
		require.Len(t, rows, n-domain.MaxLag)

		for i, row := range rows {
			t0 := i + domain.MaxLag
			assert.Equal(t, points[t0].Period, row.Period)
			assert.Equal(t, values[t0], row.Target)
			assert.Equal(t, values[t0-1], row.Lag1)
			assert.Equal(t, values[t0-2], row.Lag2)
			assert.Equal(t, values[t0-3], row.Lag3)

			start := t0 - 6
			if start < 0 {
				start = 0
			}
			sum := 0.0
			for _, v := range values[start:t0] {
				sum += v
			}
			assert.InDelta(t, sum/float64(t0-start), row.RollingMean6, 1e-6)
			assert.InDelta(t, (values[t0-1]+values[t0-2]+values[t0-3])/3, row.RollingMean3, 1e-6)
		}
	}
}

func TestBuildFeatures_RollingWindowCapsAtSix(t *testing.T) {
	points := monthlyPoints(jan2024, 1000, 1, 1, 1, 1, 1, 1, 1)

	rows := BuildFeatures(points)
	require.Len(t, rows, 5)
	// the row for index 7 averages indices 1..6 and no longer sees the 1000
	assert.InDelta(t, 1.0, rows[4].RollingMean6, 1e-9)
	assert.InDelta(t, 1005.0/6, rows[3].RollingMean6, 1e-9)
}
