package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_PerfectFit(t *testing.T) {
	m := Evaluate([]float64{1, 2, 3}, []float64{1, 2, 3})
	assert.InDelta(t, 1.0, m.R2, 1e-12)
	assert.Zero(t, m.MAE)
	assert.Zero(t, m.RMSE)
	assert.Zero(t, m.MAPE)
	assert.False(t, m.Degenerate)
}

func TestEvaluate_KnownValues(t *testing.T) {
	m := Evaluate([]float64{1, 2, 3, 4}, []float64{1, 2, 3, 5})
	assert.InDelta(t, 0.8, m.R2, 1e-12)
	assert.InDelta(t, 0.25, m.MAE, 1e-12)
	assert.InDelta(t, 0.5, m.RMSE, 1e-12)
	assert.InDelta(t, 0.0625, m.MAPE, 1e-12)
	assert.Zero(t, m.MAPEExcluded)
}

func TestEvaluate_MAPEExcludesZeroActuals(t *testing.T) {
	var m Metrics
	assert.NotPanics(t, func() {
		m = Evaluate([]float64{0, 2, 4}, []float64{1, 2, 5})
	})
	assert.Equal(t, 1, m.MAPEExcluded)
	assert.InDelta(t, 0.125, m.MAPE, 1e-12)
	assert.False(t, math.IsInf(m.MAPE, 0))

	allZero := Evaluate([]float64{0, 0}, []float64{1, 1})
	assert.Equal(t, 2, allZero.MAPEExcluded)
	assert.Zero(t, allZero.MAPE)
}

func TestEvaluate_ConstantSeriesIsDegenerate(t *testing.T) {
	m := Evaluate([]float64{5, 5, 5}, []float64{4, 5, 6})
	assert.True(t, m.Degenerate)
	assert.Zero(t, m.R2)
	assert.InDelta(t, 2.0/3, m.MAE, 1e-12)
}

func TestEvaluate_NonFiniteIsDegenerate(t *testing.T) {
	m := Evaluate([]float64{1, math.NaN()}, []float64{1, 2})
	assert.True(t, m.Degenerate)
	assert.Zero(t, m.R2)
	assert.Zero(t, m.MAE)

	empty := Evaluate(nil, nil)
	assert.True(t, empty.Degenerate)
}
