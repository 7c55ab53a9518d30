package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/RahulBhaskar05/lugXieee-datathon/pkg/utils"
)

// Metrics describe how closely fitted values track known targets.
type Metrics struct {
	R2   float64
	MAE  float64
	RMSE float64
	// MAPE is a fraction, averaged over rows with a non-zero actual.
	MAPE float64
	// MAPEExcluded counts rows left out of MAPE because the actual was 0.
	MAPEExcluded int
	// Degenerate is set when R2 is undefined (constant or non-finite data)
	// and reported as 0.
	Degenerate bool
}

// Evaluate compares predicted against actual row by row. It never fails:
// undefined quantities are reported as 0.
func Evaluate(actual, predicted []float64) Metrics {
	n := len(actual)
	if len(predicted) < n {
		n = len(predicted)
	}
	if n == 0 {
		return Metrics{Degenerate: true}
	}
	actual, predicted = actual[:n], predicted[:n]
	if !utils.AllFinite(actual) || !utils.AllFinite(predicted) {
		return Metrics{Degenerate: true}
	}

	var m Metrics
	absSum, sqSum, pctSum := 0.0, 0.0, 0.0
	pctRows := 0
	for i := range actual {
		diff := actual[i] - predicted[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
		if actual[i] == 0 {
			m.MAPEExcluded++
			continue
		}
		pctSum += math.Abs(diff) / math.Abs(actual[i])
		pctRows++
	}
	m.MAE = absSum / float64(n)
	m.RMSE = math.Sqrt(sqSum / float64(n))
	m.MAPE = utils.SafeDiv(pctSum, float64(pctRows))

	mean := stat.Mean(actual, nil)
	total := 0.0
	for _, v := range actual {
		total += (v - mean) * (v - mean)
	}
	if total == 0 {
		m.Degenerate = true
		return m
	}
	m.R2 = stat.RSquaredFrom(predicted, actual, nil)
	return m
}
