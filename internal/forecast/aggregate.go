// Package forecast turns cleaned orders into monthly series, lag features,
// fitted tree ensembles and one-period-ahead predictions.
package forecast

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
)

// StoreKey is the series key used when no grouping is requested
const StoreKey = "store"

// MinGroupPeriods is the history a category or product needs to be forecast
const MinGroupPeriods = domain.MaxLag + 2

// AggregateMonthly sums metric per calendar month for every group key.
// Series are returned sorted by key; points within a series by period.
func AggregateMonthly(records []domain.OrderRecord, metric domain.Metric, groupBy domain.GroupBy) ([]domain.Series, error) {
	keyOf, err := keyFunc(groupBy)
	if err != nil {
		return nil, err
	}
	valueOf, err := valueFunc(metric)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]map[domain.Period]decimal.Decimal)
	for _, r := range records {
		key := keyOf(r)
		byPeriod, ok := sums[key]
		if !ok {
			byPeriod = make(map[domain.Period]decimal.Decimal)
			sums[key] = byPeriod
		}
		p := domain.PeriodOf(r.OrderDate)
		byPeriod[p] = byPeriod[p].Add(valueOf(r))
	}

	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.Series, 0, len(keys))
	for _, k := range keys {
		out = append(out, buildSeries(k, sums[k]))
	}
	return out, nil
}

// FilterByHistory splits series into those with at least minPeriods points
// and skipped keys for the rest.
func FilterByHistory(series []domain.Series, minPeriods int) ([]domain.Series, []domain.SkippedKey) {
	kept := make([]domain.Series, 0, len(series))
	var skipped []domain.SkippedKey
	for _, s := range series {
		if len(s.Points) < minPeriods {
			skipped = append(skipped, domain.SkippedKey{
				Key:    s.Key,
				Reason: fmt.Sprintf("%s: %d of %d required periods", domain.ErrInsufficientHistory, len(s.Points), minPeriods),
			})
			continue
		}
		kept = append(kept, s)
	}
	return kept, skipped
}

// TopKeys ranks group keys by their total metric, largest first, ties by key.
func TopKeys(records []domain.OrderRecord, metric domain.Metric, groupBy domain.GroupBy, n int) ([]string, error) {
	keyOf, err := keyFunc(groupBy)
	if err != nil {
		return nil, err
	}
	valueOf, err := valueFunc(metric)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, r := range records {
		k := keyOf(r)
		totals[k] = totals[k].Add(valueOf(r))
	}

	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c := totals[keys[i]].Cmp(totals[keys[j]]); c != 0 {
			return c > 0
		}
		return keys[i] < keys[j]
	})
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys, nil
}

// SelectSeries keeps the series whose key is in keys, preserving keys' order.
func SelectSeries(series []domain.Series, keys []string) []domain.Series {
	byKey := make(map[string]domain.Series, len(series))
	for _, s := range series {
		byKey[s.Key] = s
	}
	out := make([]domain.Series, 0, len(keys))
	for _, k := range keys {
		if s, ok := byKey[k]; ok {
			out = append(out, s)
		}
	}
	return out
}

func buildSeries(key string, byPeriod map[domain.Period]decimal.Decimal) domain.Series {
	periods := make([]domain.Period, 0, len(byPeriod))
	for p := range byPeriod {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	s := domain.Series{Key: key, Points: make([]domain.TimeSeriesPoint, len(periods))}
	for i, p := range periods {
		s.Points[i] = domain.TimeSeriesPoint{Period: p, Value: byPeriod[p].InexactFloat64()}
	}
	if len(periods) > 1 {
		for p := periods[0].Next(); p.Before(periods[len(periods)-1]); p = p.Next() {
			if _, ok := byPeriod[p]; !ok {
				s.Gaps = append(s.Gaps, p)
			}
		}
	}
	return s
}

func keyFunc(groupBy domain.GroupBy) (func(domain.OrderRecord) string, error) {
	switch groupBy {
	case domain.GroupNone, "":
		return func(domain.OrderRecord) string { return StoreKey }, nil
	case domain.GroupCategory:
		return func(r domain.OrderRecord) string { return labelOr(r.Category) }, nil
	case domain.GroupProduct:
		return func(r domain.OrderRecord) string { return labelOr(r.ProductName) }, nil
	default:
		return nil, fmt.Errorf("forecast: unsupported grouping %q", groupBy)
	}
}

func valueFunc(metric domain.Metric) (func(domain.OrderRecord) decimal.Decimal, error) {
	switch metric {
	case domain.MetricRevenue:
		return func(r domain.OrderRecord) decimal.Decimal { return r.Revenue }, nil
	case domain.MetricQuantity:
		return func(r domain.OrderRecord) decimal.Decimal { return decimal.NewFromInt(int64(r.Quantity)) }, nil
	default:
		return nil, fmt.Errorf("forecast: unsupported metric %q", metric)
	}
}

func labelOr(s string) string {
	if s == "" {
		return domain.Unknown
	}
	return s
}
