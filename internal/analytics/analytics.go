// Package analytics computes the dashboard aggregates over cleaned orders.
// Every function is a single pass over read-only input.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/forecast"
	"github.com/RahulBhaskar05/lugXieee-datathon/pkg/utils"
)

// Default sizes of the ranked views
const (
	TopCountries   = 10
	TopProductsN   = 15
	PriceBins      = 50
	SummaryMonths  = 6
	recentAvgShort = 3
)

type bucket struct {
	revenue decimal.Decimal
	orders  int
	units   int
}

func (b *bucket) add(o domain.OrderRecord) {
	b.revenue = b.revenue.Add(o.Revenue)
	b.orders++
	b.units += o.Quantity
}

// ComputeOverview returns the KPI card values
func ComputeOverview(orders []domain.OrderRecord, products []domain.Product) domain.Overview {
	var revenue, shipping decimal.Decimal
	for _, o := range orders {
		revenue = revenue.Add(o.Revenue)
		shipping = shipping.Add(o.ShippingFee)
	}

	ids := make(map[string]struct{}, len(products))
	for _, p := range products {
		ids[p.ID] = struct{}{}
	}

	n := len(orders)
	total := revenue.InexactFloat64()
	return domain.Overview{
		TotalOrders:    n,
		TotalRevenue:   utils.RoundTo(total, 2),
		AvgOrderValue:  utils.RoundTo(utils.SafeDiv(total, float64(n)), 2),
		TotalProducts:  len(ids),
		TotalCustomers: n,
		AvgShipping:    utils.RoundTo(utils.SafeDiv(shipping.InexactFloat64(), float64(n)), 2),
	}
}

// WeekStart truncates t to the Monday that starts its week
func WeekStart(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// WeeklySalesTrend buckets orders by Monday-starting week, oldest first
func WeeklySalesTrend(orders []domain.OrderRecord) []domain.WeeklySales {
	weeks := make(map[time.Time]*bucket)
	for _, o := range orders {
		w := WeekStart(o.OrderDate)
		b, ok := weeks[w]
		if !ok {
			b = &bucket{}
			weeks[w] = b
		}
		b.add(o)
	}

	out := make([]domain.WeeklySales, 0, len(weeks))
	for w, b := range weeks {
		out = append(out, domain.WeeklySales{
			Week:    w,
			Revenue: b.revenue.InexactFloat64(),
			Orders:  b.orders,
			Units:   b.units,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week.Before(out[j].Week) })
	return out
}

// groupTotals sums revenue per label and returns them by revenue descending,
// ties by label.
func groupTotals(orders []domain.OrderRecord, labelOf func(domain.OrderRecord) string) []domain.GroupTotal {
	groups := make(map[string]*bucket)
	for _, o := range orders {
		label := labelOf(o)
		if label == "" {
			label = domain.Unknown
		}
		b, ok := groups[label]
		if !ok {
			b = &bucket{}
			groups[label] = b
		}
		b.add(o)
	}

	out := make([]domain.GroupTotal, 0, len(groups))
	for label, b := range groups {
		out = append(out, domain.GroupTotal{Label: label, Revenue: b.revenue.InexactFloat64(), Orders: b.orders})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// CategoryPerformance is revenue and orders per category
func CategoryPerformance(orders []domain.OrderRecord) []domain.GroupTotal {
	return groupTotals(orders, func(o domain.OrderRecord) string { return o.Category })
}

// GenderAnalysis is revenue and orders per customer gender
func GenderAnalysis(orders []domain.OrderRecord) []domain.GroupTotal {
	return groupTotals(orders, func(o domain.OrderRecord) string { return o.Gender })
}

// GeographicSales returns the n countries with the most revenue
func GeographicSales(orders []domain.OrderRecord, n int) []domain.GroupTotal {
	out := groupTotals(orders, func(o domain.OrderRecord) string { return o.Country })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// AgeDistribution is revenue per age group in age order
func AgeDistribution(orders []domain.OrderRecord) []domain.GroupTotal {
	rank := make(map[string]int)
	for _, o := range orders {
		label := o.AgeGroup
		if label == "" {
			label = domain.Unknown
		}
		if r, ok := rank[label]; !ok || o.AgeGroupOrder < r {
			rank[label] = o.AgeGroupOrder
		}
	}

	out := groupTotals(orders, func(o domain.OrderRecord) string { return o.AgeGroup })
	sort.SliceStable(out, func(i, j int) bool {
		if rank[out[i].Label] != rank[out[j].Label] {
			return rank[out[i].Label] < rank[out[j].Label]
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// SeasonalityImpact compares seasonal and non-seasonal orders, "No" first
func SeasonalityImpact(orders []domain.OrderRecord) []domain.SeasonalityTotal {
	var no, yes bucket
	for _, o := range orders {
		if o.Seasonal {
			yes.add(o)
		} else {
			no.add(o)
		}
	}

	out := make([]domain.SeasonalityTotal, 0, 2)
	for _, g := range []struct {
		label string
		b     bucket
	}{{"No", no}, {"Yes", yes}} {
		if g.b.orders == 0 {
			continue
		}
		total := g.b.revenue.InexactFloat64()
		out = append(out, domain.SeasonalityTotal{
			Seasonal:      g.label,
			TotalRevenue:  total,
			AvgOrderValue: total / float64(g.b.orders),
			Count:         g.b.orders,
		})
	}
	return out
}

// PriceDistribution is an equal-width histogram of product unit prices.
// The last bin includes its upper edge. Non-finite prices are left out.
func PriceDistribution(products []domain.Product, bins int) []domain.PriceBin {
	prices := make([]float64, 0, len(products))
	for _, p := range products {
		if !math.IsNaN(p.UnitPrice) && !math.IsInf(p.UnitPrice, 0) {
			prices = append(prices, p.UnitPrice)
		}
	}
	if len(prices) == 0 || bins <= 0 {
		return []domain.PriceBin{}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range prices {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []domain.PriceBin{{Lower: lo, Upper: hi, Products: len(prices)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]domain.PriceBin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, v := range prices {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Products++
	}
	return out
}

// QuarterlyTrends is revenue per calendar quarter, oldest first
func QuarterlyTrends(orders []domain.OrderRecord) []domain.QuarterTotal {
	type quarter struct{ year, q int }
	groups := make(map[quarter]*bucket)
	for _, o := range orders {
		k := quarter{o.OrderDate.Year(), (int(o.OrderDate.Month())-1)/3 + 1}
		b, ok := groups[k]
		if !ok {
			b = &bucket{}
			groups[k] = b
		}
		b.add(o)
	}

	keys := make([]quarter, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].q < keys[j].q
	})

	out := make([]domain.QuarterTotal, 0, len(keys))
	for _, k := range keys {
		b := groups[k]
		out = append(out, domain.QuarterTotal{
			Period:  fmt.Sprintf("%d Q%d", k.year, k.q),
			Revenue: b.revenue.InexactFloat64(),
			Orders:  b.orders,
		})
	}
	return out
}

// TopProducts returns the n products with the most revenue, ties by ID
func TopProducts(orders []domain.OrderRecord, n int) []domain.ProductTotal {
	type product struct{ id, name string }
	groups := make(map[product]*bucket)
	for _, o := range orders {
		k := product{o.ProductID, o.ProductName}
		if k.name == "" {
			k.name = domain.Unknown
		}
		b, ok := groups[k]
		if !ok {
			b = &bucket{}
			groups[k] = b
		}
		b.add(o)
	}

	out := make([]domain.ProductTotal, 0, len(groups))
	for k, b := range groups {
		out = append(out, domain.ProductTotal{
			ProductID:   k.id,
			ProductName: k.name,
			Revenue:     b.revenue.InexactFloat64(),
			Quantity:    b.units,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].ProductID < out[j].ProductID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Summarize reports the last months of whole-store revenue with their
// 3- and 6-month averages and the covered date range.
func Summarize(orders []domain.OrderRecord, months int) (domain.MonthlySummary, error) {
	series, err := forecast.AggregateMonthly(orders, domain.MetricRevenue, domain.GroupNone)
	if err != nil {
		return domain.MonthlySummary{}, err
	}
	if len(series) == 0 {
		return domain.MonthlySummary{Recent: []domain.TimeSeriesPoint{}}, nil
	}

	points := series[0].Points
	recent := points
	if months > 0 && len(recent) > months {
		recent = recent[len(recent)-months:]
	}

	first, last := orders[0].OrderDate, orders[0].OrderDate
	for _, o := range orders {
		if o.OrderDate.Before(first) {
			first = o.OrderDate
		}
		if o.OrderDate.After(last) {
			last = o.OrderDate
		}
	}

	return domain.MonthlySummary{
		Recent:    append([]domain.TimeSeriesPoint(nil), recent...),
		Avg3:      tailMean(points, recentAvgShort),
		Avg6:      tailMean(points, SummaryMonths),
		FirstDate: first,
		LastDate:  last,
		Months:    len(points),
	}, nil
}

func tailMean(points []domain.TimeSeriesPoint, n int) float64 {
	if n > len(points) {
		n = len(points)
	}
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range points[len(points)-n:] {
		sum += p.Value
	}
	return sum / float64(n)
}
