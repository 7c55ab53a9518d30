// Package dataset holds the cleaned orders in memory for the lifetime of
// the process.
package dataset

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
)

// Dataset is the read-only order data shared by every request.
// Nothing in the process mutates it after Load returns.
type Dataset struct {
	orders   []domain.OrderRecord
	products []domain.Product
	loadedAt time.Time
}

// New wraps already-loaded records. Orders are sorted by date.
func New(orders []domain.OrderRecord, products []domain.Product) *Dataset {
	sorted := make([]domain.OrderRecord, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderDate.Before(sorted[j].OrderDate)
	})
	return &Dataset{
		orders:   sorted,
		products: append([]domain.Product(nil), products...),
		loadedAt: time.Now(),
	}
}

// Load reads products and orders from src. Any failure is reported as
// domain.ErrUpstreamDataUnavailable.
func Load(ctx context.Context, src domain.OrderSource) (*Dataset, error) {
	start := time.Now()

	products, err := src.LoadProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w: %w", domain.ErrUpstreamDataUnavailable, err)
	}
	orders, err := src.LoadOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w: %w", domain.ErrUpstreamDataUnavailable, err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("dataset: %w: no orders", domain.ErrUpstreamDataUnavailable)
	}

	ds := New(orders, products)
	first, last := ds.DateRange()
	log.Printf("Loaded %d orders and %d products (%s to %s) in %s",
		len(orders), len(products), first.Format("2006-01-02"), last.Format("2006-01-02"), time.Since(start).Round(time.Millisecond))
	return ds, nil
}

// Orders returns the shared order slice. Callers must not modify it.
func (d *Dataset) Orders() []domain.OrderRecord {
	return d.orders
}

// Products returns the shared product slice. Callers must not modify it.
func (d *Dataset) Products() []domain.Product {
	return d.products
}

// Len is the number of orders
func (d *Dataset) Len() int {
	return len(d.orders)
}

// LoadedAt is when the dataset was built
func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

// DateRange returns the first and last order dates
func (d *Dataset) DateRange() (time.Time, time.Time) {
	if len(d.orders) == 0 {
		return time.Time{}, time.Time{}
	}
	return d.orders[0].OrderDate, d.orders[len(d.orders)-1].OrderDate
}
