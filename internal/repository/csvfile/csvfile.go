// Package csvfile reads the cleaned order and product exports.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
)

// Column headers of Order_Details_Cleaned.csv
const (
	colDate          = "Date"
	colProductID     = "Product ID"
	colNetPrice      = "Net Price ($)"
	colQuantity      = "Quantity (Units)"
	colShippingFee   = "Shipping Fee ($)"
	colAgeGroup      = "Customer Age Group"
	colAgeGroupOrder = "Age_Group_Order"
	colGender        = "Customer Gender"
	colCity          = "Customer_City"
	colCountry       = "Customer_Country"
	colSeasonality   = "Seasonality"
)

// Column headers of Product_Details_Cleaned.csv
const (
	colProductName = "Product Name"
	colCategory    = "Category"
	colUnitPrice   = "Unit Price ($)"
	colTaxRate     = "Tax Rate (%)"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// Source implements domain.OrderSource over two CSV files.
// The product catalogue is read once and reused by LoadOrders.
type Source struct {
	ordersPath   string
	productsPath string

	mu       sync.Mutex
	products []domain.Product
}

// NewSource creates a CSV order source
func NewSource(ordersPath, productsPath string) *Source {
	return &Source{ordersPath: ordersPath, productsPath: productsPath}
}

// LoadProducts reads the product catalogue. When a Product ID appears more
// than once only the first row is kept.
func (s *Source) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.products != nil {
		return s.products, nil
	}

	var (
		products []domain.Product
		seen     = make(map[string]bool)
		dropped  int
	)

	err := readRows(ctx, s.productsPath, []string{colProductID, colProductName, colCategory}, func(line int, row record) error {
		id := row.get(colProductID)
		if seen[id] {
			dropped++
			return nil
		}
		seen[id] = true

		p := domain.Product{
			ID:       id,
			Name:     row.get(colProductName),
			Category: row.get(colCategory),
		}
		var err error
		if p.UnitPrice, err = parseFloat(row.get(colUnitPrice)); err != nil {
			return fmt.Errorf("line %d: unit price: %w", line, err)
		}
		if p.TaxRate, err = parseFloat(row.get(colTaxRate)); err != nil {
			return fmt.Errorf("line %d: tax rate: %w", line, err)
		}
		products = append(products, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("csvfile: failed to load products: %w", err)
	}

	if dropped > 0 {
		log.Printf("csvfile: dropped %d duplicate product rows from %s", dropped, s.productsPath)
	}
	if products == nil {
		products = []domain.Product{}
	}
	s.products = products
	return products, nil
}

// LoadOrders reads the order export and left-joins it to the product
// catalogue on Product ID. Orders without a catalogue entry keep empty
// product fields.
func (s *Source) LoadOrders(ctx context.Context) ([]domain.OrderRecord, error) {
	products, err := s.LoadProducts(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var (
		orders    []domain.OrderRecord
		unmatched int
	)
	required := []string{colDate, colProductID, colNetPrice, colQuantity}
	err = readRows(ctx, s.ordersPath, required, func(line int, row record) error {
		o, err := parseOrder(row)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if p, ok := byID[o.ProductID]; ok {
			o.ProductName = p.Name
			o.Category = p.Category
		} else {
			unmatched++
		}
		orders = append(orders, o)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("csvfile: failed to load orders: %w", err)
	}

	if unmatched > 0 {
		log.Printf("csvfile: %d orders reference unknown products", unmatched)
	}
	return orders, nil
}

func parseOrder(row record) (domain.OrderRecord, error) {
	var (
		o   domain.OrderRecord
		err error
	)
	if o.OrderDate, err = parseDate(row.get(colDate)); err != nil {
		return o, err
	}
	o.ProductID = row.get(colProductID)
	if o.Revenue, err = parseDecimal(row.get(colNetPrice)); err != nil {
		return o, fmt.Errorf("net price: %w", err)
	}
	if o.ShippingFee, err = parseDecimal(row.get(colShippingFee)); err != nil {
		return o, fmt.Errorf("shipping fee: %w", err)
	}
	qty, err := parseFloat(row.get(colQuantity))
	if err != nil {
		return o, fmt.Errorf("quantity: %w", err)
	}
	o.Quantity = int(qty)
	order, err := parseFloat(row.get(colAgeGroupOrder))
	if err != nil {
		return o, fmt.Errorf("age group order: %w", err)
	}
	o.AgeGroupOrder = int(order)

	o.AgeGroup = row.get(colAgeGroup)
	o.Gender = row.get(colGender)
	o.City = row.get(colCity)
	o.Country = row.get(colCountry)
	o.Seasonal = strings.EqualFold(row.get(colSeasonality), "yes")
	return o, nil
}

// record is one CSV row addressed by header name
type record struct {
	index  map[string]int
	fields []string
}

func (r record) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func readRows(ctx context.Context, path string, required []string, fn func(line int, row record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: empty file", path)
		}
		return err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("%s: missing column %q", path, col)
		}
	}

	for line := 2; ; line++ {
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(line, record{index: index, fields: fields}); err != nil {
			return err
		}
	}
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.TrimPrefix(s, "$"))
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.TrimPrefix(s, "$"), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return v, nil
}
