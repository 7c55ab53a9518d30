package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderRecord is one cleaned transaction merged with its product details
type OrderRecord struct {
	OrderDate     time.Time       `json:"order_date"`
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Category      string          `json:"category"`
	Revenue       decimal.Decimal `json:"revenue"`
	Quantity      int             `json:"quantity"`
	ShippingFee   decimal.Decimal `json:"shipping_fee"`
	AgeGroup      string          `json:"age_group"`
	AgeGroupOrder int             `json:"age_group_order"`
	Gender        string          `json:"gender"`
	City          string          `json:"city"`
	Country       string          `json:"country"`
	Seasonal      bool            `json:"seasonal"`
}

// Product represents a row of the cleaned product catalogue
type Product struct {
	ID        string  `json:"product_id"`
	Name      string  `json:"product_name"`
	Category  string  `json:"category"`
	UnitPrice float64 `json:"unit_price"`
	TaxRate   float64 `json:"tax_rate"`
}

// Unknown labels records whose product has no catalogue entry
const Unknown = "Unknown"
