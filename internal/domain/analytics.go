package domain

import "time"

// Overview holds the KPI card values
type Overview struct {
	TotalOrders    int     `json:"total_orders"`
	TotalRevenue   float64 `json:"total_revenue"`
	AvgOrderValue  float64 `json:"avg_order_value"`
	TotalProducts  int     `json:"total_products"`
	TotalCustomers int     `json:"total_customers"` // one customer per order in this dataset
	AvgShipping    float64 `json:"avg_shipping"`
}

// WeeklySales is one bucket of the sales trend chart
type WeeklySales struct {
	Week    time.Time `json:"week"`
	Revenue float64   `json:"revenue"`
	Orders  int       `json:"orders"`
	Units   int       `json:"units"`
}

// GroupTotal is revenue and order count for one label
type GroupTotal struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// SeasonalityTotal compares seasonal and non-seasonal orders
type SeasonalityTotal struct {
	Seasonal      string  `json:"seasonality"` // "Yes" or "No"
	TotalRevenue  float64 `json:"total_revenue"`
	AvgOrderValue float64 `json:"avg_order_value"`
	Count         int     `json:"count"`
}

// PriceBin is one histogram bucket of product unit prices
type PriceBin struct {
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	Products int     `json:"products"`
}

// QuarterTotal is revenue per year-quarter
type QuarterTotal struct {
	Period  string  `json:"period"` // "2024 Q3"
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// ProductTotal is revenue and units for one product
type ProductTotal struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Revenue     float64 `json:"revenue"`
	Quantity    int     `json:"quantity"`
}

// MonthlySummary is the recent monthly revenue picture printed next to a
// forecast so the prediction can be sanity-checked against history.
type MonthlySummary struct {
	Recent    []TimeSeriesPoint `json:"recent"`
	Avg3      float64           `json:"avg_3_months"`
	Avg6      float64           `json:"avg_6_months"`
	FirstDate time.Time         `json:"first_date"`
	LastDate  time.Time         `json:"last_date"`
	Months    int               `json:"months"`
}
