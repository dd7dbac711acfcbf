package domain

import "time"

// All money values are int64 cents so ledger arithmetic stays exact.
// Formatting to dollars happens at the display boundary, never here.

type Product struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	CostCents  int64     `json:"cost_cents"`
	HasArrived bool      `json:"has_arrived"`
	DateAdded  time.Time `json:"date_added"`
}

// Sellable reports whether the product may appear in the sale-entry
// selection: stock remaining and arrival confirmed.
func (p Product) Sellable() bool {
	return p.Quantity > 0 && p.HasArrived
}

type ProductCreateRequest struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	CostCents  int64  `json:"cost_cents"`
	HasArrived bool   `json:"has_arrived"`
}

type Sale struct {
	ID             int64     `json:"id"`
	ProductID      int64     `json:"product_id"`
	Quantity       int       `json:"quantity"`
	SalePriceCents int64     `json:"sale_price_cents"`
	DateSold       time.Time `json:"date_sold"`
}

type SaleCreateRequest struct {
	ProductID      int64 `json:"product_id"`
	Quantity       int   `json:"quantity"`
	SalePriceCents int64 `json:"sale_price_cents"`
}

// SaleRecord is a sale joined to its product's name and current unit cost.
// Cost is the product's cost at query time, not at sale time: editing a
// product's cost reprices historical profit. Intentional; sales do not
// snapshot cost.
type SaleRecord struct {
	Sale
	ProductName      string `json:"product_name"`
	ProductCostCents int64  `json:"product_cost_cents"`
	RevenueCents     int64  `json:"revenue_cents"`
	ProfitCents      int64  `json:"profit_cents"`
}

// SalesSums are whole-ledger revenue and cost totals in cents.
type SalesSums struct {
	RevenueCents int64
	CostCents    int64
}

// DailySalesSums groups sale revenue and cost by UTC calendar date.
type DailySalesSums struct {
	Date         string // 2006-01-02
	RevenueCents int64
	CostCents    int64
}

// ProductSalesSums groups sale revenue and cost by product across all time.
type ProductSalesSums struct {
	ProductID    int64
	ProductName  string
	RevenueCents int64
	CostCents    int64
}

type Totals struct {
	RevenueCents  int64   `json:"revenue_cents"`
	CostCents     int64   `json:"cost_cents"`
	ProfitCents   int64   `json:"profit_cents"`
	MarginPercent float64 `json:"margin_percent"`
}

type DailyProfitPoint struct {
	Date        string `json:"date"`
	ProfitCents int64  `json:"profit_cents"`
}

type ProductProfit struct {
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	RevenueCents int64  `json:"revenue_cents"`
	CostCents    int64  `json:"cost_cents"`
	ProfitCents  int64  `json:"profit_cents"`
}

type Dashboard struct {
	Totals      Totals             `json:"totals"`
	DailyProfit []DailyProfitPoint `json:"daily_profit"`
	TopProducts []ProductProfit    `json:"top_products"`
	WindowDays  int                `json:"window_days"`
	TopN        int                `json:"top_n"`
	GeneratedAt time.Time          `json:"generated_at"`
}
