package store

import (
	"context"
	"errors"
	"time"

	"stockbook/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Ledger is the durable record of products and sales. CreateSale must
// re-check stock and perform the sale insert plus quantity decrement as a
// single atomic unit: on any failure neither change is visible.
type Ledger interface {
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	// ListProducts returns products with remaining stock, newest first.
	ListProducts(ctx context.Context) ([]domain.Product, error)
	// ListSellableProducts returns products with quantity > 0 and
	// has_arrived set, the only ones a sale may reference.
	ListSellableProducts(ctx context.Context) ([]domain.Product, error)
	ToggleArrived(ctx context.Context, id int64) (*domain.Product, error)

	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	// ListSales returns all sales joined to product name and current unit
	// cost, newest first.
	ListSales(ctx context.Context) ([]domain.SaleRecord, error)

	// SumSales returns whole-ledger revenue and cost sums, costing each
	// sale at its product's current cost_cents.
	SumSales(ctx context.Context) (domain.SalesSums, error)
	// SumSalesByDay groups sales on or after from by UTC calendar date,
	// ascending. Dates with no sales are absent.
	SumSalesByDay(ctx context.Context, from time.Time) ([]domain.DailySalesSums, error)
	// SumSalesByProduct groups all sales by product, ordered by product id
	// ascending.
	SumSalesByProduct(ctx context.Context) ([]domain.ProductSalesSums, error)
}
