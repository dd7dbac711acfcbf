package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"stockbook/internal/domain"
	"stockbook/internal/store"
)

func TestCreateSaleDecrementsStockAtomically(t *testing.T) {
	databaseURL := os.Getenv("STOCKBOOK_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set STOCKBOOK_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	name := fmt.Sprintf("Sale IT Crate %d", time.Now().UnixNano())

	product, err := s.CreateProduct(ctx, domain.Product{
		Name:       name,
		Quantity:   10,
		CostCents:  250,
		HasArrived: true,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sales WHERE product_id = $1`, product.ID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, product.ID)
	})

	sale, err := s.CreateSale(ctx, domain.Sale{
		ProductID:      product.ID,
		Quantity:       4,
		SalePriceCents: 600,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if sale.ID < 1 || sale.DateSold.IsZero() {
		t.Fatalf("sale not fully populated: %+v", sale)
	}

	after, err := s.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.Quantity != 6 {
		t.Errorf("quantity after sale = %d, want 6", after.Quantity)
	}

	// Oversell: neither the sale row nor the decrement may land.
	_, err = s.CreateSale(ctx, domain.Sale{
		ProductID:      product.ID,
		Quantity:       7,
		SalePriceCents: 600,
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	after, err = s.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.Quantity != 6 {
		t.Errorf("quantity changed by failed sale: %d", after.Quantity)
	}

	var saleCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales WHERE product_id = $1`, product.ID).Scan(&saleCount); err != nil {
		t.Fatalf("count sales: %v", err)
	}
	if saleCount != 1 {
		t.Errorf("sale rows = %d, want 1", saleCount)
	}
}
