// Package memory implements the ledger in process memory. It backs the test
// suite and dev runs without a DATABASE_URL; aggregation results match the
// postgres implementation, including grouping order.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"stockbook/internal/domain"
	"stockbook/internal/store"
)

type Store struct {
	mu            sync.RWMutex
	products      map[int64]domain.Product
	sales         []domain.Sale
	nextProductID int64
	nextSaleID    int64
}

func New() *Store {
	return &Store{
		products:      make(map[int64]domain.Product),
		sales:         make([]domain.Sale, 0, 64),
		nextProductID: 1,
		nextSaleID:    1,
	}
}

// NewSeeded returns a store pre-populated with a small warehouse for dev
// runs. Tests that need a known-empty ledger use New.
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	seed := []domain.Product{
		{Name: "Steel Shelving Unit", Quantity: 40, CostCents: 6250, HasArrived: true},
		{Name: "Packing Tape 12-Pack", Quantity: 200, CostCents: 1100, HasArrived: true},
		{Name: "Pallet Jack", Quantity: 6, CostCents: 28900, HasArrived: true},
		{Name: "Label Printer", Quantity: 15, CostCents: 9900, HasArrived: false},
		{Name: "Cardboard Box Medium", Quantity: 500, CostCents: 85, HasArrived: true},
	}
	for i, p := range seed {
		p.ID = s.nextProductID
		p.DateAdded = now.Add(-time.Duration(len(seed)-i) * time.Hour)
		s.products[p.ID] = p
		s.nextProductID++
	}

	return s
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.Quantity < 0 || product.CostCents < 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product.ID = s.nextProductID
	s.nextProductID++
	if product.DateAdded.IsZero() {
		product.DateAdded = time.Now().UTC()
	}
	s.products[product.ID] = product

	created := product
	return &created, nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectProducts(func(p domain.Product) bool { return p.Quantity > 0 }), nil
}

func (s *Store) ListSellableProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectProducts(domain.Product.Sellable), nil
}

// collectProducts must be called with the lock held. Newest first, matching
// the postgres ORDER BY date_added DESC, id DESC.
func (s *Store) collectProducts(keep func(domain.Product) bool) []domain.Product {
	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if keep(p) {
			products = append(products, p)
		}
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		if !a.DateAdded.Equal(b.DateAdded) {
			return b.DateAdded.Compare(a.DateAdded)
		}
		return cmpInt64(b.ID, a.ID)
	})

	return products
}

func (s *Store) ToggleArrived(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.HasArrived = !p.HasArrived
	s.products[id] = p

	return &p, nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ProductID < 1 || sale.Quantity < 1 || sale.SalePriceCents < 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[sale.ProductID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if product.Quantity < sale.Quantity {
		return nil, store.ErrInsufficientStock
	}

	sale.ID = s.nextSaleID
	s.nextSaleID++
	if sale.DateSold.IsZero() {
		sale.DateSold = time.Now().UTC()
	}

	product.Quantity -= sale.Quantity
	s.products[sale.ProductID] = product
	s.sales = append(s.sales, sale)

	created := sale
	return &created, nil
}

func (s *Store) ListSales(_ context.Context) ([]domain.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.SaleRecord, 0, len(s.sales))
	for _, sale := range s.sales {
		product := s.products[sale.ProductID]
		records = append(records, domain.SaleRecord{
			Sale:             sale,
			ProductName:      product.Name,
			ProductCostCents: product.CostCents,
		})
	}

	slices.SortFunc(records, func(a, b domain.SaleRecord) int {
		if !a.DateSold.Equal(b.DateSold) {
			return b.DateSold.Compare(a.DateSold)
		}
		return cmpInt64(b.ID, a.ID)
	})

	return records, nil
}

func (s *Store) SumSales(_ context.Context) (domain.SalesSums, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sums domain.SalesSums
	for _, sale := range s.sales {
		product := s.products[sale.ProductID]
		sums.RevenueCents += int64(sale.Quantity) * sale.SalePriceCents
		sums.CostCents += int64(sale.Quantity) * product.CostCents
	}
	return sums, nil
}

func (s *Store) SumSalesByDay(_ context.Context, from time.Time) ([]domain.DailySalesSums, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDate := make(map[string]*domain.DailySalesSums)
	for _, sale := range s.sales {
		if sale.DateSold.Before(from) {
			continue
		}
		date := sale.DateSold.UTC().Format("2006-01-02")
		entry, ok := byDate[date]
		if !ok {
			entry = &domain.DailySalesSums{Date: date}
			byDate[date] = entry
		}
		product := s.products[sale.ProductID]
		entry.RevenueCents += int64(sale.Quantity) * sale.SalePriceCents
		entry.CostCents += int64(sale.Quantity) * product.CostCents
	}

	days := make([]domain.DailySalesSums, 0, len(byDate))
	for _, entry := range byDate {
		days = append(days, *entry)
	}
	slices.SortFunc(days, func(a, b domain.DailySalesSums) int {
		return cmpString(a.Date, b.Date)
	})

	return days, nil
}

func (s *Store) SumSalesByProduct(_ context.Context) ([]domain.ProductSalesSums, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byProduct := make(map[int64]*domain.ProductSalesSums)
	for _, sale := range s.sales {
		product := s.products[sale.ProductID]
		entry, ok := byProduct[sale.ProductID]
		if !ok {
			entry = &domain.ProductSalesSums{ProductID: sale.ProductID, ProductName: product.Name}
			byProduct[sale.ProductID] = entry
		}
		entry.RevenueCents += int64(sale.Quantity) * sale.SalePriceCents
		entry.CostCents += int64(sale.Quantity) * product.CostCents
	}

	sums := make([]domain.ProductSalesSums, 0, len(byProduct))
	for _, entry := range byProduct {
		sums = append(sums, *entry)
	}
	slices.SortFunc(sums, func(a, b domain.ProductSalesSums) int {
		return cmpInt64(a.ProductID, b.ProductID)
	})

	return sums, nil
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
