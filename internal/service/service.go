// Package service is the validation boundary between transports and the
// ledger. Requests are normalized and checked here; stores only enforce the
// invariants they can guarantee atomically.
package service

import (
	"context"
	"log"
	"strings"
	"time"

	"stockbook/internal/cache"
	"stockbook/internal/domain"
	"stockbook/internal/report"
	"stockbook/internal/store"
)

type Service struct {
	ledger    store.Ledger
	dashCache cache.DashboardCache
}

func New(ledger store.Ledger, dashCache cache.DashboardCache) *Service {
	if dashCache == nil {
		dashCache = cache.NoopDashboardCache{}
	}
	return &Service{ledger: ledger, dashCache: dashCache}
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Quantity < 1 || req.CostCents < 0 {
		return domain.Product{}, store.ErrInvalidInput
	}

	product := domain.Product{
		Name:       req.Name,
		Quantity:   req.Quantity,
		CostCents:  req.CostCents,
		HasArrived: req.HasArrived,
		DateAdded:  time.Now().UTC(),
	}

	created, err := s.ledger.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidateDashboard(ctx)
	return *created, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.ledger.ListProducts(ctx)
}

func (s *Service) ListSellableProducts(ctx context.Context) ([]domain.Product, error) {
	return s.ledger.ListSellableProducts(ctx)
}

func (s *Service) ToggleArrived(ctx context.Context, id int64) (domain.Product, error) {
	if id < 1 {
		return domain.Product{}, store.ErrInvalidInput
	}

	updated, err := s.ledger.ToggleArrived(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidateDashboard(ctx)
	return *updated, nil
}

// RecordSale validates the request and hands the stock check to the ledger,
// which re-verifies quantity inside its own transaction.
func (s *Service) RecordSale(ctx context.Context, req domain.SaleCreateRequest) (domain.Sale, error) {
	if req.ProductID < 1 || req.Quantity < 1 || req.SalePriceCents < 1 {
		return domain.Sale{}, store.ErrInvalidInput
	}

	sale := domain.Sale{
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		SalePriceCents: req.SalePriceCents,
		DateSold:       time.Now().UTC(),
	}

	created, err := s.ledger.CreateSale(ctx, sale)
	if err != nil {
		return domain.Sale{}, err
	}

	s.invalidateDashboard(ctx)
	return *created, nil
}

// ListSales fills in the per-row revenue and profit the stores leave zero.
func (s *Service) ListSales(ctx context.Context) ([]domain.SaleRecord, error) {
	records, err := s.ledger.ListSales(ctx)
	if err != nil {
		return nil, err
	}

	for i := range records {
		r := &records[i]
		r.RevenueCents = int64(r.Quantity) * r.SalePriceCents
		r.ProfitCents = r.RevenueCents - int64(r.Quantity)*r.ProductCostCents
	}

	return records, nil
}

// invalidateDashboard drops the cached dashboard after any mutation. Cache
// failures are logged, not returned; the write already succeeded.
func (s *Service) invalidateDashboard(ctx context.Context) {
	if err := s.dashCache.Invalidate(ctx, report.CacheKey); err != nil {
		log.Printf("[service] WARN: failed to invalidate dashboard cache: %v", err)
	}
}
