package report

import (
	"context"
	"testing"
	"time"

	"stockbook/internal/cache"
	"stockbook/internal/domain"
	"stockbook/internal/store/memory"
)

func newTestEngine(t *testing.T) (*Engine, *memory.Store) {
	t.Helper()
	ledger := memory.New()
	engine := NewEngine(ledger, cache.NoopDashboardCache{}, time.Minute, 30, 5)
	return engine, ledger
}

func mustCreateProduct(t *testing.T, ledger *memory.Store, name string, quantity int, costCents int64) *domain.Product {
	t.Helper()
	p, err := ledger.CreateProduct(context.Background(), domain.Product{
		Name:       name,
		Quantity:   quantity,
		CostCents:  costCents,
		HasArrived: true,
	})
	if err != nil {
		t.Fatalf("create product %q: %v", name, err)
	}
	return p
}

func mustCreateSale(t *testing.T, ledger *memory.Store, productID int64, quantity int, priceCents int64, soldAt time.Time) {
	t.Helper()
	_, err := ledger.CreateSale(context.Background(), domain.Sale{
		ProductID:      productID,
		Quantity:       quantity,
		SalePriceCents: priceCents,
		DateSold:       soldAt,
	})
	if err != nil {
		t.Fatalf("create sale for product %d: %v", productID, err)
	}
}

func TestTotalsWidgetScenario(t *testing.T) {
	engine, ledger := newTestEngine(t)
	widget := mustCreateProduct(t, ledger, "Widget", 10, 200)
	mustCreateSale(t, ledger, widget.ID, 3, 500, time.Now().UTC())

	totals, err := engine.Totals(context.Background())
	if err != nil {
		t.Fatalf("totals: %v", err)
	}

	if totals.RevenueCents != 1500 {
		t.Errorf("revenue = %d, want 1500", totals.RevenueCents)
	}
	if totals.CostCents != 600 {
		t.Errorf("cost = %d, want 600", totals.CostCents)
	}
	if totals.ProfitCents != 900 {
		t.Errorf("profit = %d, want 900", totals.ProfitCents)
	}
	if totals.MarginPercent != 60.0 {
		t.Errorf("margin = %v, want 60.0", totals.MarginPercent)
	}
}

func TestTotalsEmptyLedger(t *testing.T) {
	engine, _ := newTestEngine(t)

	totals, err := engine.Totals(context.Background())
	if err != nil {
		t.Fatalf("totals: %v", err)
	}

	if totals.RevenueCents != 0 || totals.CostCents != 0 || totals.ProfitCents != 0 {
		t.Errorf("expected zero totals, got %+v", totals)
	}
	if totals.MarginPercent != 0 {
		t.Errorf("margin on empty ledger = %v, want 0", totals.MarginPercent)
	}
}

func TestDailyProfitSeriesMergesSameDate(t *testing.T) {
	engine, ledger := newTestEngine(t)
	crate := mustCreateProduct(t, ledger, "Crate", 100, 100)
	tape := mustCreateProduct(t, ledger, "Tape", 100, 100)

	now := time.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -2)
	mustCreateSale(t, ledger, crate.ID, 2, 300, day.Add(9*time.Hour))
	mustCreateSale(t, ledger, tape.ID, 1, 300, day.Add(14*time.Hour))

	series, err := engine.DailyProfitSeries(context.Background(), 30)
	if err != nil {
		t.Fatalf("series: %v", err)
	}

	if len(series) != 1 {
		t.Fatalf("expected one point for same-date sales, got %d", len(series))
	}
	if want := day.Format("2006-01-02"); series[0].Date != want {
		t.Errorf("date = %q, want %q", series[0].Date, want)
	}
	// 3 units at 300 revenue, 100 cost each.
	if series[0].ProfitCents != 600 {
		t.Errorf("profit = %d, want 600", series[0].ProfitCents)
	}
}

func TestDailyProfitSeriesWindowAndOrder(t *testing.T) {
	engine, ledger := newTestEngine(t)
	p := mustCreateProduct(t, ledger, "Crate", 100, 100)

	now := time.Now().UTC()
	mustCreateSale(t, ledger, p.ID, 1, 200, now.AddDate(0, 0, -60)) // outside window
	mustCreateSale(t, ledger, p.ID, 1, 200, now.AddDate(0, 0, -5))
	mustCreateSale(t, ledger, p.ID, 1, 200, now.AddDate(0, 0, -2))

	series, err := engine.DailyProfitSeries(context.Background(), 30)
	if err != nil {
		t.Fatalf("series: %v", err)
	}

	if len(series) != 2 {
		t.Fatalf("expected 2 in-window points, got %d", len(series))
	}
	if series[0].Date >= series[1].Date {
		t.Errorf("series not ascending: %q then %q", series[0].Date, series[1].Date)
	}
}

func TestDailyProfitSeriesEmpty(t *testing.T) {
	engine, _ := newTestEngine(t)

	series, err := engine.DailyProfitSeries(context.Background(), 30)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("expected empty series, got %d points", len(series))
	}
}

func TestTopProductsOrderingAndTruncation(t *testing.T) {
	engine, ledger := newTestEngine(t)
	now := time.Now().UTC()

	low := mustCreateProduct(t, ledger, "Low", 100, 100)
	high := mustCreateProduct(t, ledger, "High", 100, 100)
	mid := mustCreateProduct(t, ledger, "Mid", 100, 100)

	mustCreateSale(t, ledger, low.ID, 1, 200, now)  // profit 100
	mustCreateSale(t, ledger, high.ID, 1, 900, now) // profit 800
	mustCreateSale(t, ledger, mid.ID, 1, 500, now)  // profit 400

	top, err := engine.TopProducts(context.Background(), 2)
	if err != nil {
		t.Fatalf("top products: %v", err)
	}

	if len(top) != 2 {
		t.Fatalf("expected 2 products, got %d", len(top))
	}
	if top[0].ProductID != high.ID || top[1].ProductID != mid.ID {
		t.Errorf("order = [%d %d], want [%d %d]", top[0].ProductID, top[1].ProductID, high.ID, mid.ID)
	}
	for i := 1; i < len(top); i++ {
		if top[i].ProfitCents > top[i-1].ProfitCents {
			t.Errorf("profit increases at index %d", i)
		}
	}
}

func TestTopProductsTieBreakByID(t *testing.T) {
	engine, ledger := newTestEngine(t)
	now := time.Now().UTC()

	first := mustCreateProduct(t, ledger, "First", 100, 100)
	second := mustCreateProduct(t, ledger, "Second", 100, 100)

	// Identical profit on both products.
	mustCreateSale(t, ledger, second.ID, 1, 400, now)
	mustCreateSale(t, ledger, first.ID, 1, 400, now)

	top, err := engine.TopProducts(context.Background(), 5)
	if err != nil {
		t.Fatalf("top products: %v", err)
	}

	if len(top) != 2 {
		t.Fatalf("expected 2 products, got %d", len(top))
	}
	if top[0].ProductID != first.ID {
		t.Errorf("tied products should rank by id, got %d first", top[0].ProductID)
	}
}

func TestTopProductsFewerThanN(t *testing.T) {
	engine, ledger := newTestEngine(t)
	p := mustCreateProduct(t, ledger, "Solo", 10, 100)
	mustCreateSale(t, ledger, p.ID, 1, 150, time.Now().UTC())

	top, err := engine.TopProducts(context.Background(), 5)
	if err != nil {
		t.Fatalf("top products: %v", err)
	}
	if len(top) != 1 {
		t.Errorf("expected 1 product, got %d", len(top))
	}
}

type recordingCache struct {
	stored *domain.Dashboard
	gets   int
	sets   int
}

func (c *recordingCache) Get(_ context.Context, _ string) (*domain.Dashboard, bool, error) {
	c.gets++
	if c.stored == nil {
		return nil, false, nil
	}
	return c.stored, true, nil
}

func (c *recordingCache) Set(_ context.Context, _ string, value *domain.Dashboard, _ time.Duration) error {
	c.sets++
	c.stored = value
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, _ string) error {
	c.stored = nil
	return nil
}

func TestDashboardCachesDefaultParamsOnly(t *testing.T) {
	ledger := memory.New()
	rec := &recordingCache{}
	engine := NewEngine(ledger, rec, time.Minute, 30, 5)

	if _, err := engine.Dashboard(context.Background(), 0, 0); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if rec.sets != 1 {
		t.Fatalf("default dashboard not written to cache, sets = %d", rec.sets)
	}

	// Second default call is served from the cache.
	if _, err := engine.Dashboard(context.Background(), 0, 0); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if rec.sets != 1 {
		t.Errorf("cached dashboard recomputed, sets = %d", rec.sets)
	}

	// Overridden params bypass the cache entirely.
	gets := rec.gets
	if _, err := engine.Dashboard(context.Background(), 7, 3); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if rec.gets != gets || rec.sets != 1 {
		t.Errorf("override touched the cache: gets %d->%d sets %d", gets, rec.gets, rec.sets)
	}
}

func TestDashboardShape(t *testing.T) {
	engine, ledger := newTestEngine(t)
	p := mustCreateProduct(t, ledger, "Widget", 10, 200)
	mustCreateSale(t, ledger, p.ID, 3, 500, time.Now().UTC())

	dash, err := engine.Dashboard(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if dash.WindowDays != 30 || dash.TopN != 5 {
		t.Errorf("defaults not applied: window %d topN %d", dash.WindowDays, dash.TopN)
	}
	if dash.Totals.ProfitCents != 900 {
		t.Errorf("totals profit = %d, want 900", dash.Totals.ProfitCents)
	}
	if len(dash.TopProducts) != 1 || dash.TopProducts[0].ProductName != "Widget" {
		t.Errorf("unexpected top products: %+v", dash.TopProducts)
	}
	if dash.GeneratedAt.IsZero() {
		t.Error("generated_at not set")
	}
}
