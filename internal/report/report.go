// Package report computes the dashboard figures: whole-ledger totals, the
// daily profit trend over a trailing window, and the top products ranked by
// cumulative profit. The engine keeps no state between calls; every call
// re-queries the ledger, so results always reflect the live store.
package report

import (
	"context"
	"slices"
	"time"

	"stockbook/internal/cache"
	"stockbook/internal/domain"
	"stockbook/internal/store"
)

// CacheKey is the single cache slot, holding the default-parameter
// dashboard only. Requests with explicit window/top-n overrides bypass the
// cache so invalidation stays a single delete.
const CacheKey = "dashboard:v1"

type Engine struct {
	ledger     store.Ledger
	cache      cache.DashboardCache
	cacheTTL   time.Duration
	windowDays int
	topN       int
}

func NewEngine(ledger store.Ledger, dashCache cache.DashboardCache, cacheTTL time.Duration, windowDays int, topN int) *Engine {
	if dashCache == nil {
		dashCache = cache.NoopDashboardCache{}
	}
	if windowDays < 1 {
		windowDays = 30
	}
	if topN < 1 {
		topN = 5
	}

	return &Engine{
		ledger:     ledger,
		cache:      dashCache,
		cacheTTL:   cacheTTL,
		windowDays: windowDays,
		topN:       topN,
	}
}

// Totals sums revenue and cost over every sale, each sale costed at its
// product's current unit cost. Margin is profit over revenue as a
// percentage, zero when there is no revenue.
func (e *Engine) Totals(ctx context.Context) (domain.Totals, error) {
	sums, err := e.ledger.SumSales(ctx)
	if err != nil {
		return domain.Totals{}, err
	}

	totals := domain.Totals{
		RevenueCents: sums.RevenueCents,
		CostCents:    sums.CostCents,
		ProfitCents:  sums.RevenueCents - sums.CostCents,
	}
	if totals.RevenueCents > 0 {
		totals.MarginPercent = float64(totals.ProfitCents) / float64(totals.RevenueCents) * 100
	}

	return totals, nil
}

// DailyProfitSeries returns per-date profit for sales within the trailing
// window, ascending by date. Dates without sales are omitted; an empty
// window yields an empty slice, not an error.
func (e *Engine) DailyProfitSeries(ctx context.Context, windowDays int) ([]domain.DailyProfitPoint, error) {
	if windowDays < 1 {
		windowDays = e.windowDays
	}

	from := startOfDayUTC(time.Now().UTC()).AddDate(0, 0, -windowDays)
	days, err := e.ledger.SumSalesByDay(ctx, from)
	if err != nil {
		return nil, err
	}

	series := make([]domain.DailyProfitPoint, 0, len(days))
	for _, day := range days {
		series = append(series, domain.DailyProfitPoint{
			Date:        day.Date,
			ProfitCents: day.RevenueCents - day.CostCents,
		})
	}

	return series, nil
}

// TopProducts ranks products by cumulative profit, descending. Ties are
// broken by product id ascending, which the ledger's grouping order already
// provides and the stable sort preserves. Fewer than n products with sales
// returns all of them.
func (e *Engine) TopProducts(ctx context.Context, n int) ([]domain.ProductProfit, error) {
	if n < 1 {
		n = e.topN
	}

	sums, err := e.ledger.SumSalesByProduct(ctx)
	if err != nil {
		return nil, err
	}

	ranked := make([]domain.ProductProfit, 0, len(sums))
	for _, entry := range sums {
		ranked = append(ranked, domain.ProductProfit{
			ProductID:    entry.ProductID,
			ProductName:  entry.ProductName,
			RevenueCents: entry.RevenueCents,
			CostCents:    entry.CostCents,
			ProfitCents:  entry.RevenueCents - entry.CostCents,
		})
	}

	slices.SortStableFunc(ranked, func(a, b domain.ProductProfit) int {
		switch {
		case a.ProfitCents > b.ProfitCents:
			return -1
		case a.ProfitCents < b.ProfitCents:
			return 1
		default:
			return 0
		}
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// Dashboard computes totals, trend, and ranking in one pass. The
// default-parameter result is served from and written back to the cache;
// explicit overrides always hit the ledger.
func (e *Engine) Dashboard(ctx context.Context, windowDays int, topN int) (domain.Dashboard, error) {
	useCache := (windowDays == 0 || windowDays == e.windowDays) && (topN == 0 || topN == e.topN)
	if windowDays < 1 {
		windowDays = e.windowDays
	}
	if topN < 1 {
		topN = e.topN
	}

	if useCache {
		if cached, ok, err := e.cache.Get(ctx, CacheKey); err == nil && ok {
			return *cached, nil
		}
	}

	totals, err := e.Totals(ctx)
	if err != nil {
		return domain.Dashboard{}, err
	}
	series, err := e.DailyProfitSeries(ctx, windowDays)
	if err != nil {
		return domain.Dashboard{}, err
	}
	top, err := e.TopProducts(ctx, topN)
	if err != nil {
		return domain.Dashboard{}, err
	}

	dash := domain.Dashboard{
		Totals:      totals,
		DailyProfit: series,
		TopProducts: top,
		WindowDays:  windowDays,
		TopN:        topN,
		GeneratedAt: time.Now().UTC(),
	}

	if useCache {
		_ = e.cache.Set(ctx, CacheKey, &dash, e.cacheTTL)
	}

	return dash, nil
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
