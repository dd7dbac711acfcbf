package cache

import (
	"context"
	"time"

	"stockbook/internal/domain"
)

// DashboardCache holds the most recent default-parameter dashboard.
// Invalidate is called on every ledger mutation so the next read
// recomputes from live store state.
type DashboardCache interface {
	Get(ctx context.Context, key string) (*domain.Dashboard, bool, error)
	Set(ctx context.Context, key string, value *domain.Dashboard, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

type NoopDashboardCache struct{}

func (NoopDashboardCache) Get(_ context.Context, _ string) (*domain.Dashboard, bool, error) {
	return nil, false, nil
}

func (NoopDashboardCache) Set(_ context.Context, _ string, _ *domain.Dashboard, _ time.Duration) error {
	return nil
}

func (NoopDashboardCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
