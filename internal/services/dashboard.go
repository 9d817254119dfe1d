package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"pos-analytics/internal/models"
)

const dashboardWorkers = 4

// Dashboard computes the company-wide reports for the live dashboard in one
// pass. The modules are independent read-only computations, so they run
// concurrently; the first store failure cancels the rest.
func (e *Engine) Dashboard(ctx context.Context, companyID string) (models.DashboardSnapshot, error) {
	snapshot := models.DashboardSnapshot{GeneratedAt: e.now()}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(dashboardWorkers)

	g.Go(func() error {
		trend, err := e.SalesTrend(ctx, companyID, defaultTrendDays)
		if err != nil {
			return err
		}
		snapshot.Trend = trend
		return nil
	})
	g.Go(func() error {
		forecast, err := e.MovingAverage(ctx, companyID, defaultForecastDays)
		if err != nil {
			return err
		}
		snapshot.Forecast = forecast
		return nil
	})
	g.Go(func() error {
		inventory, err := e.ClassifyInventory(ctx, companyID)
		if err != nil {
			return err
		}
		snapshot.Inventory = inventory
		return nil
	})
	g.Go(func() error {
		segments, err := e.SegmentCustomers(ctx, companyID)
		if err != nil {
			return err
		}
		snapshot.Segments = segments
		return nil
	})
	g.Go(func() error {
		profit, err := e.ProfitMargins(ctx, companyID)
		if err != nil {
			return err
		}
		snapshot.Profit = profit
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.DashboardSnapshot{}, err
	}
	return snapshot, nil
}
