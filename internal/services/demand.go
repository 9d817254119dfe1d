package services

import (
	"context"
	"fmt"
	"math"
)

// ForecastDemand projects per-period unit demand for one product using a
// one-shot seasonal-trend decomposition: level, trend, and a weekly seasonal
// index are estimated once from the head of the series and extrapolated, not
// re-fitted per step. This is a business heuristic, not Holt-Winters.
//
// Fewer than one full season of history yields a zero-filled forecast of the
// requested length; callers rely on that sentinel.
func (e *Engine) ForecastDemand(ctx context.Context, companyID, productID string, periods int) ([]int, error) {
	if periods <= 0 {
		periods = defaultDemandPeriods
	}

	if _, err := e.repo.Product(ctx, companyID, productID); err != nil {
		return nil, fmt.Errorf("product: %w", err)
	}

	now := e.now()
	series, err := e.repo.DailyUnits(ctx, companyID, productID, now.AddDate(0, 0, -e.cfg.DemandLookbackDays), now)
	if err != nil {
		return nil, fmt.Errorf("daily units: %w", err)
	}

	values := seriesValues(series)
	n := len(values)
	if n < seasonLength {
		return make([]int, periods), nil
	}

	level := values[0]
	trend := values[1] - values[0]

	seasonal := make([]float64, seasonLength)
	for i := range seasonal {
		if level != 0 {
			seasonal[i] = values[i] / level
		} else {
			seasonal[i] = 1
		}
	}

	forecast := make([]int, periods)
	for i := range forecast {
		projected := (level + trend*float64(i+1)) * seasonal[(n+i)%seasonLength]
		if projected < 0 {
			projected = 0
		}
		forecast[i] = int(math.Round(projected))
	}
	return forecast, nil
}
