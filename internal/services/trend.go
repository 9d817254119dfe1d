package services

import (
	"context"
	"fmt"

	"pos-analytics/internal/models"
	"pos-analytics/internal/stats"
)

// SalesTrend fits a least-squares line to the company's daily revenue over
// the lookback window and reports direction plus a next-period prediction.
// Fewer than two revenue days yields the neutral stable result.
func (e *Engine) SalesTrend(ctx context.Context, companyID string, days int) (models.TrendResult, error) {
	if days <= 0 {
		days = defaultTrendDays
	}

	key := fmt.Sprintf("trend:%s:%d", companyID, days)
	return cached(e.cache, key, func() (models.TrendResult, error) {
		now := e.now()
		series, err := e.repo.DailyRevenue(ctx, companyID, now.AddDate(0, 0, -days), now)
		if err != nil {
			return models.TrendResult{}, fmt.Errorf("daily revenue: %w", err)
		}
		if len(series) < 2 {
			return models.TrendResult{Trend: models.TrendStable}, nil
		}

		values := seriesValues(series)
		slope, intercept, r2 := stats.LinearFit(values)

		trend := models.TrendStable
		switch {
		case slope > trendSlopeThreshold:
			trend = models.TrendIncreasing
		case slope < -trendSlopeThreshold:
			trend = models.TrendDecreasing
		}

		prediction := slope*float64(len(values)) + intercept
		if prediction < 0 {
			prediction = 0
		}

		return models.TrendResult{
			Slope:      slope,
			Intercept:  intercept,
			Trend:      trend,
			Prediction: prediction,
			RSquared:   r2,
		}, nil
	})
}

// MovingAverage blends a simple and an exponential moving average of daily
// revenue into a near-term forecast. The smoothing runs chronologically over
// twice the period so the most recent days dominate the exponential term.
func (e *Engine) MovingAverage(ctx context.Context, companyID string, period int) (models.ForecastResult, error) {
	if period <= 0 {
		period = defaultForecastDays
	}

	key := fmt.Sprintf("forecast:%s:%d", companyID, period)
	return cached(e.cache, key, func() (models.ForecastResult, error) {
		now := e.now()
		series, err := e.repo.DailyRevenue(ctx, companyID, now.AddDate(0, 0, -2*period), now)
		if err != nil {
			return models.ForecastResult{}, fmt.Errorf("daily revenue: %w", err)
		}
		if len(series) == 0 {
			return models.ForecastResult{}, nil
		}

		values := seriesValues(series)
		alpha := 2.0 / (float64(period) + 1)

		sma := stats.MovingAverage(period, values)
		ema := stats.ExpSmooth(alpha, values)

		return models.ForecastResult{
			SMA:      sma,
			EMA:      ema,
			Forecast: 0.4*sma + 0.6*ema,
		}, nil
	})
}
