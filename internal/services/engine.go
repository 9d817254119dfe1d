// Package services implements the analytics and forecasting engine. Every
// report is a stateless, read-only computation over rows pulled through the
// injected store.Repository; sparse data yields documented neutral results
// while store failures propagate to the caller.
package services

import (
	"log/slog"
	"time"

	"pos-analytics/internal/config"
	"pos-analytics/internal/models"
	"pos-analytics/internal/store"
)

const (
	defaultTrendDays     = 30
	defaultForecastDays  = 7
	defaultDemandPeriods = 7

	// Slope magnitude below which a revenue trend reads as flat.
	trendSlopeThreshold = 0.01

	// ABC cumulative revenue share cutoffs.
	classACutoff = 70.0
	classBCutoff = 90.0

	// Season length for the demand forecast, in days.
	seasonLength = 7

	// Demand window feeding the EOQ calculation, in days.
	eoqWindowDays = 30
)

type Engine struct {
	repo   store.Repository
	cfg    config.AnalyticsConfig
	logger *slog.Logger
	cache  *resultCache
}

func NewEngine(repo store.Repository, cfg config.AnalyticsConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
		cache:  newResultCache(cfg.CacheTTL),
	}
}

// Stats reports engine internals for the admin surface.
func (e *Engine) Stats() map[string]any {
	return map[string]any{
		"cache_entries": e.cache.size(),
		"cache_ttl":     e.cfg.CacheTTL.String(),
	}
}

func (e *Engine) now() time.Time {
	return time.Now().UTC()
}

func seriesValues(series []models.TimeSeriesPoint) []float64 {
	values := make([]float64, len(series))
	for i, point := range series {
		values[i] = point.Value
	}
	return values
}

func daysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}
