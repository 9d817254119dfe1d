// Package store defines the read-side query boundary the analytics engine
// depends on. Backends materialize rows and decode line items before handing
// them over; the engine never sees storage-specific encodings.
package store

import (
	"context"
	"errors"
	"time"

	"pos-analytics/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrInvalidCompany = errors.New("company id is required")
)

// Repository is the query interface consumed by the analytics engine.
//
// Series methods return daily buckets in ascending date order with inactive
// days absent. Only completed transactions contribute to any result. A zero
// `from` means unbounded history. Store failures are returned as-is; the
// engine propagates them rather than substituting neutral defaults.
type Repository interface {
	// DailyRevenue aggregates completed transaction totals per calendar day.
	DailyRevenue(ctx context.Context, companyID string, from, to time.Time) ([]models.TimeSeriesPoint, error)

	// DailyUnits aggregates units sold per calendar day for one product.
	DailyUnits(ctx context.Context, companyID, productID string, from, to time.Time) ([]models.TimeSeriesPoint, error)

	// TransactionsSince returns completed transactions with decoded line
	// items, ascending by timestamp.
	TransactionsSince(ctx context.Context, companyID string, from time.Time) ([]models.Transaction, error)

	// CustomerTransactions returns one customer's completed transactions,
	// ascending by timestamp.
	CustomerTransactions(ctx context.Context, companyID, customerID string) ([]models.Transaction, error)

	// Products returns the company's active products.
	Products(ctx context.Context, companyID string) ([]models.Product, error)

	// Product returns one product or ErrNotFound.
	Product(ctx context.Context, companyID, productID string) (models.Product, error)

	// Customers returns the company's customers.
	Customers(ctx context.Context, companyID string) ([]models.Customer, error)
}
