// Package memory is an in-memory Repository used by tests and the dev server.
// It favors obvious correctness over speed: every query walks the raw
// transaction slice and aggregates on the fly.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"pos-analytics/internal/models"
	"pos-analytics/internal/store"
)

type Store struct {
	mu           sync.RWMutex
	transactions map[string][]models.Transaction // keyed by company id
	products     map[string][]models.Product
	customers    map[string][]models.Customer
}

func New() *Store {
	return &Store{
		transactions: make(map[string][]models.Transaction),
		products:     make(map[string][]models.Product),
		customers:    make(map[string][]models.Customer),
	}
}

// AddTransaction inserts a transaction, assigning an id when absent.
func (s *Store) AddTransaction(tx models.Transaction) models.Transaction {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[tx.CompanyID] = append(s.transactions[tx.CompanyID], tx)
	return tx
}

// AddProduct inserts a product, assigning an id when absent.
func (s *Store) AddProduct(p models.Product) models.Product {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.CompanyID] = append(s.products[p.CompanyID], p)
	return p
}

// AddCustomer inserts a customer, assigning an id when absent.
func (s *Store) AddCustomer(c models.Customer) models.Customer {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.CompanyID] = append(s.customers[c.CompanyID], c)
	return c
}

func (s *Store) DailyRevenue(ctx context.Context, companyID string, from, to time.Time) ([]models.TimeSeriesPoint, error) {
	if err := validate(ctx, companyID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	buckets := make(map[time.Time]float64)
	for _, tx := range s.transactions[companyID] {
		if tx.Status != models.StatusCompleted || !inWindow(tx.Timestamp, from, to) {
			continue
		}
		buckets[dayOf(tx.Timestamp)] += tx.Total
	}
	return toSeries(buckets), nil
}

func (s *Store) DailyUnits(ctx context.Context, companyID, productID string, from, to time.Time) ([]models.TimeSeriesPoint, error) {
	if err := validate(ctx, companyID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	buckets := make(map[time.Time]float64)
	for _, tx := range s.transactions[companyID] {
		if tx.Status != models.StatusCompleted || !inWindow(tx.Timestamp, from, to) {
			continue
		}
		for _, item := range tx.Items {
			if item.ProductID == productID {
				buckets[dayOf(tx.Timestamp)] += float64(item.Quantity)
			}
		}
	}
	return toSeries(buckets), nil
}

func (s *Store) TransactionsSince(ctx context.Context, companyID string, from time.Time) ([]models.Transaction, error) {
	if err := validate(ctx, companyID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Transaction
	for _, tx := range s.transactions[companyID] {
		if tx.Status != models.StatusCompleted {
			continue
		}
		if !from.IsZero() && tx.Timestamp.Before(from) {
			continue
		}
		result = append(result, tx)
	}
	sortByTime(result)
	return result, nil
}

func (s *Store) CustomerTransactions(ctx context.Context, companyID, customerID string) ([]models.Transaction, error) {
	if err := validate(ctx, companyID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Transaction
	for _, tx := range s.transactions[companyID] {
		if tx.Status == models.StatusCompleted && tx.CustomerID == customerID {
			result = append(result, tx)
		}
	}
	sortByTime(result)
	return result, nil
}

func (s *Store) Products(ctx context.Context, companyID string) ([]models.Product, error) {
	if err := validate(ctx, companyID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Product
	for _, p := range s.products[companyID] {
		if p.Active {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *Store) Product(ctx context.Context, companyID, productID string) (models.Product, error) {
	if err := validate(ctx, companyID); err != nil {
		return models.Product{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products[companyID] {
		if p.ID == productID {
			return p, nil
		}
	}
	return models.Product{}, store.ErrNotFound
}

func (s *Store) Customers(ctx context.Context, companyID string) ([]models.Customer, error) {
	if err := validate(ctx, companyID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.customers[companyID]), nil
}

func validate(ctx context.Context, companyID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if companyID == "" {
		return store.ErrInvalidCompany
	}
	return nil
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func inWindow(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}

func toSeries(buckets map[time.Time]float64) []models.TimeSeriesPoint {
	series := make([]models.TimeSeriesPoint, 0, len(buckets))
	for date, value := range buckets {
		series = append(series, models.TimeSeriesPoint{Date: date, Value: value})
	}
	slices.SortFunc(series, func(a, b models.TimeSeriesPoint) int {
		return a.Date.Compare(b.Date)
	})
	return series
}

func sortByTime(txs []models.Transaction) {
	slices.SortFunc(txs, func(a, b models.Transaction) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}
