package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"pos-analytics/internal/models"
)

// ClassifyInventory ranks active products by their revenue contribution and
// partitions them into A/B/C tiers at 70% and 90% cumulative revenue share.
// A company with no revenue gets an empty classification.
func (e *Engine) ClassifyInventory(ctx context.Context, companyID string) (models.ABCClassification, error) {
	key := "abc:" + companyID
	return cached(e.cache, key, func() (models.ABCClassification, error) {
		products, err := e.repo.Products(ctx, companyID)
		if err != nil {
			return models.ABCClassification{}, fmt.Errorf("products: %w", err)
		}
		txs, err := e.repo.TransactionsSince(ctx, companyID, time.Time{})
		if err != nil {
			return models.ABCClassification{}, fmt.Errorf("transactions: %w", err)
		}

		revenue := make(map[string]float64, len(products))
		known := make(map[string]bool, len(products))
		for _, p := range products {
			known[p.ID] = true
		}
		for _, tx := range txs {
			for _, item := range tx.Items {
				if known[item.ProductID] {
					revenue[item.ProductID] += item.UnitPrice * float64(item.Quantity)
				}
			}
		}

		var total float64
		for _, r := range revenue {
			total += r
		}

		result := models.ABCClassification{
			A: []models.ABCEntry{},
			B: []models.ABCEntry{},
			C: []models.ABCEntry{},
		}
		if total <= 0 {
			return result, nil
		}

		entries := make([]models.ABCEntry, 0, len(products))
		for _, p := range products {
			entries = append(entries, models.ABCEntry{
				ProductID:    p.ID,
				Name:         p.Name,
				Revenue:      revenue[p.ID],
				RevenueShare: revenue[p.ID] / total * 100,
			})
		}
		slices.SortFunc(entries, func(a, b models.ABCEntry) int {
			if a.Revenue > b.Revenue {
				return -1
			}
			if a.Revenue < b.Revenue {
				return 1
			}
			return 0
		})

		var cumulative float64
		for _, entry := range entries {
			cumulative += entry.Revenue
			cumulativeShare := cumulative / total * 100
			switch {
			case cumulativeShare <= classACutoff:
				entry.Class = models.ClassA
				result.A = append(result.A, entry)
			case cumulativeShare <= classBCutoff:
				entry.Class = models.ClassB
				result.B = append(result.B, entry)
			default:
				entry.Class = models.ClassC
				result.C = append(result.C, entry)
			}
		}
		return result, nil
	})
}

// EconomicOrderQuantity derives the cost-minimizing order size and reorder
// point for one product from its recent demand. Zero demand or a zero-cost
// product yields the neutral zero result rather than a division error.
func (e *Engine) EconomicOrderQuantity(ctx context.Context, companyID, productID string) (models.EOQResult, error) {
	product, err := e.repo.Product(ctx, companyID, productID)
	if err != nil {
		return models.EOQResult{}, fmt.Errorf("product: %w", err)
	}

	now := e.now()
	series, err := e.repo.DailyUnits(ctx, companyID, productID, now.AddDate(0, 0, -eoqWindowDays), now)
	if err != nil {
		return models.EOQResult{}, fmt.Errorf("daily units: %w", err)
	}

	var totalUnits float64
	for _, point := range series {
		totalUnits += point.Value
	}
	dailyDemand := totalUnits / float64(eoqWindowDays)

	if dailyDemand <= 0 || product.Cost <= 0 {
		return models.EOQResult{}, nil
	}

	annualDemand := dailyDemand * 365
	holdingCost := product.Cost * e.cfg.HoldingCostRate
	eoq := math.Sqrt(2 * annualDemand * e.cfg.OrderCost / holdingCost)
	reorder := dailyDemand * float64(e.cfg.LeadTimeDays+e.cfg.SafetyStockDays)

	return models.EOQResult{
		OrderQuantity: int(math.Round(eoq)),
		ReorderPoint:  int(math.Round(reorder)),
		DailyDemand:   dailyDemand,
	}, nil
}
