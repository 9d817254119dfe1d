package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"pos-analytics/internal/models"
)

const topProductMargins = 20

// ProfitMargins computes margin percentages over the recent window: overall,
// per category, and for the top products by units sold. Each line item's sale
// price is joined against the product's cost; lines referencing products that
// no longer exist are excluded from every aggregate.
func (e *Engine) ProfitMargins(ctx context.Context, companyID string) (models.ProfitReport, error) {
	key := "profit:" + companyID
	return cached(e.cache, key, func() (models.ProfitReport, error) {
		now := e.now()
		txs, err := e.repo.TransactionsSince(ctx, companyID, now.AddDate(0, 0, -e.cfg.ProfitWindowDays))
		if err != nil {
			return models.ProfitReport{}, fmt.Errorf("transactions: %w", err)
		}
		products, err := e.repo.Products(ctx, companyID)
		if err != nil {
			return models.ProfitReport{}, fmt.Errorf("products: %w", err)
		}

		byID := make(map[string]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		var totalRevenue, totalCost float64
		categories := make(map[string]*models.CategoryMargin)
		perProduct := make(map[string]*models.ProductMargin)
		skipped := 0

		for _, tx := range txs {
			for _, item := range tx.Items {
				product, ok := byID[item.ProductID]
				if !ok {
					skipped++
					continue
				}
				revenue := item.UnitPrice * float64(item.Quantity)
				cost := product.Cost * float64(item.Quantity)
				totalRevenue += revenue
				totalCost += cost

				cat, ok := categories[product.Category]
				if !ok {
					cat = &models.CategoryMargin{Category: product.Category}
					categories[product.Category] = cat
				}
				cat.Revenue += revenue
				cat.Cost += cost

				pm, ok := perProduct[product.ID]
				if !ok {
					pm = &models.ProductMargin{ProductID: product.ID, Name: product.Name}
					perProduct[product.ID] = pm
				}
				pm.UnitsSold += item.Quantity
				pm.Revenue += revenue
				pm.Cost += cost
			}
		}
		if skipped > 0 {
			e.logger.Warn("excluded line items referencing missing products",
				"company_id", companyID,
				"lines", skipped,
			)
		}

		report := models.ProfitReport{
			Revenue:       totalRevenue,
			Cost:          totalCost,
			OverallMargin: marginPct(totalRevenue, totalCost),
			ByCategory:    []models.CategoryMargin{},
			ByProduct:     []models.ProductMargin{},
		}

		for _, cat := range categories {
			cat.Margin = marginPct(cat.Revenue, cat.Cost)
			report.ByCategory = append(report.ByCategory, *cat)
		}
		slices.SortFunc(report.ByCategory, func(a, b models.CategoryMargin) int {
			if a.Revenue > b.Revenue {
				return -1
			}
			if a.Revenue < b.Revenue {
				return 1
			}
			return strings.Compare(a.Category, b.Category)
		})

		for _, pm := range perProduct {
			pm.Margin = marginPct(pm.Revenue, pm.Cost)
			report.ByProduct = append(report.ByProduct, *pm)
		}
		slices.SortFunc(report.ByProduct, func(a, b models.ProductMargin) int {
			if a.UnitsSold != b.UnitsSold {
				return b.UnitsSold - a.UnitsSold
			}
			return strings.Compare(a.ProductID, b.ProductID)
		})
		if len(report.ByProduct) > topProductMargins {
			report.ByProduct = report.ByProduct[:topProductMargins]
		}

		return report, nil
	})
}

func marginPct(revenue, cost float64) float64 {
	if revenue == 0 {
		return 0
	}
	return (revenue - cost) / revenue * 100
}
