package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"pos-analytics/internal/models"
)

// Segment thresholds over the combined RFM score (3-15).
const (
	segmentChampions  = 12
	segmentLoyal      = 10
	segmentPotential  = 8
	segmentAtRisk     = 6
	churnNeutralScore = 50
)

type customerActivity struct {
	customerID string
	recency    float64 // days since last purchase
	frequency  int
	monetary   float64
}

// SegmentCustomers scores every customer with at least one completed purchase
// on recency, frequency, and monetary value. Quintiles come from rank
// position within the cohort of this call, so scores are relative, never
// absolute thresholds.
func (e *Engine) SegmentCustomers(ctx context.Context, companyID string) ([]models.RFMScore, error) {
	key := "rfm:" + companyID
	return cached(e.cache, key, func() ([]models.RFMScore, error) {
		txs, err := e.repo.TransactionsSince(ctx, companyID, time.Time{})
		if err != nil {
			return nil, fmt.Errorf("transactions: %w", err)
		}

		now := e.now()
		byCustomer := make(map[string]*customerActivity)
		for _, tx := range txs {
			if tx.CustomerID == "" {
				continue
			}
			activity, ok := byCustomer[tx.CustomerID]
			if !ok {
				activity = &customerActivity{customerID: tx.CustomerID, recency: math.MaxFloat64}
				byCustomer[tx.CustomerID] = activity
			}
			activity.frequency++
			activity.monetary += tx.Total
			if recency := daysBetween(tx.Timestamp, now); recency < activity.recency {
				activity.recency = recency
			}
		}
		if len(byCustomer) == 0 {
			return []models.RFMScore{}, nil
		}

		cohort := make([]*customerActivity, 0, len(byCustomer))
		for _, activity := range byCustomer {
			cohort = append(cohort, activity)
		}

		// Rank each dimension independently; quintile is a pure function of
		// rank position. Recency is inverted: the most recent buyer ranks
		// last and therefore scores highest.
		recencyScore := rankQuintiles(cohort, func(a, b *customerActivity) int {
			if a.recency > b.recency {
				return -1
			}
			if a.recency < b.recency {
				return 1
			}
			return strings.Compare(a.customerID, b.customerID)
		})
		frequencyScore := rankQuintiles(cohort, func(a, b *customerActivity) int {
			if a.frequency != b.frequency {
				return a.frequency - b.frequency
			}
			return strings.Compare(a.customerID, b.customerID)
		})
		monetaryScore := rankQuintiles(cohort, func(a, b *customerActivity) int {
			if a.monetary < b.monetary {
				return -1
			}
			if a.monetary > b.monetary {
				return 1
			}
			return strings.Compare(a.customerID, b.customerID)
		})

		names, err := e.customerNames(ctx, companyID)
		if err != nil {
			return nil, err
		}

		scores := make([]models.RFMScore, 0, len(cohort))
		for _, activity := range cohort {
			r := recencyScore[activity.customerID]
			f := frequencyScore[activity.customerID]
			m := monetaryScore[activity.customerID]
			combined := r + f + m
			scores = append(scores, models.RFMScore{
				CustomerID: activity.customerID,
				Name:       names[activity.customerID],
				Recency:    r,
				Frequency:  f,
				Monetary:   m,
				Combined:   combined,
				Segment:    segmentFor(combined),
			})
		}
		slices.SortFunc(scores, func(a, b models.RFMScore) int {
			if a.Combined != b.Combined {
				return b.Combined - a.Combined
			}
			return strings.Compare(a.CustomerID, b.CustomerID)
		})
		return scores, nil
	})
}

func rankQuintiles(cohort []*customerActivity, cmp func(a, b *customerActivity) int) map[string]int {
	ordered := slices.Clone(cohort)
	slices.SortFunc(ordered, cmp)

	n := float64(len(ordered))
	scores := make(map[string]int, len(ordered))
	for i, activity := range ordered {
		rank := float64(i + 1)
		scores[activity.customerID] = int(math.Ceil(rank / n * 5))
	}
	return scores
}

func segmentFor(combined int) string {
	switch {
	case combined >= segmentChampions:
		return "Champions"
	case combined >= segmentLoyal:
		return "Loyal Customers"
	case combined >= segmentPotential:
		return "Potential Loyalists"
	case combined >= segmentAtRisk:
		return "At Risk"
	default:
		return "Lost"
	}
}

func (e *Engine) customerNames(ctx context.Context, companyID string) (map[string]string, error) {
	customers, err := e.repo.Customers(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("customers: %w", err)
	}
	names := make(map[string]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}
	return names, nil
}

// CustomerLifetimeValue projects a customer's future value from purchase
// history: average purchase value times yearly purchase frequency over the
// configured projection horizon. A customer with no completed purchases is
// worth 0. The lifespan floor keeps brand-new customers from dividing by a
// near-zero observation span.
func (e *Engine) CustomerLifetimeValue(ctx context.Context, companyID, customerID string) (float64, error) {
	txs, err := e.repo.CustomerTransactions(ctx, companyID, customerID)
	if err != nil {
		return 0, fmt.Errorf("customer transactions: %w", err)
	}
	if len(txs) == 0 {
		return 0, nil
	}

	var total float64
	for _, tx := range txs {
		total += tx.Total
	}
	count := float64(len(txs))
	avgPurchase := total / count

	spanDays := daysBetween(txs[0].Timestamp, txs[len(txs)-1].Timestamp)
	lifespanYears := spanDays / 365
	if lifespanYears < e.cfg.MinLifespanYears {
		lifespanYears = e.cfg.MinLifespanYears
	}

	frequency := count / lifespanYears
	return math.Round(avgPurchase * frequency * e.cfg.CLVHorizonYears), nil
}

// ChurnRisk scores the likelihood a customer stops purchasing, 0-100. The
// score needs at least two completed purchases to establish a cadence; below
// that it is the neutral 50.
func (e *Engine) ChurnRisk(ctx context.Context, companyID, customerID string) (int, error) {
	txs, err := e.repo.CustomerTransactions(ctx, companyID, customerID)
	if err != nil {
		return 0, fmt.Errorf("customer transactions: %w", err)
	}
	if len(txs) < 2 {
		return churnNeutralScore, nil
	}

	now := e.now()
	first := txs[0].Timestamp
	last := txs[len(txs)-1].Timestamp
	count := len(txs)

	var total float64
	for _, tx := range txs {
		total += tx.Total
	}

	avgGap := daysBetween(first, last) / float64(count-1)
	daysSinceLast := daysBetween(last, now)

	// All purchases on the same day: no cadence to compare against, treat
	// the recency signal as saturated.
	recencyFactor := 1.0
	if avgGap > 0 {
		recencyFactor = math.Min(daysSinceLast/(avgGap*2), 1)
	}
	frequencyFactor := 1 - math.Min(float64(count)/10, 1)
	monetaryFactor := 1 - math.Min(total/10000, 1)

	score := int(math.Round((0.5*recencyFactor + 0.3*frequencyFactor + 0.2*monetaryFactor) * 100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}
