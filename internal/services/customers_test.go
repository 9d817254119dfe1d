package services

import (
	"context"
	"fmt"
	"testing"

	"pos-analytics/internal/models"
	"pos-analytics/internal/store/memory"
)

// seedRFMCohort creates 10 customers with strictly distinct recency,
// frequency, and monetary values. Customer i makes i+1 purchases of (i+1)*10
// each, the most recent 10-i days ago.
func seedRFMCohort(s *memory.Store) {
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("cust-%02d", i)
		s.AddCustomer(models.Customer{CompanyID: testCompany, ID: id, Name: fmt.Sprintf("Customer %d", i)})
		for j := 0; j <= i; j++ {
			s.AddTransaction(completedSale(testCompany, id, daysAgo(10-i+j*7), float64((i+1)*10)))
		}
	}
}

func TestSegmentCustomers_QuintileSpread(t *testing.T) {
	s := memory.New()
	seedRFMCohort(s)
	e := newTestEngine(t, s)

	scores, err := e.SegmentCustomers(context.Background(), testCompany)
	if err != nil {
		t.Fatalf("SegmentCustomers() error = %v", err)
	}
	if len(scores) != 10 {
		t.Fatalf("got %d scores, want 10", len(scores))
	}

	// With 10 strictly distinct customers every quintile holds exactly two
	// per dimension.
	recencyCounts := make(map[int]int)
	frequencyCounts := make(map[int]int)
	monetaryCounts := make(map[int]int)
	for _, score := range scores {
		recencyCounts[score.Recency]++
		frequencyCounts[score.Frequency]++
		monetaryCounts[score.Monetary]++

		if score.Combined < 3 || score.Combined > 15 {
			t.Errorf("customer %s combined score %d outside [3,15]", score.CustomerID, score.Combined)
		}
		if score.Combined != score.Recency+score.Frequency+score.Monetary {
			t.Errorf("customer %s combined %d != sum of dimensions", score.CustomerID, score.Combined)
		}
	}
	for q := 1; q <= 5; q++ {
		if recencyCounts[q] != 2 {
			t.Errorf("recency quintile %d holds %d customers, want 2", q, recencyCounts[q])
		}
		if frequencyCounts[q] != 2 {
			t.Errorf("frequency quintile %d holds %d customers, want 2", q, frequencyCounts[q])
		}
		if monetaryCounts[q] != 2 {
			t.Errorf("monetary quintile %d holds %d customers, want 2", q, monetaryCounts[q])
		}
	}
}

func TestSegmentCustomers_SegmentIsFunctionOfCombined(t *testing.T) {
	tests := []struct {
		combined int
		want     string
	}{
		{15, "Champions"},
		{12, "Champions"},
		{11, "Loyal Customers"},
		{10, "Loyal Customers"},
		{9, "Potential Loyalists"},
		{8, "Potential Loyalists"},
		{7, "At Risk"},
		{6, "At Risk"},
		{5, "Lost"},
		{3, "Lost"},
	}

	for _, tt := range tests {
		if got := segmentFor(tt.combined); got != tt.want {
			t.Errorf("segmentFor(%d) = %q, want %q", tt.combined, got, tt.want)
		}
	}
}

func TestSegmentCustomers_BestCustomerIsChampion(t *testing.T) {
	s := memory.New()
	seedRFMCohort(s)
	e := newTestEngine(t, s)

	scores, err := e.SegmentCustomers(context.Background(), testCompany)
	if err != nil {
		t.Fatalf("SegmentCustomers() error = %v", err)
	}

	// cust-09: most purchases, highest spend, most recent. Output is sorted
	// by combined score descending.
	best := scores[0]
	if best.CustomerID != "cust-09" {
		t.Errorf("top customer = %s, want cust-09", best.CustomerID)
	}
	if best.Recency != 5 || best.Frequency != 5 || best.Monetary != 5 {
		t.Errorf("top customer quintiles = %d/%d/%d, want 5/5/5", best.Recency, best.Frequency, best.Monetary)
	}
	if best.Segment != "Champions" {
		t.Errorf("top customer segment = %q, want Champions", best.Segment)
	}
}

func TestSegmentCustomers_EmptyCohort(t *testing.T) {
	s := memory.New()
	// A customer record without any completed purchases is not in the cohort.
	s.AddCustomer(models.Customer{CompanyID: testCompany, ID: "window-shopper", Name: "No Sale"})
	e := newTestEngine(t, s)

	scores, err := e.SegmentCustomers(context.Background(), testCompany)
	if err != nil {
		t.Fatalf("SegmentCustomers() error = %v", err)
	}
	if len(scores) != 0 {
		t.Errorf("got %d scores, want empty cohort", len(scores))
	}
}

func TestCustomerLifetimeValue(t *testing.T) {
	t.Run("one year of history", func(t *testing.T) {
		s := memory.New()
		// 4 purchases of 100 spanning exactly 365 days: lifespan 1y,
		// frequency 4/y, CLV = 100 * 4 * 3.
		for _, day := range []int{365, 244, 122, 0} {
			s.AddTransaction(completedSale(testCompany, "c1", daysAgo(day), 100))
		}
		e := newTestEngine(t, s)

		clv, err := e.CustomerLifetimeValue(context.Background(), testCompany, "c1")
		if err != nil {
			t.Fatalf("CustomerLifetimeValue() error = %v", err)
		}
		if clv != 1200 {
			t.Errorf("CLV = %v, want 1200", clv)
		}
	})

	t.Run("new customer hits lifespan floor", func(t *testing.T) {
		s := memory.New()
		// Two purchases one day apart: floor lifts lifespan to 0.25y, so
		// frequency = 8/y and CLV = 100 * 8 * 3.
		s.AddTransaction(completedSale(testCompany, "c2", daysAgo(1), 100))
		s.AddTransaction(completedSale(testCompany, "c2", daysAgo(0), 100))
		e := newTestEngine(t, s)

		clv, err := e.CustomerLifetimeValue(context.Background(), testCompany, "c2")
		if err != nil {
			t.Fatalf("CustomerLifetimeValue() error = %v", err)
		}
		if clv != 2400 {
			t.Errorf("CLV = %v, want 2400", clv)
		}
	})

	t.Run("no purchases", func(t *testing.T) {
		e := newTestEngine(t, memory.New())

		clv, err := e.CustomerLifetimeValue(context.Background(), testCompany, "ghost")
		if err != nil {
			t.Fatalf("CustomerLifetimeValue() error = %v", err)
		}
		if clv != 0 {
			t.Errorf("CLV = %v, want 0", clv)
		}
	})
}

func TestChurnRisk_SinglePurchaseIsNeutral(t *testing.T) {
	s := memory.New()
	s.AddTransaction(completedSale(testCompany, "c1", daysAgo(200), 9999))
	e := newTestEngine(t, s)

	score, err := e.ChurnRisk(context.Background(), testCompany, "c1")
	if err != nil {
		t.Fatalf("ChurnRisk() error = %v", err)
	}
	if score != churnNeutralScore {
		t.Errorf("single-purchase churn = %d, want exactly %d", score, churnNeutralScore)
	}
}

func TestChurnRisk_Bounds(t *testing.T) {
	tests := []struct {
		name string
		seed func(s *memory.Store)
	}{
		{
			name: "lapsed low-value customer",
			seed: func(s *memory.Store) {
				s.AddTransaction(completedSale(testCompany, "c1", daysAgo(110), 10))
				s.AddTransaction(completedSale(testCompany, "c1", daysAgo(100), 10))
			},
		},
		{
			name: "active high-value customer",
			seed: func(s *memory.Store) {
				for i := 0; i < 10; i++ {
					s.AddTransaction(completedSale(testCompany, "c1", daysAgo(90-i*10), 2000))
				}
			},
		},
		{
			name: "same-day purchases",
			seed: func(s *memory.Store) {
				s.AddTransaction(completedSale(testCompany, "c1", daysAgo(30), 50))
				s.AddTransaction(completedSale(testCompany, "c1", daysAgo(30), 50))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := memory.New()
			tt.seed(s)
			e := newTestEngine(t, s)

			score, err := e.ChurnRisk(context.Background(), testCompany, "c1")
			if err != nil {
				t.Fatalf("ChurnRisk() error = %v", err)
			}
			if score < 0 || score > 100 {
				t.Errorf("churn score %d outside [0,100]", score)
			}
		})
	}
}

func TestChurnRisk_LapsedScoresHigherThanActive(t *testing.T) {
	lapsed := memory.New()
	lapsed.AddTransaction(completedSale(testCompany, "c1", daysAgo(110), 10))
	lapsed.AddTransaction(completedSale(testCompany, "c1", daysAgo(100), 10))

	active := memory.New()
	for i := 0; i < 10; i++ {
		active.AddTransaction(completedSale(testCompany, "c1", daysAgo(90-i*10), 2000))
	}

	lapsedScore, err := newTestEngine(t, lapsed).ChurnRisk(context.Background(), testCompany, "c1")
	if err != nil {
		t.Fatalf("ChurnRisk(lapsed) error = %v", err)
	}
	activeScore, err := newTestEngine(t, active).ChurnRisk(context.Background(), testCompany, "c1")
	if err != nil {
		t.Fatalf("ChurnRisk(active) error = %v", err)
	}

	if lapsedScore <= activeScore {
		t.Errorf("lapsed score %d should exceed active score %d", lapsedScore, activeScore)
	}
}
