package services

import (
	"context"
	"testing"

	"pos-analytics/internal/models"
	"pos-analytics/internal/store/memory"
)

func seedDailyDemand(s *memory.Store, productID string, dailyUnits []int) {
	n := len(dailyUnits)
	for i, qty := range dailyUnits {
		if qty == 0 {
			continue
		}
		s.AddTransaction(completedSale(testCompany, "", daysAgo(n-1-i), float64(qty*5),
			models.LineItem{ProductID: productID, UnitPrice: 5, Quantity: qty}))
	}
}

func TestForecastDemand_InsufficientHistory(t *testing.T) {
	tests := []struct {
		name    string
		days    int
		periods int
	}{
		{"no history", 0, 7},
		{"six days", 6, 7},
		{"six days custom horizon", 6, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := memory.New()
			p := s.AddProduct(models.Product{CompanyID: testCompany, Name: "Beans", Category: "coffee", Price: 15, Cost: 6, Active: true})
			units := make([]int, tt.days)
			for i := range units {
				units[i] = 3
			}
			seedDailyDemand(s, p.ID, units)
			e := newTestEngine(t, s)

			forecast, err := e.ForecastDemand(context.Background(), testCompany, p.ID, tt.periods)
			if err != nil {
				t.Fatalf("ForecastDemand() error = %v", err)
			}
			if len(forecast) != tt.periods {
				t.Fatalf("forecast length = %d, want %d", len(forecast), tt.periods)
			}
			for i, v := range forecast {
				if v != 0 {
					t.Errorf("forecast[%d] = %d, want 0 for sparse history", i, v)
				}
			}
		})
	}
}

func TestForecastDemand_FlatDemand(t *testing.T) {
	s := memory.New()
	p := s.AddProduct(models.Product{CompanyID: testCompany, Name: "Beans", Category: "coffee", Price: 15, Cost: 6, Active: true})
	units := make([]int, 14)
	for i := range units {
		units[i] = 10
	}
	seedDailyDemand(s, p.ID, units)
	e := newTestEngine(t, s)

	forecast, err := e.ForecastDemand(context.Background(), testCompany, p.ID, 7)
	if err != nil {
		t.Fatalf("ForecastDemand() error = %v", err)
	}
	if len(forecast) != 7 {
		t.Fatalf("forecast length = %d, want 7", len(forecast))
	}
	// Flat history: level 10, trend 0, seasonal index 1 everywhere.
	for i, v := range forecast {
		if v != 10 {
			t.Errorf("forecast[%d] = %d, want 10", i, v)
		}
	}
}

func TestForecastDemand_NeverNegative(t *testing.T) {
	s := memory.New()
	p := s.AddProduct(models.Product{CompanyID: testCompany, Name: "Beans", Category: "coffee", Price: 15, Cost: 6, Active: true})
	// Sharply declining demand would extrapolate negative without the floor.
	seedDailyDemand(s, p.ID, []int{50, 30, 20, 10, 5, 2, 1, 1})
	e := newTestEngine(t, s)

	forecast, err := e.ForecastDemand(context.Background(), testCompany, p.ID, 14)
	if err != nil {
		t.Fatalf("ForecastDemand() error = %v", err)
	}
	for i, v := range forecast {
		if v < 0 {
			t.Errorf("forecast[%d] = %d, must be floored at 0", i, v)
		}
	}
}

func TestForecastDemand_DefaultHorizon(t *testing.T) {
	s := memory.New()
	p := s.AddProduct(models.Product{CompanyID: testCompany, Name: "Beans", Category: "coffee", Price: 15, Cost: 6, Active: true})
	e := newTestEngine(t, s)

	forecast, err := e.ForecastDemand(context.Background(), testCompany, p.ID, 0)
	if err != nil {
		t.Fatalf("ForecastDemand() error = %v", err)
	}
	if len(forecast) != defaultDemandPeriods {
		t.Errorf("forecast length = %d, want default %d", len(forecast), defaultDemandPeriods)
	}
}
