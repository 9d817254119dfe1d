package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pos-analytics/internal/config"
	"pos-analytics/internal/models"
	"pos-analytics/internal/server"
	"pos-analytics/internal/services"
	"pos-analytics/internal/store/memory"
)

func newTestServer() *server.Server {
	s := memory.New()
	product := s.AddProduct(models.Product{
		CompanyID: "acme",
		Name:      "Laptop",
		Category:  "electronics",
		Price:     999.99,
		Cost:      600,
		Active:    true,
	})
	s.AddCustomer(models.Customer{CompanyID: "acme", ID: "u1", Name: "First Customer"})
	for i := 0; i < 10; i++ {
		s.AddTransaction(models.Transaction{
			CompanyID:  "acme",
			CustomerID: "u1",
			Timestamp:  time.Now().UTC().AddDate(0, 0, -i),
			Status:     models.StatusCompleted,
			Total:      999.99,
			Items:      []models.LineItem{{ProductID: product.ID, UnitPrice: 999.99, Quantity: 1}},
		})
	}

	cfg := config.AnalyticsConfig{
		OrderCost:          100,
		HoldingCostRate:    0.25,
		CLVHorizonYears:    3,
		MinLifespanYears:   0.25,
		LeadTimeDays:       7,
		SafetyStockDays:    3,
		ProfitWindowDays:   30,
		DemandLookbackDays: 60,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return server.NewServer(services.NewEngine(s, cfg, logger), logger)
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/api/companies/acme/trend", http.StatusOK, "application/json"},
		{"/api/companies/acme/forecast", http.StatusOK, "application/json"},
		{"/api/companies/acme/inventory/abc", http.StatusOK, "application/json"},
		{"/api/companies/acme/customers/rfm", http.StatusOK, "application/json"},
		{"/api/companies/acme/customers/u1/clv", http.StatusOK, "application/json"},
		{"/api/companies/acme/customers/u1/churn", http.StatusOK, "application/json"},
		{"/api/companies/acme/profitability", http.StatusOK, "application/json"},
		{"/sse/companies/acme/dashboard", http.StatusOK, "text/event-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.expectedStatus, w.Body.String())
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

func TestServer_UnknownProductRoutes(t *testing.T) {
	srv := newTestServer()

	for _, path := range []string{
		"/api/companies/acme/inventory/ghost/eoq",
		"/api/companies/acme/inventory/ghost/demand",
	} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", w.Code)
			}

			var response map[string]any
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if success, ok := response["success"].(bool); !ok || success {
				t.Error("expected success=false in error envelope")
			}
		})
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		method string
		path   string
	}{
		{"POST", "/api/companies/acme/trend"},
		{"DELETE", "/health"},
		{"PUT", "/sse/companies/acme/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
			}
		})
	}
}

func TestOpenStore(t *testing.T) {
	t.Run("memory driver", func(t *testing.T) {
		repo, closeFn, err := openStore(config.StoreConfig{Driver: "memory"})
		if err != nil {
			t.Fatalf("openStore() error = %v", err)
		}
		if repo == nil {
			t.Fatal("openStore() returned nil repository")
		}
		if err := closeFn(context.Background()); err != nil {
			t.Errorf("close hook error = %v", err)
		}
	})

	t.Run("sqlite driver", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pos.db")
		repo, closeFn, err := openStore(config.StoreConfig{Driver: "sqlite", Path: path})
		if err != nil {
			t.Fatalf("openStore() error = %v", err)
		}
		if _, err := repo.Products(context.Background(), "acme"); err != nil {
			t.Errorf("fresh store query error = %v", err)
		}
		if err := closeFn(context.Background()); err != nil {
			t.Errorf("close hook error = %v", err)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		if _, _, err := openStore(config.StoreConfig{Driver: "oracle"}); err == nil {
			t.Error("expected error for unknown driver")
		}
	})
}
