package server

import (
	"log/slog"
	"net/http"

	"pos-analytics/internal/handlers"
	"pos-analytics/internal/services"
)

type Server struct {
	engine      *services.Engine
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

func NewServer(engine *services.Engine, logger *slog.Logger) *Server {
	s := &Server{
		engine:      engine,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(engine, logger),
		sseHandlers: handlers.NewSSEHandlers(engine, logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST report endpoints, company-scoped
	s.mux.HandleFunc("GET /api/companies/{company}/trend", s.apiHandlers.HandleSalesTrend)
	s.mux.HandleFunc("GET /api/companies/{company}/forecast", s.apiHandlers.HandleMovingAverage)
	s.mux.HandleFunc("GET /api/companies/{company}/inventory/abc", s.apiHandlers.HandleABCClassification)
	s.mux.HandleFunc("GET /api/companies/{company}/inventory/{product}/eoq", s.apiHandlers.HandleEOQ)
	s.mux.HandleFunc("GET /api/companies/{company}/inventory/{product}/demand", s.apiHandlers.HandleDemandForecast)
	s.mux.HandleFunc("GET /api/companies/{company}/customers/rfm", s.apiHandlers.HandleRFMSegments)
	s.mux.HandleFunc("GET /api/companies/{company}/customers/{customer}/clv", s.apiHandlers.HandleCLV)
	s.mux.HandleFunc("GET /api/companies/{company}/customers/{customer}/churn", s.apiHandlers.HandleChurnRisk)
	s.mux.HandleFunc("GET /api/companies/{company}/profitability", s.apiHandlers.HandleProfitability)

	// Datastar SSE dashboard stream
	s.mux.HandleFunc("GET /sse/companies/{company}/dashboard", s.sseHandlers.HandleDashboard)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
