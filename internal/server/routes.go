package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sovdash/internal/analysis"
	"sovdash/internal/config"
	"sovdash/internal/handlers"
	"sovdash/internal/handlers/api"
	"sovdash/internal/report"
)

// Deps are the services the routes are served from.
type Deps struct {
	Runner  *analysis.Runner
	Reports *report.Generator
	Brands  *config.YAMLConfig
	Store   RunStore
}

// RunStore is the run persistence the routes read from.
type RunStore interface {
	handlers.Pinger
	api.RunLister
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(deps Deps) {
	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(deps.Runner, s.Cfg, deps.Brands)
	probeHandler := handlers.NewProbeHandler(deps.Store)
	analysisHandler := api.NewAnalysisHandler(deps.Runner, deps.Brands, s.Cfg.AnalysisTimeout)
	reportHandler := api.NewReportHandler(deps.Reports, deps.Runner)
	healthHandler := api.NewHealthHandler(deps.Runner, deps.Brands, s.Cfg.AppVersion)
	runsHandler := api.NewRunsHandler(deps.Store)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Frontend
	s.App.Get("/", dashboardHandler.Index)

	// JSON API
	apiGroup := s.App.Group("/api")
	apiGroup.Get("/demo", analysisHandler.Demo)
	apiGroup.Post("/analyze", analysisHandler.Analyze)
	apiGroup.Post("/user-search", analysisHandler.UserSearch)
	apiGroup.Get("/analysis", analysisHandler.Latest)
	apiGroup.Get("/insights", analysisHandler.Insights)
	apiGroup.Get("/competitors", analysisHandler.Competitors)
	apiGroup.Get("/sov-breakdown", analysisHandler.SoVBreakdown)
	apiGroup.Get("/sentiment-analysis", analysisHandler.SentimentBreakdown)
	apiGroup.Get("/runs", runsHandler.List)

	apiGroup.Post("/generate-report", reportHandler.Generate)
	apiGroup.Get("/reports/:format", reportHandler.Download)

	apiGroup.Get("/health", healthHandler.Health)
	apiGroup.Get("/status", healthHandler.Status)
	apiGroup.Get("/config", healthHandler.Config)
}
