// Package handlers serves the HTML pages and probe endpoints.
package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"sovdash/internal/analysis"
	"sovdash/internal/config"
	"sovdash/internal/dashboard"
	"sovdash/internal/models"
	"sovdash/internal/report"
	"sovdash/internal/validation"
)

// DashboardHandler renders the dashboard page.
type DashboardHandler struct {
	runner *analysis.Runner
	cfg    *config.Config
	brands *config.YAMLConfig
}

// NewDashboardHandler creates a new dashboard page handler.
func NewDashboardHandler(runner *analysis.Runner, cfg *config.Config, brands *config.YAMLConfig) *DashboardHandler {
	if brands == nil {
		brands = config.Default()
	}
	return &DashboardHandler{runner: runner, cfg: cfg, brands: brands}
}

// Index renders the latest analysis, or the demo data before the first run.
func (h *DashboardHandler) Index(c fiber.Ctx) error {
	result, live := h.runner.LatestOrDemo(c.Context())
	state := dashboard.BuildState(result)

	return c.Render("dashboard", MergeBranding(fiber.Map{
		"Title":             "Share of Voice Dashboard",
		"Metrics":           state.Metrics,
		"Rows":              state.Rows,
		"Charts":            state.Charts,
		"Demo":              !live,
		"Timestamp":         result.Timestamp,
		"DefaultKeywords":   strings.Join(h.brands.DefaultKeywords, ", "),
		"DefaultNumResults": validation.ClampNumResults(h.brands.Analyzer.NumResults, validation.DefaultNumResults),
		"MaxNumResults":     validation.MaxNumResults,
		"AnalysisTypes":     []models.AnalysisType{models.AnalysisFull, models.AnalysisQuick, models.AnalysisCompetitor},
		"ReportFormats":     report.Formats(),
	}, h.cfg, h.brands))
}
