package api

import (
	"github.com/gofiber/fiber/v3"

	"sovdash/internal/analysis"
	"sovdash/internal/config"
	"sovdash/internal/models"
	"sovdash/internal/report"
	"sovdash/internal/validation"
)

// HealthHandler reports service health, status and default configuration.
type HealthHandler struct {
	runner  *analysis.Runner
	brands  *config.YAMLConfig
	version string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(runner *analysis.Runner, brands *config.YAMLConfig, version string) *HealthHandler {
	if brands == nil {
		brands = config.Default()
	}
	return &HealthHandler{runner: runner, brands: brands, version: version}
}

// Health reports whether the service is up and an analysis has been run.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	_, err := h.runner.Latest(c.Context())
	return c.JSON(models.HealthResponse{
		Status:      "online",
		HasAnalysis: err == nil,
		Timestamp:   timestamp(),
	})
}

// Status reports readiness and when the latest analysis was produced.
func (h *HealthHandler) Status(c fiber.Ctx) error {
	resp := models.StatusResponse{
		Status:    "ready",
		Version:   h.version,
		Timestamp: timestamp(),
	}
	if result, err := h.runner.Latest(c.Context()); err == nil {
		resp.AnalysisAvailable = true
		resp.LastUpdate = result.Timestamp
	}
	return c.JSON(resp)
}

// Config returns the default brands, keywords and supported options.
func (h *HealthHandler) Config(c fiber.Ctx) error {
	formats := make([]string, 0, len(report.Formats()))
	for _, f := range report.Formats() {
		formats = append(formats, string(f))
	}
	return c.JSON(models.ConfigResponse{
		PrimaryBrand:      h.brands.Brand.Name,
		DefaultBrands:     h.brands.BrandKeywords(),
		DefaultKeywords:   h.brands.DefaultKeywords,
		DefaultNumResults: validation.ClampNumResults(h.brands.Analyzer.NumResults, validation.DefaultNumResults),
		AnalysisTypes: []string{
			string(models.AnalysisFull),
			string(models.AnalysisQuick),
			string(models.AnalysisCompetitor),
		},
		ReportFormats: formats,
	})
}
