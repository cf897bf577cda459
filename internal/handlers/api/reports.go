package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"sovdash/internal/analysis"
	"sovdash/internal/metrics"
	"sovdash/internal/models"
	"sovdash/internal/report"
)

// ReportHandler renders analysis reports.
type ReportHandler struct {
	generator *report.Generator
	runner    *analysis.Runner
}

// NewReportHandler creates a new report handler.
func NewReportHandler(generator *report.Generator, runner *analysis.Runner) *ReportHandler {
	return &ReportHandler{generator: generator, runner: runner}
}

// Generate renders the posted analysis data and returns the document inline.
func (h *ReportHandler) Generate(c fiber.Ctx) error {
	var req models.GenerateReportRequest
	if err := decodeBody(c, &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.AnalysisData == nil {
		return jsonError(c, fiber.StatusBadRequest, report.ErrNoData.Error())
	}

	format, err := report.ParseFormat(req.Format)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Unsupported format")
	}

	rep, err := h.generator.Generate(req.AnalysisData, format)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to generate report")
	}
	metrics.RecordReport(string(format))

	return c.JSON(models.GenerateReportResponse{
		Format:   string(rep.Format),
		Filename: rep.Filename,
		Content:  string(rep.Content),
	})
}

// Download renders the latest analysis as a file attachment.
func (h *ReportHandler) Download(c fiber.Ctx) error {
	format, err := report.ParseFormat(c.Params("format"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Unsupported format")
	}

	result, err := h.runner.Latest(c.Context())
	if err != nil {
		if errors.Is(err, analysis.ErrNoAnalysis) {
			return jsonError(c, fiber.StatusNotFound, report.ErrNoData.Error())
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to load analysis")
	}

	rep, err := h.generator.Generate(result, format)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to generate report")
	}
	metrics.RecordReport(string(format))

	c.Set(fiber.HeaderContentType, rep.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", rep.Filename))
	return c.Send(rep.Content)
}
