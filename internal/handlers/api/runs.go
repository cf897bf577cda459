package api

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"sovdash/internal/logger"
	"sovdash/internal/middleware"
	"sovdash/internal/models"
)

// Run listing limits.
const (
	DefaultRunsLimit = 10
	MaxRunsLimit     = 50
)

// RunLister lists stored runs, newest first.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]models.AnalysisRun, error)
}

// RunsHandler serves the recent run listing.
type RunsHandler struct {
	store RunLister
	log   *logrus.Entry
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(store RunLister) *RunsHandler {
	return &RunsHandler{store: store, log: logger.For("api")}
}

// List handles GET /api/runs?limit=N.
func (h *RunsHandler) List(c fiber.Ctx) error {
	limit := fiber.Query[int](c, "limit", DefaultRunsLimit)
	if limit < 1 {
		limit = DefaultRunsLimit
	}
	if limit > MaxRunsLimit {
		limit = MaxRunsLimit
	}

	runs, err := h.store.ListRuns(c.Context(), limit)
	if err != nil {
		middleware.Log(c, h.log).WithError(err).Error("Failed to list runs")
		return jsonError(c, fiber.StatusInternalServerError, "failed to list runs")
	}

	out := make([]models.RunSummary, 0, len(runs))
	for _, run := range runs {
		out = append(out, models.RunSummary{
			ID:               run.ID,
			Keywords:         run.Keywords,
			AnalysisType:     run.AnalysisType,
			OverallSoV:       run.Result.OverallSoV,
			KeywordsAnalyzed: run.Result.KeywordsAnalyzed,
			CreatedAt:        run.CreatedAt,
		})
	}
	return jsonSuccess(c, out)
}
