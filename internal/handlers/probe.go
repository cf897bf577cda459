package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	store Pinger
}

// NewProbeHandler creates a new probe handler.
func NewProbeHandler(store Pinger) *ProbeHandler {
	return &ProbeHandler{store: store}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint. It fails while the run store is unreachable.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if err := h.store.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  "run store unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
