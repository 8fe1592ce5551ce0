package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// StoreStatus reports the outcome of the latest database probe
type StoreStatus interface {
	Healthy() bool
}

type HealthHandler struct {
	store   StoreStatus
	started time.Time
}

func NewHealthHandler(store StoreStatus) *HealthHandler {
	return &HealthHandler{store: store, started: time.Now()}
}

func (h *HealthHandler) dbState() string {
	if h.store.Healthy() {
		return "connected"
	}
	return "disconnected"
}

// Root is the service banner
// GET /
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "shopmall API server is running",
		"database": h.dbState(),
	})
}

// Health stays 200 while the process is up; the database state is informational
// GET /api/health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"status":    "ok",
			"database":  h.dbState(),
			"uptime":    time.Since(h.started).Round(time.Second).String(),
			"timestamp": time.Now().UTC(),
		},
	})
}
