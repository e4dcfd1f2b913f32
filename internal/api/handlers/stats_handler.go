package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Ken-Miles/farm-computer/internal/storage/sqlite"
	"github.com/Ken-Miles/farm-computer/pkg/logger"
)

type StatsHandler struct {
	db *sqlite.Client
}

func NewStatsHandler(db *sqlite.Client) *StatsHandler {
	return &StatsHandler{db: db}
}

func (h *StatsHandler) HandleStats(c *fiber.Ctx) error {
	hours := c.QueryInt("hours", 24)
	if hours <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "hours must be positive",
		})
	}

	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	stats, err := h.db.GetStats(since)
	if err != nil {
		logger.Error("Failed to aggregate stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to aggregate stats",
		})
	}

	return c.JSON(fiber.Map{
		"window_hours": hours,
		"stats":        stats,
	})
}
