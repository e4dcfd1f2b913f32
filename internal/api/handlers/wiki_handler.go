package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Ken-Miles/farm-computer/internal/lookup"
	"github.com/Ken-Miles/farm-computer/pkg/logger"
)

type WikiHandler struct {
	service *lookup.Service
}

func NewWikiHandler(service *lookup.Service) *WikiHandler {
	return &WikiHandler{service: service}
}

func (h *WikiHandler) HandleLookup(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query is required",
		})
	}

	result, err := h.service.Lookup(c.Context(), query, "api")
	if err != nil {
		logger.Error("Failed to look up page", zap.String("query", query), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to look up page",
		})
	}

	return c.JSON(fiber.Map{
		"query":      query,
		"outcome":    result.Outcome,
		"cache_hit":  result.CacheHit,
		"latency_ms": result.Latency.Milliseconds(),
		"summary":    result.Summary,
	})
}
