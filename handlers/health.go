package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HandleHealth returns the health status of the application.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"ai_cache": aiClient.CacheStats(),
		"sessions": sessions.Stats(),
	})
}
