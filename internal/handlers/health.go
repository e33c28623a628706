package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(isoMillis),
	})
}
