package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/auto-hunter/site/ui"
)

func HandleHome(c *fiber.Ctx) error {
	sessions.Get(c)
	return render(c, ui.HomePage())
}
