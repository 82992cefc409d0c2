package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/auto-hunter/site/ui"
)

// HandlePanel swaps the active tab's panel into the page.
func HandlePanel(c *fiber.Ctx) error {
	state := sessions.Get(c)
	switch c.Params("name") {
	case "search":
		return render(c, ui.SearchPanel())
	case "chat":
		return render(c, ui.ChatPanel(state.Chat(), state.ContextText() != ""))
	case "fuel":
		return render(c, ui.FuelPanel())
	case "offer":
		return render(c, ui.OfferPanel())
	default:
		return fiber.NewError(fiber.StatusNotFound, "unknown panel")
	}
}
