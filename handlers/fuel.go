package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	g "maragu.dev/gomponents"

	"github.com/auto-hunter/site/fuel"
	"github.com/auto-hunter/site/ui"
)

func HandleFuel(c *fiber.Ctx) error {
	km := formFloat(c, "km_per_month")
	consumption := formFloat(c, "consumption")
	price := formFloat(c, "fuel_price")
	weight := formFloat(c, "passenger_weight")
	passengers, _ := strconv.Atoi(c.FormValue("passengers"))

	if km <= 0 || consumption <= 0 || price <= 0 {
		return render(c, ui.ValidationError("Kilometers, consumption, and fuel price must all be above zero."))
	}

	estimate := fuel.Calculate(km, consumption, price, weight, passengers)

	ctx := c.UserContext()
	explanation, err := withRetry(ctx, func() (string, error) {
		return fuelService.Explain(ctx, estimate)
	})
	if err != nil {
		// The numbers stand on their own without the commentary.
		log.Printf("[fuel] explanation failed: %v", err)
		return render(c, g.Group([]g.Node{
			ui.FuelResults(estimate, ""),
			actionError(err),
		}))
	}

	return render(c, ui.FuelResults(estimate, explanation))
}

func formFloat(c *fiber.Ctx, key string) float64 {
	v, err := strconv.ParseFloat(c.FormValue(key), 64)
	if err != nil {
		return 0
	}
	return v
}
