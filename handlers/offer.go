package handlers

import (
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/auto-hunter/site/offer"
	"github.com/auto-hunter/site/scrape"
	"github.com/auto-hunter/site/ui"
)

func HandleOffer(c *fiber.Ctx) error {
	description := strings.TrimSpace(c.FormValue("description"))
	if description == "" {
		return render(c, ui.ValidationError("Paste the listing description first."))
	}

	price, err := strconv.Atoi(c.FormValue("price"))
	if err != nil || price <= 0 {
		return render(c, ui.ValidationError("Enter the asking price as a whole number of euros."))
	}
	mileage, _ := strconv.Atoi(c.FormValue("mileage"))
	year, _ := strconv.Atoi(c.FormValue("year"))

	state := sessions.Get(c)
	results, _ := state.Results()
	market := make([]scrape.Listing, 0, len(results))
	for _, r := range results {
		market = append(market, r.Listing)
	}

	ctx := c.UserContext()
	analysis, err := withRetry(ctx, func() (offer.Analysis, error) {
		return offerService.Analyze(ctx, offer.Input{
			Description: description,
			Price:       price,
			Mileage:     mileage,
			Year:        year,
			Market:      market,
		})
	})
	if err != nil {
		log.Printf("[offer] analysis failed: %v", err)
		return render(c, actionError(err))
	}

	return render(c, ui.OfferAnalysis(analysis))
}
