package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/auto-hunter/site/ui"
)

func HandleSearch(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.FormValue("query"))
	if query == "" {
		return render(c, ui.ValidationError("Describe the car you are looking for first."))
	}

	ctx := c.UserContext()
	filters := searchService.ParseQuery(ctx, query)

	listings, err := searchService.Search(filters)
	if err != nil {
		log.Printf("[search] scrape failed: %v", err)
		return render(c, actionError(err))
	}

	ranked := searchService.RankAndAnnotate(ctx, query, listings)

	state := sessions.Get(c)
	summary := ""
	if len(ranked) > 0 {
		summary, err = withRetry(ctx, func() (string, error) {
			return searchService.Summarize(ctx, ranked, state.ContextText())
		})
		if err != nil {
			// The listings are still worth showing without a summary.
			log.Printf("[search] summary failed: %v", err)
			summary = ""
		}
	}
	state.SetResults(ranked, summary)

	return render(c, ui.SearchResults(summary, ranked))
}
