package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	g "maragu.dev/gomponents"

	"github.com/auto-hunter/site/gemini"
	"github.com/auto-hunter/site/prompt"
	"github.com/auto-hunter/site/scrape"
	"github.com/auto-hunter/site/ui"
)

// CustomErrorHandler renders a full error page for unhandled errors.
func CustomErrorHandler(ctx *fiber.Ctx, err error) error {
	// Status code defaults to 500
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTML)
	return ui.ErrorPage(code, err.Error()).Render(ctx)
}

// actionError maps a service failure to a panel-local error component, so a
// failed AI call or scrape never takes down the whole page.
func actionError(err error) g.Node {
	var authErr *gemini.AuthError
	if errors.As(err, &authErr) {
		return ui.ActionError(
			"AI features are unavailable",
			"The Gemini API rejected the credentials. Set GEMINI_API_KEY in the environment and restart the server.",
		)
	}

	var rateErr *gemini.RateLimitError
	if errors.As(err, &rateErr) {
		return ui.ActionError(
			"Slow down a little",
			fmt.Sprintf("The AI service is rate limiting us. Try again in about %s.", rateErr.RetryAfter),
		)
	}

	var malformed *gemini.MalformedError
	if errors.As(err, &malformed) {
		return ui.RawTextNotice(
			"The AI response could not be interpreted. Raw output:",
			malformed.Raw,
		)
	}

	if errors.Is(err, prompt.ErrTemplateNotFound) {
		return ui.ActionError(
			"Prompt template missing",
			err.Error()+". Check the prompts directory deployed next to the server binary.",
		)
	}

	var fetchErr *scrape.FetchError
	if errors.As(err, &fetchErr) {
		body := "Standvirtual could not be reached. Check your connection and try again."
		if fetchErr.StatusCode != 0 {
			body = fmt.Sprintf("Standvirtual returned HTTP %d. The site may be blocking requests; try again later.", fetchErr.StatusCode)
		}
		return ui.ActionError("Search failed", body)
	}

	var transient *gemini.TransientError
	if errors.As(err, &transient) {
		return ui.ActionError(
			"Temporary problem",
			"The AI service did not respond. It was retried without luck; try again in a moment.",
		)
	}

	return ui.ActionError("Something went wrong", err.Error())
}
