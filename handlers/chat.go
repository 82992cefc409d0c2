package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/auto-hunter/site/ui"
)

func HandleChat(c *fiber.Ctx) error {
	question := strings.TrimSpace(c.FormValue("question"))
	if question == "" {
		return render(c, ui.ValidationError("Type a question first."))
	}

	state := sessions.Get(c)
	results, _ := state.Results()
	if len(results) == 0 {
		return render(c, ui.InfoMessage("Run a search first so there is something to talk about."))
	}

	ctx := c.UserContext()
	answer, err := withRetry(ctx, func() (string, error) {
		return searchService.Chat(ctx, question, results, state.ContextText(), state.Chat())
	})
	if err != nil {
		log.Printf("[chat] failed: %v", err)
		return render(c, actionError(err))
	}

	state.AppendChat(question, answer)
	return render(c, ui.ChatLog(state.Chat()))
}

func HandleChatClear(c *fiber.Ctx) error {
	sessions.Get(c).ClearChat()
	return render(c, ui.ChatLog(nil))
}
