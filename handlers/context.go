package handlers

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/auto-hunter/site/config"
	"github.com/auto-hunter/site/ui"
)

// HandleContext stores an uploaded text document in the session. Its content
// is fed into market summaries and chat answers.
func HandleContext(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("document")
	if err != nil {
		return render(c, ui.ContextStatus(false, "Choose a file to upload first."))
	}
	if fileHeader.Size > config.ContextUploadLimit {
		return render(c, ui.ContextStatus(false,
			fmt.Sprintf("File is too large. The limit is %d KB.", config.ContextUploadLimit/1024)))
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".txt" && ext != ".md" {
		return render(c, ui.ContextStatus(false, "Only plain-text files (.txt, .md) are supported."))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return render(c, ui.ContextStatus(false, "The file could not be read. Try again."))
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, config.ContextUploadLimit))
	if err != nil {
		return render(c, ui.ContextStatus(false, "The file could not be read. Try again."))
	}

	text := strings.TrimSpace(string(content))
	if text == "" {
		return render(c, ui.ContextStatus(false, "The file is empty."))
	}

	sessions.Get(c).SetContextText(text)
	return render(c, ui.ContextStatus(true, fmt.Sprintf("Loaded %q.", fileHeader.Filename)))
}
