package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/auto-hunter/site/config"
	"github.com/auto-hunter/site/fuel"
	"github.com/auto-hunter/site/gemini"
	h "github.com/auto-hunter/site/handlers"
	"github.com/auto-hunter/site/offer"
	"github.com/auto-hunter/site/prompt"
	"github.com/auto-hunter/site/scrape"
	"github.com/auto-hunter/site/search"
	"github.com/auto-hunter/site/session"
)

func main() {
	cfg := config.Load()

	prompts := prompt.NewStore(cfg.PromptDir)

	ai, err := gemini.New(context.Background(), gemini.Config{
		APIKey:         cfg.GeminiAPIKey,
		Model:          cfg.GeminiModel,
		Timeout:        cfg.GeminiTimeout,
		CacheResponses: cfg.CacheAIResponses,
		CacheTTL:       cfg.GeminiCacheTTL,
	})
	if err != nil {
		log.Fatalf("error initializing Gemini client: %v", err)
	}

	scraper, err := scrape.New(scrape.Config{
		BaseURL:   cfg.StandvirtualBaseURL,
		UserAgent: cfg.ScrapeUserAgent,
		Timeout:   cfg.ScrapeTimeout,
		CachePage: true,
		CacheTTL:  cfg.ScrapeCacheTTL,
	})
	if err != nil {
		log.Fatalf("error initializing scraper: %v", err)
	}

	sessions, err := session.NewStore(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("error initializing session store: %v", err)
	}

	h.Setup(
		search.New(ai, prompts, scraper),
		offer.New(ai, prompts),
		fuel.New(ai, prompts),
		ai,
		sessions,
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: h.CustomErrorHandler,
		BodyLimit:    config.ContextUploadLimit,
		ReadTimeout:  config.ServerReadTimeout,  // Prevent long-running requests
		WriteTimeout: config.ServerWriteTimeout, // Prevent long-running responses
	})

	// Add rate limiter
	app.Use(limiter.New(limiter.Config{
		Max:        config.ServerRateLimitMax,
		Expiration: config.ServerRateLimitExp,
	}))

	// Add logger middleware
	app.Use(logger.New())

	// Pages and htmx panels
	app.Get("/", h.HandleHome)
	app.Get("/panel/:name", h.HandlePanel)
	app.Get("/healthz", h.HandleHealth)

	// API group
	api := app.Group("/api")
	api.Post("/search", h.HandleSearch)
	api.Post("/chat", h.HandleChat)
	api.Post("/chat/clear", h.HandleChatClear)
	api.Post("/offer", h.HandleOffer)
	api.Post("/fuel", h.HandleFuel)
	api.Post("/context", h.HandleContext)

	log.Printf("[main] listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
