package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Frontend asset URLs
	TailwindCSSURL = "https://cdn.tailwindcss.com"
	HTMXURL        = "https://unpkg.com/htmx.org@1.9.12"

	// Server settings
	ServerReadTimeout  = 30 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerRateLimitMax = 60
	ServerRateLimitExp = 1 * time.Minute

	// Maximum size of an uploaded context document (bytes)
	ContextUploadLimit = 1 << 20
)

// Config holds all runtime configuration, loaded once at startup and passed
// into constructors. Nothing in this package is mutated after Load returns.
type Config struct {
	Port string

	GeminiAPIKey     string
	GeminiModel      string
	GeminiTimeout    time.Duration
	GeminiCacheTTL   time.Duration
	CacheAIResponses bool

	StandvirtualBaseURL string
	ScrapeTimeout       time.Duration
	ScrapeCacheTTL      time.Duration
	ScrapeUserAgent     string

	PromptDir  string
	SessionTTL time.Duration
}

// Load reads the .env file (if present) and environment variables into a Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, using system environment")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTimeout:    getEnvDuration("GEMINI_TIMEOUT", 30*time.Second),
		GeminiCacheTTL:   getEnvDuration("GEMINI_CACHE_TTL", 15*time.Minute),
		CacheAIResponses: getEnvBool("GEMINI_CACHE_RESPONSES", true),

		StandvirtualBaseURL: getEnv("STANDVIRTUAL_BASE_URL", "https://www.standvirtual.com"),
		ScrapeTimeout:       getEnvDuration("SCRAPE_TIMEOUT", 20*time.Second),
		ScrapeCacheTTL:      getEnvDuration("SCRAPE_CACHE_TTL", 5*time.Minute),
		ScrapeUserAgent: getEnv("SCRAPE_USER_AGENT",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),

		PromptDir:  getEnv("PROMPT_DIR", "prompts"),
		SessionTTL: getEnvDuration("SESSION_TTL", 2*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
		log.Printf("[config] invalid duration for %s: %q, using default %v", key, val, fallback)
	}
	return fallback
}
