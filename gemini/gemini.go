// Package gemini is the single choke point for every call to the hosted
// generative-text service. Model selection, error classification and the
// response cache all live here, so swapping the provider touches one package.
package gemini

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/auto-hunter/site/cache"
	genai "google.golang.org/genai"
)

// Config carries the static wrapper configuration. It is built from the
// application config in main; tests construct it directly with fake values.
type Config struct {
	APIKey         string
	Model          string
	Timeout        time.Duration
	CacheResponses bool
	CacheTTL       time.Duration

	// BaseURL overrides the API endpoint. Used by tests to point the client
	// at a local server.
	BaseURL string
}

// Request is one generative call. Schema and Out are optional: when both are
// set, the response text is decoded into Out as JSON.
type Request struct {
	System string
	Prompt string
	// Model overrides the client default for this call.
	Model       string
	Temperature float32
	Schema      *genai.Schema
	Out         any
}

// Response holds the outcome of a successful call.
type Response struct {
	// Text is the raw response text, always populated on success.
	Text string
	// Structured reports whether Text was decoded into Request.Out.
	Structured bool
	// Cached reports whether Text was served from the response cache
	// without a network call.
	Cached bool
}

// Client issues calls to the Gemini API. The zero value is not usable; use New.
type Client struct {
	genai    *genai.Client
	model    string
	timeout  time.Duration
	cache    *cache.Cache[string]
	cacheTTL time.Duration
}

// New builds a Client. A missing API key is not an error here: the first
// Generate call fails with *AuthError before any network I/O, matching the
// "fatal at first call" contract.
func New(ctx context.Context, cfg Config) (*Client, error) {
	c := &Client{
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		cacheTTL: cfg.CacheTTL,
	}
	if c.timeout == 0 {
		c.timeout = 30 * time.Second
	}
	if c.cacheTTL == 0 {
		c.cacheTTL = 15 * time.Minute
	}

	if cfg.APIKey == "" {
		log.Println("[gemini] WARNING: API key not set, AI calls will fail with an auth error")
		return c, nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	gc, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c.genai = gc

	if cfg.CacheResponses {
		c.cache, err = cache.New[string](func(value string) int64 {
			return int64(len(value))
		}, "AI Response Cache")
		if err != nil {
			return nil, fmt.Errorf("failed to initialize response cache: %w", err)
		}
	}

	return c, nil
}

// Generate issues exactly one outbound call (absent a cache hit) and returns
// either a Response or one of the four classified error kinds: *AuthError,
// *RateLimitError, *TransientError, *MalformedError.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("gemini: empty prompt")
	}
	if c.genai == nil {
		return nil, &AuthError{Reason: "GEMINI_API_KEY is not set"}
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	key := c.cacheKey(model, req.System, req.Prompt)
	if c.cache != nil {
		if text, ok := c.cache.Get(key); ok {
			log.Printf("[gemini] cache hit for model %s", model)
			return c.finish(req, text, true)
		}
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		genCfg.ResponseMIMEType = "application/json"
		genCfg.ResponseSchema = req.Schema
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.genai.Models.GenerateContent(callCtx, model, genai.Text(req.Prompt), genCfg)
	if err != nil {
		return nil, classify(err)
	}

	text := resp.Text()
	if text == "" {
		return nil, &MalformedError{Raw: "", Err: errors.New("empty response from model")}
	}

	if c.cache != nil {
		c.cache.SetWithTTL(key, text, int64(len(text)), c.cacheTTL)
	}

	return c.finish(req, text, false)
}

// finish applies the optional structured decode to the response text.
func (c *Client) finish(req Request, text string, cached bool) (*Response, error) {
	out := &Response{Text: text, Cached: cached}
	if req.Schema == nil || req.Out == nil {
		return out, nil
	}
	if err := json.Unmarshal([]byte(text), req.Out); err != nil {
		return nil, &MalformedError{Raw: text, Err: err}
	}
	out.Structured = true
	return out, nil
}

func (c *Client) cacheKey(model, system, prompt string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(system))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

// CacheStats exposes response cache counters for the health endpoint.
// Returns nil when response caching is disabled.
func (c *Client) CacheStats() map[string]interface{} {
	if c.cache == nil {
		return nil
	}
	return c.cache.Stats()
}

// classify maps any error out of the SDK to one of the four error kinds.
// Nothing unclassified escapes.
func classify(err error) error {
	apiErr, ok := asAPIError(err)
	if !ok {
		// Connection failures, timeouts, context deadlines.
		return &TransientError{Err: err}
	}

	switch {
	case apiErr.Code == 401 || apiErr.Code == 403:
		return &AuthError{Reason: apiErr.Message}
	case apiErr.Code == 429:
		delay, present := retryHint(apiErr)
		return &RateLimitError{RetryAfter: delay, HintPresent: present, Message: apiErr.Message}
	case apiErr.Code >= 500:
		return &TransientError{Err: err}
	default:
		// Remaining 4xx: the exchange itself is broken, not the transport.
		return &MalformedError{Raw: apiErr.Message, Err: err}
	}
}

// asAPIError unwraps a genai APIError in either value or pointer form.
func asAPIError(err error) (genai.APIError, bool) {
	var v genai.APIError
	if errors.As(err, &v) {
		return v, true
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return *p, true
	}
	return genai.APIError{}, false
}

// retryHint extracts the google.rpc.RetryInfo delay from a 429 error body.
func retryHint(apiErr genai.APIError) (time.Duration, bool) {
	for _, detail := range apiErr.Details {
		t, _ := detail["@type"].(string)
		if !strings.HasSuffix(t, "RetryInfo") {
			continue
		}
		raw, _ := detail["retryDelay"].(string)
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err == nil {
			return d, true
		}
	}
	return DefaultRetryAfter, false
}
