package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auto-hunter/site/fuel"
	"github.com/auto-hunter/site/gemini"
	"github.com/auto-hunter/site/offer"
	"github.com/auto-hunter/site/prompt"
	"github.com/auto-hunter/site/scrape"
	"github.com/auto-hunter/site/search"
	"github.com/auto-hunter/site/session"
)

const resultsPage = `<!DOCTYPE html>
<html><body>
<article data-id="1">
  <h2><a href="/carros/anuncio/bmw-320d-1.html">BMW 320d Touring</a></h2>
  <h3>21 900 &euro;</h3>
  <ul><li>2019</li><li>98 000 km</li><li>Diesel</li></ul>
  <p data-testid="location-date">Porto</p>
</article>
</body></html>`

// queueAI serves scripted model responses in order; the last one repeats.
type queueAI struct {
	mu        sync.Mutex
	responses []string
}

func (q *queueAI) next() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.responses) == 0 {
		return "ok"
	}
	text := q.responses[0]
	if len(q.responses) > 1 {
		q.responses = q.responses[1:]
	}
	return text
}

func newScriptedAI(t *testing.T, responses ...string) *gemini.Client {
	t.Helper()
	q := &queueAI{responses: responses}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": q.next()}},
				}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	client, err := gemini.New(context.Background(), gemini.Config{
		APIKey:  "test-key",
		Model:   "gemini-test",
		Timeout: 5 * time.Second,
		BaseURL: srv.URL,
	})
	require.NoError(t, err)
	return client
}

func newPromptStore(t *testing.T) *prompt.Store {
	t.Helper()
	dir := t.TempDir()
	templates := map[string]string{
		"car_query":          "Extract structured search parameters.",
		"rank_listings":      "User Query: '{query}'\n\nListings to Rank:\n{listings}",
		"market_summary":     "{context}\n\nMARKET DATA:\n{listings}",
		"chat_about_results": "{context}\n\n{listings}\n\n{history}\n\nQUESTION: {question}",
		"offer_analysis":     "Listing: {description}\nPrice: {price}\nMileage: {mileage}\nYear: {year}\nMarket: {market}",
		"fuel_analysis":      "Explain these running costs: {data_json}",
	}
	for name, text := range templates {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".txt"), []byte(text), 0644))
	}
	return prompt.NewStore(dir)
}

func newTestApp(t *testing.T, ai *gemini.Client, scrapeURL string) *fiber.App {
	t.Helper()

	prompts := newPromptStore(t)
	scraper, err := scrape.New(scrape.Config{
		BaseURL:   scrapeURL,
		UserAgent: "test-agent",
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)

	store, err := session.NewStore(time.Hour)
	require.NoError(t, err)

	Setup(
		search.New(ai, prompts, scraper),
		offer.New(ai, prompts),
		fuel.New(ai, prompts),
		ai,
		store,
	)

	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Get("/", HandleHome)
	app.Get("/panel/:name", HandlePanel)
	app.Get("/healthz", HandleHealth)
	api := app.Group("/api")
	api.Post("/search", HandleSearch)
	api.Post("/chat", HandleChat)
	api.Post("/chat/clear", HandleChatClear)
	api.Post("/offer", HandleOffer)
	api.Post("/fuel", HandleFuel)
	api.Post("/context", HandleContext)
	return app
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestHandleHome(t *testing.T) {
	app := newTestApp(t, newScriptedAI(t, "ok"), "http://localhost:1")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := bodyString(t, resp)
	assert.Contains(t, body, "Auto Hunter")
	assert.Contains(t, body, "Search Cars")
	assert.Contains(t, resp.Header.Get("Set-Cookie"), "session_id=")
}

func TestHandlePanel(t *testing.T) {
	app := newTestApp(t, newScriptedAI(t, "ok"), "http://localhost:1")

	for _, name := range []string{"search", "chat", "fuel", "offer"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panel/"+name, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, name)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panel/bogus", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleSearch_FullFlow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	ai := newScriptedAI(t,
		`{"brand":"bmw","fuel":"diesel"}`,
		`{"ranked_cars":[{"id":0,"note":"Well priced for its year."}]}`,
		"A balanced market for diesel tourings.",
	)
	app := newTestApp(t, ai, srv.URL)

	resp := postForm(t, app, "/api/search", url.Values{"query": {"bmw 320d diesel"}}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := bodyString(t, resp)
	assert.Contains(t, body, "BMW 320d Touring")
	assert.Contains(t, body, "Well priced for its year.")
	assert.Contains(t, body, "A balanced market for diesel tourings.")
}

func TestHandleSearch_EmptyQuery(t *testing.T) {
	app := newTestApp(t, newScriptedAI(t, "ok"), "http://localhost:1")

	resp := postForm(t, app, "/api/search", url.Values{"query": {"   "}}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "Describe the car")
}

func TestHandleSearch_ScrapeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	app := newTestApp(t, newScriptedAI(t, `{}`), srv.URL)

	resp := postForm(t, app, "/api/search", url.Values{"query": {"anything"}}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := bodyString(t, resp)
	assert.Contains(t, body, "Search failed")
	assert.Contains(t, body, "403")
}

func TestHandleSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body></body></html>"))
	}))
	defer srv.Close()

	app := newTestApp(t, newScriptedAI(t, `{}`), srv.URL)

	resp := postForm(t, app, "/api/search", url.Values{"query": {"unicorn car"}}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "No cars found")
}

func TestHandleChat_RequiresSearchFirst(t *testing.T) {
	app := newTestApp(t, newScriptedAI(t, "ok"), "http://localhost:1")

	resp := postForm(t, app, "/api/chat", url.Values{"question": {"which is best?"}}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "Run a search first")
}

func TestHandleChat_AfterSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	ai := newScriptedAI(t,
		`{"brand":"bmw"}`,
		`{"ranked_cars":[{"id":0,"note":"Solid pick."}]}`,
		"Summary text.",
		"The BMW is the only diesel in your results.",
	)
	app := newTestApp(t, ai, srv.URL)

	resp := postForm(t, app, "/api/search", url.Values{"query": {"bmw"}}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	io.Copy(io.Discard, resp.Body)
	cookie := resp.Header.Get("Set-Cookie")
	require.NotEmpty(t, cookie)

	resp = postForm(t, app, "/api/chat", url.Values{"question": {"any diesels?"}}, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := bodyString(t, resp)
	assert.Contains(t, body, "any diesels?")
	assert.Contains(t, body, "The BMW is the only diesel in your results.")
}

func TestHandleOffer_Validation(t *testing.T) {
	app := newTestApp(t, newScriptedAI(t, "ok"), "http://localhost:1")

	resp := postForm(t, app, "/api/offer", url.Values{"price": {"15000"}}, "")
	assert.Contains(t, bodyString(t, resp), "Paste the listing description")

	resp = postForm(t, app, "/api/offer", url.Values{
		"description": {"BMW 320d, full history"},
		"price":       {"abc"},
	}, "")
	assert.Contains(t, bodyString(t, resp), "asking price")
}

func TestHandleOffer_FullFlow(t *testing.T) {
	analysis := `{"price_position":"above market","suggested_discount_eur":1500,` +
		`"justification":"Priced over comparable cars.","scam_risk_score":12,` +
		`"scam_reasons":[],"buyer_message":"Bom dia, tenho interesse no carro."}`
	app := newTestApp(t, newScriptedAI(t, analysis), "http://localhost:1")

	resp := postForm(t, app, "/api/offer", url.Values{
		"description": {"BMW 320d, full history"},
		"price":       {"21900"},
		"mileage":     {"98000"},
		"year":        {"2019"},
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := bodyString(t, resp)
	assert.Contains(t, body, "Low scam risk")
	assert.Contains(t, body, "above market")
	assert.Contains(t, body, "Bom dia, tenho interesse no carro.")
}

func TestHandleOffer_UnparseableAnalysis(t *testing.T) {
	app := newTestApp(t, newScriptedAI(t, "I could not produce JSON, sorry."), "http://localhost:1")

	resp := postForm(t, app, "/api/offer", url.Values{
		"description": {"some car"},
		"price":       {"5000"},
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := bodyString(t, resp)
	assert.Contains(t, body, "unexpected format")
	assert.Contains(t, body, "I could not produce JSON, sorry.")
}

func TestHandleFuel(t *testing.T) {
	app := newTestApp(t, newScriptedAI(t, "Roughly the cost of a gym membership."), "http://localhost:1")

	resp := postForm(t, app, "/api/fuel", url.Values{
		"km_per_month": {"1000"},
		"consumption":  {"6"},
		"fuel_price":   {"1.70"},
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := bodyString(t, resp)
	assert.Contains(t, body, "102.00")
	assert.Contains(t, body, "1224.00")
	assert.Contains(t, body, "Roughly the cost of a gym membership.")
}

func TestHandleFuel_NumbersSurviveAIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"key invalid","status":"PERMISSION_DENIED"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	ai, err := gemini.New(context.Background(), gemini.Config{
		APIKey:  "bad-key",
		Model:   "gemini-test",
		Timeout: 5 * time.Second,
		BaseURL: srv.URL,
	})
	require.NoError(t, err)
	app := newTestApp(t, ai, "http://localhost:1")

	resp := postForm(t, app, "/api/fuel", url.Values{
		"km_per_month": {"1000"},
		"consumption":  {"6"},
		"fuel_price":   {"1.70"},
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := bodyString(t, resp)
	assert.Contains(t, body, "102.00")
	assert.Contains(t, body, "AI features are unavailable")
}

func TestHandleFuel_Validation(t *testing.T) {
	app := newTestApp(t, newScriptedAI(t, "ok"), "http://localhost:1")

	resp := postForm(t, app, "/api/fuel", url.Values{
		"km_per_month": {"0"},
		"consumption":  {"6"},
		"fuel_price":   {"1.70"},
	}, "")
	assert.Contains(t, bodyString(t, resp), "above zero")
}

func TestHandleContext(t *testing.T) {
	app := newTestApp(t, newScriptedAI(t, "ok"), "http://localhost:1")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("document", "market-notes.txt")
	require.NoError(t, err)
	fw.Write([]byte("Diesel prices are expected to rise."))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/context", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "market-notes.txt")
}

func TestHandleContext_RejectsUnknownExtension(t *testing.T) {
	app := newTestApp(t, newScriptedAI(t, "ok"), "http://localhost:1")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("document", "report.pdf")
	require.NoError(t, err)
	fw.Write([]byte("%PDF-1.4"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/context", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Contains(t, bodyString(t, resp), "plain-text files")
}

func TestHandleHealth(t *testing.T) {
	app := newTestApp(t, newScriptedAI(t, "ok"), "http://localhost:1")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.Contains(t, health, "ai_cache")
	assert.Contains(t, health, "sessions")
}

func TestWithRetry_RetriesTransientOnly(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), func() (string, error) {
		calls++
		return "", &gemini.TransientError{Err: errors.New("connection reset")}
	})
	var transient *gemini.TransientError
	assert.ErrorAs(t, err, &transient)
	assert.Equal(t, 1+retryAttempts, calls)

	calls = 0
	_, err = withRetry(context.Background(), func() (string, error) {
		calls++
		return "", &gemini.AuthError{Reason: "bad key"}
	})
	var authErr *gemini.AuthError
	assert.ErrorAs(t, err, &authErr)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_RecoversMidway(t *testing.T) {
	calls := 0
	got, err := withRetry(context.Background(), func() (string, error) {
		calls++
		if calls < 2 {
			return "", &gemini.TransientError{Err: errors.New("flaky")}
		}
		return "answer", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "answer", got)
	assert.Equal(t, 2, calls)
}
