// Package session keeps per-browser-session state: the current search
// results, the market summary, the chat history and the uploaded document
// context. State lives in a TTL cache keyed by a session cookie; expiry or a
// restart silently yields a fresh empty session.
package session

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/auto-hunter/site/cache"
	"github.com/auto-hunter/site/search"
)

const cookieName = "session_id"

// State is everything one browser session accumulates. Fiber serves requests
// concurrently, so access goes through the methods below.
type State struct {
	mu sync.Mutex

	results     []search.RankedListing
	summary     string
	chat        []search.ChatTurn
	contextText string
}

// SetResults replaces the current results and summary and clears the chat,
// since the old conversation referred to the old listings.
func (s *State) SetResults(results []search.RankedListing, summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
	s.summary = summary
	s.chat = nil
}

// Results returns the current ranked listings and summary.
func (s *State) Results() ([]search.RankedListing, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results, s.summary
}

// AppendChat records one user/assistant exchange.
func (s *State) AppendChat(question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = append(s.chat,
		search.ChatTurn{Role: "user", Content: question},
		search.ChatTurn{Role: "assistant", Content: answer},
	)
}

// Chat returns a copy of the chat history.
func (s *State) Chat() []search.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]search.ChatTurn, len(s.chat))
	copy(out, s.chat)
	return out
}

// ClearChat drops the conversation but keeps the results.
func (s *State) ClearChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = nil
}

// SetContextText stores the uploaded document text.
func (s *State) SetContextText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contextText = text
}

// ContextText returns the uploaded document text, if any.
func (s *State) ContextText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contextText
}

// Store maps session cookies to State.
type Store struct {
	cache *cache.Cache[*State]
	ttl   time.Duration
}

// NewStore creates a session store with the given TTL.
func NewStore(ttl time.Duration) (*Store, error) {
	c, err := cache.New[*State](func(*State) int64 { return 1 }, "Session Store")
	if err != nil {
		return nil, err
	}
	if ttl == 0 {
		ttl = 2 * time.Hour
	}
	return &Store{cache: c, ttl: ttl}, nil
}

// Get returns the State for the request's session, creating the session and
// setting its cookie when absent or expired.
func (s *Store) Get(c *fiber.Ctx) *State {
	id := c.Cookies(cookieName)
	if id != "" {
		if state, ok := s.cache.Get(id); ok {
			return state
		}
	}

	id = uuid.NewString()
	state := &State{}
	s.cache.SetWithTTL(id, state, 1, s.ttl)
	s.cache.Wait()

	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    id,
		MaxAge:   int(s.ttl / time.Second),
		HTTPOnly: true,
		Path:     "/",
		SameSite: "Strict",
	})
	return state
}

// Stats exposes session cache counters for the health endpoint.
func (s *Store) Stats() map[string]interface{} {
	return s.cache.Stats()
}
