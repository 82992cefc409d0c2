// Package search composes the car search flow: free-text query to structured
// filters, scrape, model-side ranking and annotation, market summary, and
// contextual chat over the current results.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	genai "google.golang.org/genai"

	"github.com/auto-hunter/site/gemini"
	"github.com/auto-hunter/site/prompt"
	"github.com/auto-hunter/site/scrape"
)

// maxListingsForAI caps how many listings are handed to the model in one
// ranking, summary or chat prompt.
const maxListingsForAI = 15

const rankSystemPrompt = `You are a personalized car shopping assistant.
Re-order the listings so the best matches for the user query appear first.
Write a short one-sentence "note" recommendation for each car.
Refer to listings by their "id" field.`

const summarySystemPrompt = `You are a savvy car market expert. Review the
listings and generate a concise summary. Highlight the price range, the best
value option, and any red flags. Reference the user document context if
provided.`

const chatSystemPrompt = `You are a car analyst. Answer based ONLY on the
provided listings and document context.`

// RankedListing is a scraped listing plus the model's one-sentence note.
type RankedListing struct {
	scrape.Listing
	Note string `json:"note,omitempty"`
}

// ChatTurn is one message of the contextual chat. Role is "user" or
// "assistant".
type ChatTurn struct {
	Role    string
	Content string
}

// Service wires the scraper and the AI wrapper together.
type Service struct {
	ai      *gemini.Client
	prompts *prompt.Store
	scraper *scrape.Scraper
}

func New(ai *gemini.Client, prompts *prompt.Store, scraper *scrape.Scraper) *Service {
	return &Service{ai: ai, prompts: prompts, scraper: scraper}
}

var filtersSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"brand":     {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"model":     {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"fuel":      {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"min_price": {Type: genai.TypeInteger, Nullable: genai.Ptr(true)},
		"max_price": {Type: genai.TypeInteger, Nullable: genai.Ptr(true)},
		"min_year":  {Type: genai.TypeInteger, Nullable: genai.Ptr(true)},
		"max_km":    {Type: genai.TypeInteger, Nullable: genai.Ptr(true)},
	},
}

// ParseQuery extracts structured filters from a free-text query. On any AI
// failure it degrades to empty filters so the search still runs broad.
func (s *Service) ParseQuery(ctx context.Context, q string) scrape.Filters {
	system, err := s.prompts.Format("car_query", nil)
	if err != nil {
		log.Printf("[search] failed to load car_query prompt: %v", err)
		return scrape.Filters{}
	}

	var filters scrape.Filters
	_, err = s.ai.Generate(ctx, gemini.Request{
		System: system,
		Prompt: q,
		Schema: filtersSchema,
		Out:    &filters,
	})
	if err != nil {
		log.Printf("[search] query parse failed, searching broad: %v", err)
		return scrape.Filters{}
	}

	log.Printf("[search] parsed filters: %+v", filters)
	return filters
}

// Search fetches one results page for the given filters.
func (s *Service) Search(f scrape.Filters) ([]scrape.Listing, error) {
	return s.scraper.Search(f)
}

var rankSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"ranked_cars": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":   {Type: genai.TypeInteger},
					"note": {Type: genai.TypeString},
				},
			},
		},
	},
}

type rankedCars struct {
	RankedCars []struct {
		ID   int    `json:"id"`
		Note string `json:"note"`
	} `json:"ranked_cars"`
}

// RankAndAnnotate asks the model to reorder the listings for the query and
// attach a one-sentence note to each. An empty input returns an empty ranked
// list without invoking the model. On any AI failure the original order comes
// back unranked.
func (s *Service) RankAndAnnotate(ctx context.Context, userQuery string, listings []scrape.Listing) []RankedListing {
	if len(listings) == 0 {
		return []RankedListing{}
	}
	if len(listings) > maxListingsForAI {
		listings = listings[:maxListingsForAI]
	}

	type rankInput struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
		Price int    `json:"price"`
		Year  int    `json:"year"`
		KM    int    `json:"km"`
	}
	input := make([]rankInput, len(listings))
	for i, l := range listings {
		input[i] = rankInput{ID: i, Title: l.Title, Price: l.Price, Year: l.Year, KM: l.Mileage}
	}
	inputJSON, _ := json.Marshal(input)

	userPrompt, err := s.prompts.Format("rank_listings", map[string]string{
		"query":    userQuery,
		"listings": string(inputJSON),
	})
	if err != nil {
		log.Printf("[search] failed to build rank prompt: %v", err)
		return unranked(listings)
	}

	var ranked rankedCars
	_, err = s.ai.Generate(ctx, gemini.Request{
		System: rankSystemPrompt,
		Prompt: userPrompt,
		Schema: rankSchema,
		Out:    &ranked,
	})
	if err != nil {
		log.Printf("[search] ranking failed, returning original order: %v", err)
		return unranked(listings)
	}

	result := make([]RankedListing, 0, len(listings))
	used := make(map[int]bool)
	for _, item := range ranked.RankedCars {
		if item.ID < 0 || item.ID >= len(listings) || used[item.ID] {
			continue
		}
		used[item.ID] = true
		note := item.Note
		if note == "" {
			note = "Matches your search criteria."
		}
		result = append(result, RankedListing{Listing: listings[item.ID], Note: note})
	}

	// Append anything the model omitted so no listing is lost.
	for i, l := range listings {
		if !used[i] {
			result = append(result, RankedListing{Listing: l, Note: "Also found matching your criteria."})
		}
	}
	return result
}

func unranked(listings []scrape.Listing) []RankedListing {
	result := make([]RankedListing, len(listings))
	for i, l := range listings {
		result[i] = RankedListing{Listing: l}
	}
	return result
}

// Summarize produces a market overview of the current results. Empty results
// yield a fixed message without an AI call.
func (s *Service) Summarize(ctx context.Context, listings []RankedListing, contextText string) (string, error) {
	if len(listings) == 0 {
		return "No listings to summarize.", nil
	}
	if len(listings) > maxListingsForAI {
		listings = listings[:maxListingsForAI]
	}

	listingsJSON, _ := json.MarshalIndent(listings, "", "  ")
	userPrompt, err := s.prompts.Format("market_summary", map[string]string{
		"context":  contextBlock(contextText),
		"listings": string(listingsJSON),
	})
	if err != nil {
		return "", err
	}

	resp, err := s.ai.Generate(ctx, gemini.Request{
		System:      summarySystemPrompt,
		Prompt:      userPrompt,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("summarizing market: %w", err)
	}
	return resp.Text, nil
}

// Chat answers a question about the current results. Prior turns are passed
// back into the prompt; there is no session on the model side.
func (s *Service) Chat(ctx context.Context, question string, listings []RankedListing, contextText string, history []ChatTurn) (string, error) {
	if len(listings) > maxListingsForAI {
		listings = listings[:maxListingsForAI]
	}
	listingsJSON, _ := json.MarshalIndent(listings, "", "  ")

	userPrompt, err := s.prompts.Format("chat_about_results", map[string]string{
		"context":  contextBlock(contextText),
		"listings": string(listingsJSON),
		"history":  formatHistory(history),
		"question": question,
	})
	if err != nil {
		return "", err
	}

	resp, err := s.ai.Generate(ctx, gemini.Request{
		System:      chatSystemPrompt,
		Prompt:      userPrompt,
		Temperature: 0.5,
	})
	if err != nil {
		return "", fmt.Errorf("answering question: %w", err)
	}
	return resp.Text, nil
}

func contextBlock(contextText string) string {
	if strings.TrimSpace(contextText) == "" {
		return ""
	}
	return "DOCUMENT CONTEXT:\n" + contextText
}

func formatHistory(history []ChatTurn) string {
	if len(history) == 0 {
		return "(no prior messages)"
	}
	var b strings.Builder
	for _, turn := range history {
		b.WriteString(turn.Role)
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
