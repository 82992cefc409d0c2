// Package offer evaluates a pasted car offer: price fairness, a suggested
// discount, scam risk, and a ready-to-send negotiation message. The judgment
// is delegated to the model; this package owns the prompt and the parser.
package offer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/auto-hunter/site/gemini"
	"github.com/auto-hunter/site/prompt"
	"github.com/auto-hunter/site/scrape"
)

// RiskLabel is the scam-risk classification. It is always exactly one of the
// four values below.
type RiskLabel string

const (
	RiskGreen   RiskLabel = "green"
	RiskYellow  RiskLabel = "yellow"
	RiskRed     RiskLabel = "red"
	RiskUnknown RiskLabel = "unknown"
)

// marketSampleSize caps how many recent search results go into the prompt.
const marketSampleSize = 8

// Input is one offer to analyze. Market carries the user's recent search
// results so the model can judge the price against comparable listings.
type Input struct {
	Description string
	Price       int
	Mileage     int
	Year        int
	Market      []scrape.Listing
}

// Analysis is the structured outcome. When the model output cannot be parsed,
// NeedsReview is set, RiskLabel is unknown, and RawText preserves the model
// output verbatim.
type Analysis struct {
	PricePosition        string   `json:"price_position"`
	SuggestedDiscountEUR int      `json:"suggested_discount_eur"`
	Justification        string   `json:"justification"`
	ScamRiskScore        int      `json:"scam_risk_score"`
	ScamReasons          []string `json:"scam_reasons"`
	BuyerMessage         string   `json:"buyer_message"`

	RiskLabel   RiskLabel `json:"risk_label"`
	NeedsReview bool      `json:"needs_review"`
	RawText     string    `json:"raw_text,omitempty"`
}

// Service runs offer analyses through the AI wrapper.
type Service struct {
	ai      *gemini.Client
	prompts *prompt.Store
}

func New(ai *gemini.Client, prompts *prompt.Store) *Service {
	return &Service{ai: ai, prompts: prompts}
}

// Analyze evaluates one offer. AI transport failures (auth, rate limit,
// network) are returned as-is for the caller to surface; content the model
// produced but that cannot be parsed degrades to a NeedsReview result instead
// of an error.
func (s *Service) Analyze(ctx context.Context, in Input) (Analysis, error) {
	market := in.Market
	if len(market) > marketSampleSize {
		market = market[:marketSampleSize]
	}
	marketJSON, _ := json.MarshalIndent(marketSample(market), "", "  ")

	userPrompt, err := s.prompts.Format("offer_analysis", map[string]string{
		"description": in.Description,
		"price":       strconv.Itoa(in.Price),
		"mileage":     strconv.Itoa(in.Mileage),
		"year":        strconv.Itoa(in.Year),
		"market":      string(marketJSON),
	})
	if err != nil {
		return Analysis{}, err
	}

	resp, err := s.ai.Generate(ctx, gemini.Request{Prompt: userPrompt, Temperature: 0.4})
	if err != nil {
		var malformed *gemini.MalformedError
		if errors.As(err, &malformed) {
			return needsReview(malformed.Raw), nil
		}
		return Analysis{}, fmt.Errorf("analyzing offer: %w", err)
	}

	analysis, ok := parseAnalysis(resp.Text)
	if !ok {
		log.Printf("[offer] could not parse model output, flagging for manual review")
		return needsReview(resp.Text), nil
	}
	return analysis, nil
}

// marketSample trims listings to the fields the model needs.
func marketSample(listings []scrape.Listing) []map[string]any {
	sample := make([]map[string]any, len(listings))
	for i, l := range listings {
		sample[i] = map[string]any{
			"title": l.Title,
			"price": l.Price,
			"year":  l.Year,
			"km":    l.Mileage,
		}
	}
	return sample
}

// parseAnalysis extracts the JSON object from the model output. The model
// sometimes prints prose around the JSON, so everything outside the first "{"
// and the last "}" is discarded.
func parseAnalysis(raw string) (Analysis, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return Analysis{}, false
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(raw[start:end+1]), &analysis); err != nil {
		return Analysis{}, false
	}

	analysis.RiskLabel = labelForScore(analysis.ScamRiskScore)
	analysis.RawText = raw
	return analysis, true
}

// labelForScore maps a 0-100 scam risk score onto the three-valued label.
func labelForScore(score int) RiskLabel {
	switch {
	case score < 30:
		return RiskGreen
	case score < 70:
		return RiskYellow
	default:
		return RiskRed
	}
}

func needsReview(raw string) Analysis {
	return Analysis{
		RiskLabel:   RiskUnknown,
		NeedsReview: true,
		RawText:     raw,
	}
}
