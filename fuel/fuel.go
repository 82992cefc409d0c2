// Package fuel computes monthly and yearly fuel costs. The arithmetic is pure
// and deterministic; the model is only asked to explain the computed numbers.
package fuel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/auto-hunter/site/gemini"
	"github.com/auto-hunter/site/prompt"
)

// Estimate holds the computed costs. Consumption figures are liters per
// 100 km; costs are in the user's currency per the fuel price they entered.
type Estimate struct {
	LitersUsed            float64 `json:"liters_used"`
	MonthlyCost           float64 `json:"monthly_cost"`
	YearlyCost            float64 `json:"yearly_cost"`
	AdditionalConsumption float64 `json:"additional_consumption"`
	FinalConsumption      float64 `json:"final_consumption"`
}

// Calculate computes fuel costs from monthly distance, average consumption
// and fuel price. passengerWeight and passengers are optional (zero skips the
// passenger surcharge).
func Calculate(kmPerMonth, lPer100km, pricePerLiter, passengerWeight float64, passengers int) Estimate {
	litersUsed := (kmPerMonth / 100) * lPer100km
	monthlyCost := litersUsed * pricePerLiter

	additional := 0.0
	if passengerWeight > 0 && passengers > 0 {
		// Extra consumption per 100 km from passenger weight.
		additional = (passengerWeight * float64(passengers) * 0.5) / 100
	}

	return Estimate{
		LitersUsed:            litersUsed,
		MonthlyCost:           monthlyCost,
		YearlyCost:            monthlyCost * 12,
		AdditionalConsumption: additional,
		FinalConsumption:      lPer100km + additional,
	}
}

// Service produces the natural-language explanation of an Estimate.
type Service struct {
	ai      *gemini.Client
	prompts *prompt.Store
}

func New(ai *gemini.Client, prompts *prompt.Store) *Service {
	return &Service{ai: ai, prompts: prompts}
}

// Explain asks the model for recommendations over the computed numbers. The
// numbers themselves never depend on the model.
func (s *Service) Explain(ctx context.Context, e Estimate) (string, error) {
	data, _ := json.MarshalIndent(e, "", "  ")
	userPrompt, err := s.prompts.Format("fuel_analysis", map[string]string{
		"data_json": string(data),
	})
	if err != nil {
		return "", err
	}

	resp, err := s.ai.Generate(ctx, gemini.Request{Prompt: userPrompt, Temperature: 0.7})
	if err != nil {
		return "", fmt.Errorf("explaining fuel costs: %w", err)
	}
	return resp.Text, nil
}
