// Package agent provides an LLM-backed decision source: a Gemini chat
// configured to answer a portfolio snapshot with a JSON list of trading
// decisions.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"google.golang.org/genai"

	"hedgesim"
)

const model = "gemini-2.5-pro"

// Advisor is a decision source that asks a Gemini model what to trade. The
// response schema constrains the model to the exact decision shape, so the
// reply parses without any prose stripping.
type Advisor struct {
	ModelName string
	chat      *genai.Chat
}

// NewAdvisor creates an advisor on the default model.
func NewAdvisor() *Advisor { return &Advisor{ModelName: model} }

// Start creates the chat session. It must be called once before Decide.
func (a *Advisor) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, a.ModelName, config(), nil)
	if err != nil {
		return err
	}
	a.chat = chat
	return nil
}

func config() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   decisionSchema,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
		You are a portfolio manager making the final trading decisions over a
		set of tickers. You receive the current portfolio state (cash, margin,
		positions, realized gains), the latest close prices, and an advisory
		remaining position limit per ticker.

		Rules:
		- Only buy when there is available cash, and size orders within the
		  remaining position limit for that ticker.
		- Only sell shares currently held long; only cover shares currently
		  held short.
		- Shorting posts margin out of cash; stay within available cash.
		- When in doubt, hold with quantity 0.

		Answer one decision per ticker, for every ticker in the request.`}}},
	}
}

var decisionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"ticker": {Type: genai.TypeString},
			"action": {
				Type: genai.TypeString,
				Enum: []string{"buy", "sell", "short", "cover", "hold"},
			},
			"quantity": {
				Type:        genai.TypeInteger,
				Description: "Number of shares to trade. 0 for hold.",
			},
			"confidence": {
				Type:        genai.TypeNumber,
				Description: "Confidence in the decision, between 0 and 100.",
			},
			"reasoning": {Type: genai.TypeString},
		},
		Required: []string{"ticker", "action", "quantity"},
	},
}

// Decide sends the request snapshot to the model and parses its decisions.
func (a *Advisor) Decide(ctx context.Context, req hedgesim.DecisionRequest) (map[string]hedgesim.Decision, error) {
	if a.chat == nil {
		return nil, fmt.Errorf("advisor not started")
	}

	payload, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return nil, err
	}

	resp, err := a.chat.Send(ctx, &genai.Part{Text: string(payload)})
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from model %s", a.ModelName)
	}
	return parseDecisions(resp.Candidates[0].Content.Parts[0].Text)
}

// parseDecisions decodes the model's JSON reply into per-ticker decisions.
func parseDecisions(text string) (map[string]hedgesim.Decision, error) {
	var rows []struct {
		Ticker     string          `json:"ticker"`
		Action     hedgesim.Action `json:"action"`
		Quantity   int64           `json:"quantity"`
		Confidence float64         `json:"confidence"`
		Reasoning  string          `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(text), &rows); err != nil {
		return nil, fmt.Errorf("cannot parse decisions %q: %w", text, err)
	}

	decisions := make(map[string]hedgesim.Decision, len(rows))
	for _, row := range rows {
		if row.Ticker == "" {
			log.Printf("decision without a ticker (ignored): %+v", row)
			continue
		}
		decisions[row.Ticker] = hedgesim.Decision{
			Action:     row.Action,
			Quantity:   row.Quantity,
			Confidence: row.Confidence,
			Reasoning:  row.Reasoning,
		}
	}
	return decisions, nil
}

var _ hedgesim.DecisionSource = (*Advisor)(nil)
