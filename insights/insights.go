package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"shopledger/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var ErrEmptyResponse = errors.New("model returned no text")

// Generator turns dashboard aggregates into a short narrative.
type Generator interface {
	Generate(ctx context.Context, in models.InsightsInput) (string, error)
}

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, in models.InsightsInput) (string, error) {
	prompt, err := BuildPrompt(in)
	if err != nil {
		return "", err
	}

	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate analysis: %w", err)
	}
	return responseText(resp)
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// BuildPrompt embeds the aggregates as JSON. Without a question the model is
// asked for a general overview.
func BuildPrompt(in models.InsightsInput) (string, error) {
	data, err := json.Marshal(struct {
		Summary models.DashboardSummary `json:"summary"`
		Weekly  []models.WeeklyPoint    `json:"weekly_sales_vs_expenses"`
		Top     []models.TopProduct     `json:"top_products"`
	}{in.Summary, in.Weekly, in.Top})
	if err != nil {
		return "", fmt.Errorf("failed to serialize data: %w", err)
	}

	question := strings.TrimSpace(in.Question)
	if question == "" {
		question = "How is the shop doing and what should the owner pay attention to?"
	}

	return fmt.Sprintf(
		`You are a helpful assistant for the owner of a small retail shop called %q. `+
			`Answer in at most five short paragraphs using only the data below. Amounts are in the shop's currency.

Question: %s

Data: %s`,
		in.ShopName, question, string(data)), nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		if sb.Len() > 0 {
			break
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}
