package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"skybook/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const extractionPrompt = `You are the entity extractor for a flight booking assistant.
Given the conversation so far and the user's latest message, reply with ONLY a JSON object:
{"intent":"book_flight|check_status|cancel_booking|chat","origin":"","destination":"","date":"","passengers":0,"class":"","pnr":""}
Leave fields you cannot determine empty or zero. Do not add commentary.`

// GeminiExtractor asks Gemini for structured intent and entities.
type GeminiExtractor struct {
	model *genai.GenerativeModel
}

func NewGeminiExtractor(apiKey string) (*GeminiExtractor, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel("models/gemini-1.5-pro")
	return &GeminiExtractor{model: model}, nil
}

func (g *GeminiExtractor) Extract(ctx context.Context, text string, history []string) (*models.Extraction, error) {
	var prompt strings.Builder
	prompt.WriteString(extractionPrompt)
	prompt.WriteString("\n\nConversation:\n")
	for _, turn := range history {
		prompt.WriteString(turn)
		prompt.WriteString("\n")
	}
	prompt.WriteString("User: ")
	prompt.WriteString(text)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		return nil, fmt.Errorf("gemini generate error: %w", err)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}

	raw := strings.TrimSpace(sb.String())
	// The model occasionally wraps the JSON in a code fence.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var extraction models.Extraction
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &extraction); err != nil {
		return nil, fmt.Errorf("unparseable extraction %q: %w", raw, err)
	}
	if extraction.Intent == "" {
		extraction.Intent = IntentChat
	}
	return &extraction, nil
}
