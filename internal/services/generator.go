package services

import (
	"context"
	"fmt"
	"strings"
)

// Generator is a chat-completion backend that answers with a JSON document.
type Generator interface {
	Provider() string
	Model() string
	GenerateJSON(ctx context.Context, req GenerationRequest) (string, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type GenerationRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
	// Model overrides the generator's default model when set.
	Model string
	// Function forces a structured function-call answer whose arguments are returned.
	Function *FunctionSchema
}

type FunctionSchema struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// NewGenerator builds the generator for provider. An empty apiKey yields nil.
func NewGenerator(ctx context.Context, provider, apiKey, model string) (Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, nil
	}

	switch strings.ToLower(provider) {
	case "", "openai":
		return NewOpenAIGenerator(apiKey, model), nil
	case "gemini":
		return NewGeminiGenerator(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", provider)
	}
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	endObj := strings.LastIndex(text, "}")
	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	return strings.TrimSpace(text)
}
