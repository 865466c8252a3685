package services

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

type geminiGenerator struct {
	client     *genai.Client
	modelName  string
	embedModel string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &geminiGenerator{
		client:     client,
		modelName:  model,
		embedModel: "text-embedding-004",
	}, nil
}

// Provider implements Generator.
func (g *geminiGenerator) Provider() string { return "gemini" }

// Model implements Generator.
func (g *geminiGenerator) Model() string { return g.modelName }

// GenerateJSON implements Generator. Gemini has no forced function call here,
// so a function schema is appended to the prompt and JSON output is requested.
func (g *geminiGenerator) GenerateJSON(ctx context.Context, req GenerationRequest) (string, error) {
	prompt := req.Prompt
	if req.Function != nil {
		schema, err := json.Marshal(req.Function.Parameters)
		if err != nil {
			return "", fmt.Errorf("failed to encode schema: %w", err)
		}
		prompt = fmt.Sprintf("%s\n\n%s. Respond with a single JSON object matching this JSON schema:\n%s",
			prompt, req.Function.Description, schema)
	}

	temperature := req.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  int32(req.MaxTokens),
		ResponseMIMEType: "application/json",
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}
	return text, nil
}

// GenerateEmbedding implements Generator.
func (g *geminiGenerator) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}
