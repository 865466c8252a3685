package services

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type openAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIGenerator(apiKey, model string) Generator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &openAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Provider implements Generator.
func (g *openAIGenerator) Provider() string { return "openai" }

// Model implements Generator.
func (g *openAIGenerator) Model() string { return g.model }

// GenerateJSON implements Generator.
func (g *openAIGenerator) GenerateJSON(ctx context.Context, req GenerationRequest) (string, error) {
	model := g.model
	if req.Model != "" {
		model = req.Model
	}

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	if req.Function != nil {
		chatReq.Tools = []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        req.Function.Name,
				Description: req.Function.Description,
				Parameters:  req.Function.Parameters,
			},
		}}
		chatReq.ToolChoice = openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: req.Function.Name},
		}
	} else {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := g.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	msg := resp.Choices[0].Message
	if req.Function != nil {
		for _, call := range msg.ToolCalls {
			if call.Function.Name == req.Function.Name {
				return call.Function.Arguments, nil
			}
		}
		return "", fmt.Errorf("model did not call %s", req.Function.Name)
	}

	if msg.Content == "" {
		return "", fmt.Errorf("no text content in response")
	}
	return msg.Content, nil
}

// GenerateEmbedding implements Generator.
func (g *openAIGenerator) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.SmallEmbedding3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return resp.Data[0].Embedding, nil
}
