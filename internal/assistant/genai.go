package assistant

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GenAI is a Generator backed by the Gemini API.
type GenAI struct {
	client *genai.Client
}

// NewGenAI creates a Gemini client for apiKey.
func NewGenAI(ctx context.Context, apiKey string) (*GenAI, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAI{client: client}, nil
}

// Generate implements Generator.
func (g *GenAI) Generate(ctx context.Context, req Request) (Response, error) {
	cfg := &genai.GenerateContentConfig{}
	if req.Instruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.Instruction, genai.RoleUser)
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.Schema
	}

	result, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Text), cfg)
	if err != nil {
		return Response{}, fmt.Errorf("generate content: %w", err)
	}
	return Response{Text: result.Text()}, nil
}
