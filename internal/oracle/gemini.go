package oracle

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"bakerybot/internal/catalog"
	"bakerybot/internal/model"
)

// GeminiOracle classifies messages with a Gemini model.
type GeminiOracle struct {
	client  *genai.Client
	model   string
	system  string
	timeout time.Duration
}

// NewGeminiOracle creates a Gemini-backed oracle whose prompt lists the catalog.
func NewGeminiOracle(ctx context.Context, apiKey, model string, timeout time.Duration, cat *catalog.Catalog) (*GeminiOracle, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiOracle{
		client:  client,
		model:   model,
		system:  SystemPrompt(cat),
		timeout: timeout,
	}, nil
}

// Classify sends the message and parses the model's JSON answer.
func (o *GeminiOracle) Classify(ctx context.Context, req Request) (*model.Intent, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.client.Models.GenerateContent(ctx,
		o.model,
		[]*genai.Content{genai.NewContentFromText(UserPrompt(req), genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(o.system, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			Temperature:       genai.Ptr[float32](0.1),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	return Parse(resp.Text())
}

// Name returns the oracle name.
func (o *GeminiOracle) Name() string {
	return fmt.Sprintf("genai:%s", o.model)
}
