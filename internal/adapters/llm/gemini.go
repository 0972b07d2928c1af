package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// GeminiClient implements domain.ModelClient on the Gemini API backend.
type GeminiClient struct {
	client        *genai.Client
	modelName     string
	contextWindow int
}

type GeminiConfig struct {
	APIKey string
	Model  string

	// ContextWindow is the combined input+output capacity assumed for
	// token-budget arithmetic.
	ContextWindow int
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	window := cfg.ContextWindow
	if window <= 0 {
		window = 4096
	}

	return &GeminiClient{client: client, modelName: model, contextWindow: window}, nil
}

func (g *GeminiClient) ContextWindow() int {
	return g.contextWindow
}

// Generate sends the prompt and returns the first candidate's text.
func (g *GeminiClient) Generate(ctx context.Context, promptText string, maxOutputTokens int) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(promptText), g.generateConfig(maxOutputTokens))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := candidateText(resp)
	if text == "" {
		return "", errors.New("gemini returned no candidates")
	}
	return text, nil
}

// GenerateStream yields candidate text chunk by chunk. The first error, from
// the backend or from emit, ends the stream.
func (g *GeminiClient) GenerateStream(ctx context.Context, promptText string, maxOutputTokens int, emit func(string) error) error {
	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.modelName, genai.Text(promptText), g.generateConfig(maxOutputTokens)) {
		if err != nil {
			return fmt.Errorf("stream content: %w", err)
		}
		chunk := candidateText(resp)
		if chunk == "" {
			continue
		}
		if err := emit(chunk); err != nil {
			return err
		}
	}
	return nil
}

func (g *GeminiClient) generateConfig(maxOutputTokens int) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxOutputTokens),
	}
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Text == "" {
				continue
			}
			builder.WriteString(part.Text)
		}
	}
	return builder.String()
}
