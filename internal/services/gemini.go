package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiCritic sends the image inline; Gemini does not fetch arbitrary URLs.
// The client is shared by all calls and released by Close.
type GeminiCritic struct {
	client *genai.Client
	model  string
}

func NewGeminiCritic(ctx context.Context, apiKey, model string) (*GeminiCritic, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultGeminiModel
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiCritic{client: cl, model: model}, nil
}

func (g *GeminiCritic) Name() string { return "gemini" }

// Model is the configured model name.
func (g *GeminiCritic) Model() string { return g.model }

func (g *GeminiCritic) Close() error { return g.client.Close() }

func (g *GeminiCritic) Critique(ctx context.Context, img ImageRef) (string, error) {
	if len(img.Data) == 0 {
		return "", fmt.Errorf("%w: gemini needs inline image data", ErrAIUnavailable)
	}

	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(temperature)
	m.SetMaxOutputTokens(maxTokens)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemPrompt)},
	}

	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	resp, err := m.GenerateContent(ctx,
		genai.Text(UserPrompt),
		genai.Blob{MIMEType: mime, Data: img.Data},
	)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", ErrAIUnavailable, err)
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, p := range resp.Candidates[0].Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("%w: no response from Gemini", ErrAIUnavailable)
	}
	return out, nil
}
