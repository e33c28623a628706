package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

type OpenAICritic struct {
	client *openai.Client
	model  string
}

// NewOpenAICritic builds the OpenAI engine. baseURL may be empty to use the
// public API.
func NewOpenAICritic(apiKey, model, baseURL string) (*OpenAICritic, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAICritic{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (o *OpenAICritic) Name() string { return "openai" }

func (o *OpenAICritic) Critique(ctx context.Context, img ImageRef) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, BuildCritiqueRequest(o.model, img.URL))
	if err != nil {
		return "", fmt.Errorf("%w: openai: %w", ErrAIUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response from OpenAI", ErrAIUnavailable)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BuildCritiqueRequest assembles the chat request: persona and template as
// the system message, the instruction plus a low-detail image reference as
// the user message.
func BuildCritiqueRequest(model, imageURL string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: UserPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}
