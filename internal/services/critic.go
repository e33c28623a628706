package services

import (
	"context"
	"errors"
)

var (
	// ErrAIUnavailable marks any failure of the oracle: transport, quota,
	// empty or unusable reply. Callers map it to 503.
	ErrAIUnavailable = errors.New("AI service temporarily unavailable")
	// ErrUnparseable means the reply could not be split into lines.
	ErrUnparseable = errors.New("failed to parse AI response")
)

// RatingTemplate is the reply format the oracle is asked to follow. ParseRating
// depends on these labels.
const RatingTemplate = `Aesthetics Score: [0-5]
Aesthetics Explanation: [one sentence]

Originality Score: [0-5]
Originality Explanation: [one sentence]

Great Feature: [one specific feature]

Improvements:
1. [improvement]
2. [improvement]
3. [improvement]`

const (
	SystemPrompt = "You are a professional Christmas tree critic. Use the following format for your response:\n\n" + RatingTemplate
	UserPrompt   = "Please analyze this Christmas tree. Be honest but constructive in your feedback."

	maxTokens   = 1000
	temperature = 0.7
)

// ImageRef points the oracle at an uploaded image. URL is always set; Data
// is carried for engines that cannot fetch remote URLs.
type ImageRef struct {
	URL      string
	MIMEType string
	Data     []byte
}

// Critic sends one critique request per call and returns the raw reply.
// It never retries.
type Critic interface {
	Name() string
	Critique(ctx context.Context, img ImageRef) (string, error)
}
