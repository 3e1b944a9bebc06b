package validator

import (
	"context"

	"github.com/prospectly/leadgen-cli/pkg/anthropic"
	"github.com/prospectly/leadgen-cli/pkg/gemini"
)

// GeminiModel adapts the Gemini client to TextModel.
type GeminiModel struct {
	Client gemini.Client
}

func (m GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	return m.Client.GenerateContent(ctx, prompt)
}

// AnthropicModel adapts the Anthropic client to TextModel.
type AnthropicModel struct {
	Client    anthropic.Client
	Model     string
	MaxTokens int64
}

func (m AnthropicModel) Generate(ctx context.Context, prompt string) (string, error) {
	maxTokens := m.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	resp, err := m.Client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     m.Model,
		MaxTokens: maxTokens,
		Prompt:    prompt,
	})
	if err != nil {
		return "", err
	}
	resp.Usage.LogCost(resp.Model, "validate")
	return resp.Text, nil
}
