// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extraction

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const openAIMaxTokens = 2048

// OpenAIBackend calls the OpenAI chat completion API with JSON output
// enforced via the response format.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend builds the backend for the given credentials.
func NewOpenAIBackend(apiKey, model string) *OpenAIBackend {
	return &OpenAIBackend{client: openai.NewClient(apiKey), model: model}
}

// Name returns the backend identifier.
func (b *OpenAIBackend) Name() string { return "openai" }

// Complete sends one prompt and returns the model text.
func (b *OpenAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	model := b.model
	if model == "" {
		model = openai.GPT4oMini
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: openAIMaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
