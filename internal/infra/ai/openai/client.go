package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/ventur-api/internal/domain/analysis"
	"github.com/bryanwahyu/ventur-api/internal/infra/ai/prompt"
)

const maxTokens = 4096

type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// Analyze implements analysis.Client. The system prompt is selected by the
// request kind; responses are forced into JSON object mode.
func (c *Client) Analyze(ctx context.Context, req analysis.Request) (string, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	system := prompt.DeckSystemPrompt()
	if req.Kind == analysis.KindDataRoom {
		system = prompt.DataRoomSystemPrompt(req.Category)
	}

	r := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt.UserPrompt(req)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		r.MaxCompletionTokens = maxTokens
	} else {
		r.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, r)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
			return "", analysis.ErrQuotaExceeded
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", analysis.ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}
