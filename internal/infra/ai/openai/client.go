package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/glowguide/internal/domain/ai"
	"github.com/bryanwahyu/glowguide/internal/infra/ai/prompt"
)

const (
	defaultModel       = "gpt-4o"
	defaultMaxTokens   = 4000
	defaultTemperature = 0.7
)

// Client generates wellness insights with a vision capable chat model.
type Client struct {
	*openai.Client
	Model       string
	MaxTokens   int
	Temperature float32
}

var _ ai.InsightGenerator = (*Client)(nil)

// NewClient builds a client. baseURL is optional and points the client at a
// compatible gateway.
func NewClient(apiKey, model, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		Client:      openai.NewClientWithConfig(cfg),
		Model:       model,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}
}

func (c *Client) GenerateInsights(ctx context.Context, faces []ai.Face, imageBase64, contentType string) (json.RawMessage, error) {
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: c.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt.GetUserPrompt(faces)},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    "data:" + contentType + ";base64," + imageBase64,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	}
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	// reasoning models reject max_tokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
		req.Temperature = 0
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, ai.ErrEmptyResponse
	}
	return prompt.ExtractJSON(resp.Choices[0].Message.Content)
}

func classify(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %v", ai.ErrProviderAuth, err)
	}
	return fmt.Errorf("failed to create chat completion: %w", err)
}
