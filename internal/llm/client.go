// Package llm wraps the OpenAI-compatible completion and image APIs behind a
// small client the rest of the service programs against.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jobprep-ai/jobprep/internal/metrics"
)

// ErrProvider marks any upstream provider failure so handlers can map it to a
// single opaque 502 without leaking provider detail to clients.
var ErrProvider = errors.New("llm provider error")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Completion is the text and token usage of a single chat completion call.
type Completion struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// Image is a single generated or edited image, base64-encoded PNG.
type Image struct {
	B64JSON string
}

type Client struct {
	client *openai.Client
}

type Config struct {
	APIKey  string
	BaseURL string
}

func NewClient(cfg *Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Client{client: openai.NewClientWithConfig(clientCfg)}
}

// Complete runs a chat completion and reports token usage alongside the text.
func (c *Client) Complete(ctx context.Context, model string, messages []Message, temperature float32) (*Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(model, "error").Inc()
		return nil, parseAPIError("completion", err)
	}
	if len(resp.Choices) == 0 {
		metrics.CompletionRequestsTotal.WithLabelValues(model, "error").Inc()
		return nil, fmt.Errorf("empty completion response: %w", ErrProvider)
	}

	metrics.CompletionRequestsTotal.WithLabelValues(model, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
	metrics.CompletionTokensTotal.WithLabelValues(model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.CompletionTokensTotal.WithLabelValues(model, "completion").Add(float64(resp.Usage.CompletionTokens))

	return &Completion{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// GenerateImage creates an image from a prompt. Style is the provider's
// "natural" or "vivid" rendering mode.
func (c *Client) GenerateImage(ctx context.Context, model, prompt, size, quality, style string) (*Image, error) {
	req := openai.ImageRequest{
		Model:          model,
		Prompt:         prompt,
		Size:           size,
		Quality:        quality,
		Style:          style,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	}

	resp, err := c.client.CreateImage(ctx, req)
	if err != nil {
		metrics.ImageRequestsTotal.WithLabelValues(model, "generate", "error").Inc()
		return nil, parseAPIError("image generation", err)
	}
	if len(resp.Data) == 0 {
		metrics.ImageRequestsTotal.WithLabelValues(model, "generate", "error").Inc()
		return nil, fmt.Errorf("empty image response: %w", ErrProvider)
	}

	metrics.ImageRequestsTotal.WithLabelValues(model, "generate", "success").Inc()
	return &Image{B64JSON: resp.Data[0].B64JSON}, nil
}

// EditImage applies a prompt to the unmasked regions of an image. Both image
// and mask must be PNG files.
func (c *Client) EditImage(ctx context.Context, model string, image, mask io.Reader, prompt, size string) (*Image, error) {
	req := openai.ImageEditRequest{
		Model:          model,
		Image:          image,
		Mask:           mask,
		Prompt:         prompt,
		Size:           size,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	}

	resp, err := c.client.CreateEditImage(ctx, req)
	if err != nil {
		metrics.ImageRequestsTotal.WithLabelValues(model, "edit", "error").Inc()
		return nil, parseAPIError("image edit", err)
	}
	if len(resp.Data) == 0 {
		metrics.ImageRequestsTotal.WithLabelValues(model, "edit", "error").Inc()
		return nil, fmt.Errorf("empty image edit response: %w", ErrProvider)
	}

	metrics.ImageRequestsTotal.WithLabelValues(model, "edit", "success").Inc()
	return &Image{B64JSON: resp.Data[0].B64JSON}, nil
}

// parseAPIError extracts a human-readable error from the API response.
// Everything is wrapped with ErrProvider for uniform 502 mapping upstream.
func parseAPIError(op string, err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("%s API error %d: %s: %w", op, reqErr.HTTPStatusCode, detail, ErrProvider)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w", op, apiErr.HTTPStatusCode, apiErr.Message, ErrProvider)
	}

	return fmt.Errorf("%s request failed: %w", op, ErrProvider)
}

func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
