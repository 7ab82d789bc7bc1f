package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Config holds the connection settings for the inference server that hosts
// the fine-tuned medical model behind an OpenAI-compatible API.
type Config struct {
	Enabled bool          `split_words:"true" default:"true"`
	BaseURL string        `split_words:"true"`
	APIKey  string        `split_words:"true"`
	Model   string        `default:"biobart-v2-base-ft"`
	Timeout time.Duration `default:"30s"`
}

// Client generates free-text medical analysis from a prompt. It is the only
// component allowed to talk to the model; callers see a single
// Generate(prompt) capability and treat any failure as recoverable.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("agent: inference base URL is not set")
	}
	if cfg.Model == "" {
		return nil, errors.New("agent: inference model is not set")
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		client:  openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		timeout: timeout,
	}, nil
}

// Generate sends the prompt to the inference server and returns the
// generated text. Every call carries an explicit deadline; a timeout is
// reported as an ordinary generation error so the caller can fall back.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   200,
	})
	if err != nil {
		return "", fmt.Errorf("agent: generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("agent: model returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
