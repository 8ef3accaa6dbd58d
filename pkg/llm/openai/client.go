package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/corenetops/devops-agent/pkg/interfaces"
	"github.com/corenetops/devops-agent/pkg/logging"
	"github.com/corenetops/devops-agent/pkg/retry"
)

// Client implements interfaces.ModelClient for OpenAI chat models
type Client struct {
	client        *openai.Client
	model         string
	logger        logging.Logger
	retryExecutor *retry.Executor
}

// Option configures the OpenAI client
type Option func(*Client)

// WithModel sets the model for the client
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithLogger sets the logger for the client
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRetry configures retry policy for the client
func WithRetry(opts ...retry.Option) Option {
	return func(c *Client) {
		c.retryExecutor = retry.NewExecutor(retry.NewPolicy(opts...))
	}
}

// NewClient creates a new OpenAI client
func NewClient(apiKey string, options ...Option) *Client {
	client := &Client{
		client: openai.NewClient(apiKey),
		model:  "gpt-4o-mini",
		logger: logging.New(),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// ModelID returns the configured model identifier
func (c *Client) ModelID() string {
	return c.model
}

// Invoke sends one request to the model and returns the raw text payload
func (c *Client) Invoke(ctx context.Context, req interfaces.ModelRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	request := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		request.MaxTokens = req.MaxTokens
	}

	var resp openai.ChatCompletionResponse
	call := func() error {
		var err error
		resp, err = c.client.CreateChatCompletion(ctx, request)
		return err
	}

	var err error
	if c.retryExecutor != nil {
		err = c.retryExecutor.Execute(ctx, call)
	} else {
		err = call()
	}
	if err != nil {
		c.logger.Error(ctx, "OpenAI chat completion failed", map[string]interface{}{
			"model": c.model,
			"error": err.Error(),
		})
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}
