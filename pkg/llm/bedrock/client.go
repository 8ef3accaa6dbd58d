package bedrock

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"github.com/corenetops/devops-agent/pkg/interfaces"
	"github.com/corenetops/devops-agent/pkg/logging"
	"github.com/corenetops/devops-agent/pkg/retry"
)

const defaultModelID = "anthropic.claude-3-sonnet-20240229-v1:0"

// ConverseAPI abstracts the Bedrock runtime surface for testability
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Client implements interfaces.ModelClient via the Bedrock Converse API
type Client struct {
	api           ConverseAPI
	modelID       string
	logger        logging.Logger
	retryExecutor *retry.Executor
}

// Option configures the Bedrock client
type Option func(*Client)

// WithModelID sets the Bedrock model identifier
func WithModelID(modelID string) Option {
	return func(c *Client) {
		c.modelID = modelID
	}
}

// WithLogger sets the logger for the client
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRetry configures retry policy for transient Bedrock failures
func WithRetry(opts ...retry.Option) Option {
	return func(c *Client) {
		c.retryExecutor = retry.NewExecutor(retry.NewPolicy(opts...))
	}
}

// NewClient creates a Bedrock client using the default AWS credential chain
func NewClient(ctx context.Context, region string, options ...Option) (*Client, error) {
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return NewClientWithAPI(bedrockruntime.NewFromConfig(cfg), options...), nil
}

// NewClientWithAPI creates a client with an injected Converse API
func NewClientWithAPI(api ConverseAPI, options ...Option) *Client {
	client := &Client{
		api:     api,
		modelID: defaultModelID,
		logger:  logging.New(),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// ModelID returns the configured model identifier
func (c *Client) ModelID() string {
	return c.modelID
}

// Invoke sends one request to the model and returns the raw text payload
func (c *Client) Invoke(ctx context.Context, req interfaces.ModelRequest) (string, error) {
	input := toConverseInput(c.modelID, req)

	var output *bedrockruntime.ConverseOutput
	call := func() error {
		var err error
		output, err = c.api.Converse(ctx, input)
		if err != nil && !isRetryable(err) {
			return retry.Permanent(err)
		}
		return err
	}

	var err error
	if c.retryExecutor != nil {
		err = c.retryExecutor.Execute(ctx, call)
	} else {
		err = call()
	}
	if err != nil {
		c.logger.Error(ctx, "Bedrock converse failed", map[string]interface{}{
			"model": c.modelID,
			"error": err.Error(),
		})
		return "", fmt.Errorf("bedrock converse: %w", err)
	}

	text := extractText(output)
	if text == "" {
		return "", fmt.Errorf("bedrock converse: empty response from model %s", c.modelID)
	}

	c.logger.Debug(ctx, "Bedrock converse completed", map[string]interface{}{
		"model":           c.modelID,
		"response_length": len(text),
	})

	return text, nil
}

func toConverseInput(modelID string, req interfaces.ModelRequest) *bedrockruntime.ConverseInput {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(modelID),
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens: aws.Int32(int32(maxTokens)),
		},
	}

	if req.System != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.System},
		}
	}

	for _, m := range req.Messages {
		role := types.ConversationRoleUser
		if m.Role == "assistant" {
			role = types.ConversationRoleAssistant
		}
		input.Messages = append(input.Messages, types.Message{
			Role: role,
			Content: []types.ContentBlock{
				&types.ContentBlockMemberText{Value: m.Content},
			},
		})
	}

	return input
}

func extractText(output *bedrockruntime.ConverseOutput) string {
	msg, ok := output.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}

	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			return text.Value
		}
	}
	return ""
}

// isRetryable reports whether the error is a transient Bedrock condition
func isRetryable(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.ErrorCode() {
	case "ThrottlingException", "TooManyRequestsException",
		"ModelNotReadyException", "ServiceUnavailableException",
		"InternalServerException":
		return true
	default:
		return false
	}
}
