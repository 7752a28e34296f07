package model

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient is a hosted variant: the fixed remote model named by
// BaseModel answers directly, so Create and Dispose manage nothing.
type OpenAIClient struct {
	client *openai.Client
	hasKey bool
}

// NewOpenAIClient reads OPENAI_API_KEY and builds a chat-completion client.
func NewOpenAIClient() *OpenAIClient {
	apiKey := os.Getenv("OPENAI_API_KEY")
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		hasKey: apiKey != "",
	}
}

// NewOpenAIClientWithConfig builds a client against a custom endpoint.
func NewOpenAIClientWithConfig(config openai.ClientConfig) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		hasKey: config.BaseURL != "" || os.Getenv("OPENAI_API_KEY") != "",
	}
}

// Create is a no-op beyond checking that credentials exist.
func (c *OpenAIClient) Create(_ context.Context, handle Handle) error {
	if !c.hasKey {
		return &ProvisionError{Name: handle.EphemeralName, Err: errors.New("OPENAI_API_KEY is not set")}
	}
	return nil
}

// Query sends the system prompt and the task prompt as a chat exchange.
func (c *OpenAIClient) Query(ctx context.Context, handle Handle, prompt string) (string, error) {
	var completion string
	err := withRetries(ctx, QueryRetryLimit, func() error {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: handle.BaseModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: handle.SystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature:      float32(handle.Temperature),
			MaxTokens:        2048,
			TopP:             0.5,
			FrequencyPenalty: 0.01,
			PresencePenalty:  0.01,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("no choices returned")
		}
		completion = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", &QueryError{Name: handle.EphemeralName, Attempts: QueryRetryLimit, Err: err}
	}
	return completion, nil
}

// Dispose is a no-op; there is nothing to release remotely.
func (c *OpenAIClient) Dispose(context.Context, Handle) error { return nil }
