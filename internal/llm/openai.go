package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Groq and DeepSeek both expose OpenAI-compatible endpoints, so one client
// covers both providers.
const (
	groqBaseURL     = "https://api.groq.com/openai/v1"
	deepseekBaseURL = "https://api.deepseek.com"

	openaiRetryBase = 5 * time.Second
)

// OpenAICompatClient implements the Client interface for providers that
// speak the OpenAI chat-completion protocol.
type OpenAICompatClient struct {
	name   string
	client *openai.Client
	model  string
}

// NewGroqClient creates a client for the Groq API.
func NewGroqClient(apiKey, model string) *OpenAICompatClient {
	return newOpenAICompatClient("groq", apiKey, groqBaseURL, model)
}

// NewDeepSeekClient creates a client for the DeepSeek API.
func NewDeepSeekClient(apiKey, model string) *OpenAICompatClient {
	return newOpenAICompatClient("deepseek", apiKey, deepseekBaseURL, model)
}

func newOpenAICompatClient(name, apiKey, baseURL, model string) *OpenAICompatClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAICompatClient{
		name:   name,
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Name returns the provider name.
func (c *OpenAICompatClient) Name() string {
	return c.name
}

// Generate sends a prompt and returns the response text.
func (c *OpenAICompatClient) Generate(ctx context.Context, prompt string) (string, error) {
	return generateWithRetry(ctx, c.name, openaiRetryBase, func(ctx context.Context) (string, error) {
		return c.complete(ctx, prompt)
	})
}

// complete performs a single chat-completion request.
func (c *OpenAICompatClient) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", c.name)
	}

	return resp.Choices[0].Message.Content, nil
}
