package llm

import (
	"context"
	"fmt"

	"api-testcase-generator/internal/logger"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient generates text through an OpenAI-compatible chat completion API
type OpenAIClient struct {
	config *Config
	client *openai.Client
	logger *logger.Logger
}

// NewOpenAIClient creates a new OpenAI client. A BaseURL in config points it at any
// compatible provider.
func NewOpenAIClient(config *Config, log *logger.Logger) *OpenAIClient {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if log == nil {
		log = logger.Nop()
	}

	return &OpenAIClient{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
		logger: log,
	}
}

// Generate sends prompt as a single user message and returns the first choice.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	output, err := c.callLLM(ctx, prompt)
	c.logger.LogLLMInteraction("Generate", map[string]interface{}{
		"provider": c.config.Provider,
		"model":    c.config.Model,
		"prompt":   prompt,
	}, output, err)
	return output, err
}

// callLLM implements the actual LLM API call
func (c *OpenAIClient) callLLM(ctx context.Context, prompt string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if c.config.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.config.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       c.config.Model,
			Temperature: float32(c.config.Temperature),
			MaxTokens:   c.config.MaxTokens,
			Messages:    messages,
		},
	)
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", c.config.Provider, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", c.config.Provider)
	}

	return resp.Choices[0].Message.Content, nil
}
