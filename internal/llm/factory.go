package llm

import (
	"fmt"

	"api-testcase-generator/internal/logger"
)

// NewClient creates a new LLM client based on the provider
func NewClient(config *Config, logger *logger.Logger) (TextGenerator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("missing API key for LLM provider %q", config.Provider)
	}

	switch config.Provider {
	case ProviderOpenAI, ProviderGroq:
		return NewOpenAIClient(config, logger), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.Provider)
	}
}
