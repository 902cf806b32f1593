package llm

import "os"

// Supported providers. Groq exposes an OpenAI-compatible API.
const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
)

// GroqBaseURL is the OpenAI-compatible endpoint of Groq.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// Config represents the configuration for LLM integration
type Config struct {
	// Provider specifies which LLM provider to use ("groq" or "openai")
	Provider string `yaml:"provider" json:"provider"`

	// APIKey is the API key for the LLM provider
	APIKey string `yaml:"api_key" json:"-"`

	// BaseURL overrides the provider endpoint
	BaseURL string `yaml:"base_url" json:"base_url,omitempty"`

	// Model specifies which model to use
	Model string `yaml:"model" json:"model"`

	// Temperature controls the randomness of the output (0.0 to 1.0)
	Temperature float64 `yaml:"temperature" json:"temperature"`

	// MaxTokens limits the length of the generated response
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"`

	// SystemPrompt is sent ahead of every prompt when set
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt,omitempty"`
}

// NewDefaultConfig returns a default configuration
func NewDefaultConfig() *Config {
	return &Config{
		Provider:     ProviderGroq,
		BaseURL:      GroqBaseURL,
		Model:        "llama3-70b-8192",
		Temperature:  0.7,
		MaxTokens:    4096,
		SystemPrompt: "You are a senior QA architect. Always respond in the requested format.",
	}
}

// APIKeyFromEnv returns the key for provider from the environment. Groq falls back to
// OPENAI_API_KEY since both speak the same protocol.
func APIKeyFromEnv(provider string) string {
	if provider == ProviderGroq {
		if key := os.Getenv("GROQ_API_KEY"); key != "" {
			return key
		}
	}
	return os.Getenv("OPENAI_API_KEY")
}
