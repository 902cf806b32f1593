package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"api-testcase-generator/internal/llm"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the application configuration file relative to the working directory.
const DefaultPath = "config/config.yaml"

// Config holds the application configuration
type Config struct {
	Paths     PathsConfig     `yaml:"paths"`
	LLM       llm.Config      `yaml:"llm"`
	Reporting ReportingConfig `yaml:"reporting"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Export    ExportConfig    `yaml:"export"`
	Server    ServerConfig    `yaml:"server"`
}

// PathsConfig holds the well-known file locations
type PathsConfig struct {
	TestConfig string `yaml:"test_config"`
	TestPlan   string `yaml:"test_plan"`
	SpecFile   string `yaml:"spec_file"`
	LogDir     string `yaml:"log_dir"`
}

// ReportingConfig holds reporting configuration
type ReportingConfig struct {
	Format    []string `yaml:"format"`
	OutputDir string   `yaml:"output_dir"`
}

// FetchConfig holds configuration for fetching URLs listed in the input directory
type FetchConfig struct {
	MaxURLs     int         `yaml:"max_urls"`
	Concurrency int         `yaml:"concurrency"`
	Timeout     int         `yaml:"timeout"`
	Retry       RetryConfig `yaml:"retry"`
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	Attempts int `yaml:"attempts"`
	Delay    int `yaml:"delay"`
}

// ExportConfig holds the optional database export of generated test cases
type ExportConfig struct {
	Enabled bool     `yaml:"enabled"`
	DB      DBConfig `yaml:"db"`
}

// DBConfig holds database connection settings
type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	Table    string `yaml:"table"`
}

// ServerConfig holds the HTTP transport settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoadConfig loads config/config.yaml, falling back to defaults when it is missing.
func LoadConfig() (*Config, error) {
	return Load(DefaultPath)
}

// Load reads the configuration at path, applies environment overrides and fills defaults.
func Load(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnv()
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyEnv() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = llm.ProviderGroq
	}
	if key := llm.APIKeyFromEnv(c.LLM.Provider); key != "" {
		c.LLM.APIKey = key
	}
	if baseURL := os.Getenv("LLM_BASE_URL"); baseURL != "" {
		c.LLM.BaseURL = baseURL
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if password := os.Getenv("EXPORT_DB_PASSWORD"); password != "" {
		c.Export.DB.Password = password
	}
}

func (c *Config) applyDefaults() {
	defaults := llm.NewDefaultConfig()
	if c.LLM.BaseURL == "" && c.LLM.Provider == llm.ProviderGroq {
		c.LLM.BaseURL = defaults.BaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaults.Model
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = defaults.Temperature
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = defaults.MaxTokens
	}
	if c.LLM.SystemPrompt == "" {
		c.LLM.SystemPrompt = defaults.SystemPrompt
	}

	if c.Paths.TestConfig == "" {
		c.Paths.TestConfig = "config/test_config.json"
	}
	if c.Paths.TestPlan == "" {
		c.Paths.TestPlan = "output/test_plan.md"
	}
	if c.Paths.SpecFile == "" {
		c.Paths.SpecFile = "openapi.json"
	}
	if c.Paths.LogDir == "" {
		c.Paths.LogDir = "logs"
	}

	if len(c.Reporting.Format) == 0 {
		c.Reporting.Format = []string{"xlsx", "csv"}
	}
	if c.Reporting.OutputDir == "" {
		c.Reporting.OutputDir = "output"
	}

	if c.Fetch.MaxURLs == 0 {
		c.Fetch.MaxURLs = 10
	}
	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = 4
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 10
	}
	if c.Fetch.Retry.Attempts == 0 {
		c.Fetch.Retry.Attempts = 3
	}
	if c.Fetch.Retry.Delay == 0 {
		c.Fetch.Retry.Delay = 1
	}

	if c.Export.DB.Table == "" {
		c.Export.DB.Table = "test_cases"
	}
	if c.Export.DB.SSLMode == "" {
		c.Export.DB.SSLMode = "disable"
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8090"
	}
}
