package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MemoryConfig bounds the conversation memory
type MemoryConfig struct {
	MaxMessages    int `yaml:"max_messages"`
	RetentionHours int `yaml:"retention_hours"`
}

// Config is the agent configuration loaded from YAML
type Config struct {
	Name         string       `yaml:"name"`
	Provider     string       `yaml:"provider"`
	ModelID      string       `yaml:"model_id"`
	Region       string       `yaml:"region"`
	MaxTokens    int          `yaml:"max_tokens"`
	SystemPrompt string       `yaml:"system_prompt,omitempty"`
	LogLevel     string       `yaml:"log_level"`
	Memory       MemoryConfig `yaml:"memory"`
	AllowedTools []string     `yaml:"allowed_tools,omitempty"`
	Tracing      struct {
		Enabled           bool   `yaml:"enabled"`
		CollectorEndpoint string `yaml:"collector_endpoint"`
	} `yaml:"tracing"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	return &Config{
		Name:      "core-network-devops-agent",
		Provider:  "bedrock",
		Region:    "us-east-1",
		MaxTokens: defaultMaxTokens,
		LogLevel:  "info",
		Memory: MemoryConfig{
			MaxMessages:    100,
			RetentionHours: 24,
		},
	}
}

// LoadConfig reads a YAML configuration file, filling unset fields with
// the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 - path comes from the operator's flag
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
