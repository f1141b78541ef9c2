package openai

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// value shipped in sample env files; treated as no key at all
	placeholderKey = "your-groq-api-key-here"
)

// holds OpenAI-compatible endpoint configuration
type Config struct {
	GroqAPIKey       string  `env:"GROQ_API_KEY"`
	OpenAIAPIKey     string  `env:"OPENAI_API_KEY"`
	BaseURL          string  `env:"OPENAI_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	QuestionModel    string  `env:"OPENAI_QUESTION_MODEL" envDefault:"llama-3.1-8b-instant"`
	EvaluationModel  string  `env:"OPENAI_EVALUATION_MODEL" envDefault:"llama-3.3-70b-versatile"`
	QuestionTemp     float32 `env:"OPENAI_QUESTION_TEMPERATURE" envDefault:"0.7"`
	QuestionTokens   int     `env:"OPENAI_QUESTION_MAX_TOKENS" envDefault:"150"`
	EvaluationTemp   float32 `env:"OPENAI_EVALUATION_TEMPERATURE" envDefault:"0.3"`
	EvaluationTokens int     `env:"OPENAI_EVALUATION_MAX_TOKENS" envDefault:"1200"`
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse openai config: %w", err)
	}
	return cfg, nil
}

// Credential returns the first usable key, preferring the Groq key.
func (c *Config) Credential() string {
	for _, key := range []string{c.GroqAPIKey, c.OpenAIAPIKey} {
		key = strings.TrimSpace(key)
		if key != "" && key != placeholderKey {
			return key
		}
	}
	return ""
}
