package gemini

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

// holds Gemini-specific configuration
type Config struct {
	APIKey           string  `env:"GEMINI_API_KEY"`
	QuestionModel    string  `env:"GEMINI_QUESTION_MODEL" envDefault:"gemini-2.5-flash-lite"`
	EvaluationModel  string  `env:"GEMINI_EVALUATION_MODEL" envDefault:"gemini-2.5-flash"`
	QuestionTemp     float32 `env:"GEMINI_QUESTION_TEMPERATURE" envDefault:"0.7"`
	QuestionTokens   int32   `env:"GEMINI_QUESTION_MAX_TOKENS" envDefault:"150"`
	EvaluationTemp   float32 `env:"GEMINI_EVALUATION_TEMPERATURE" envDefault:"0.3"`
	EvaluationTokens int32   `env:"GEMINI_EVALUATION_MAX_TOKENS" envDefault:"1200"`
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse gemini config: %w", err)
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	return cfg, nil
}
