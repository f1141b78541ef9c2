package gemini

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"mockinterview/ai/internal/llm"
	"mockinterview/ai/internal/models"
)

const providerName = "gemini"

// Client represents a Gemini LLM client
type Client struct {
	client *genai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, llm.ErrMissingCredential
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	return &Client{
		client: client,
		config: config,
	}, nil
}

func (c *Client) GenerateQuestion(ctx context.Context, req llm.QuestionRequest) (string, error) {
	return c.generate(ctx, c.config.QuestionModel, req.UserPrompt, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(req.SystemPrompt),
		Temperature:       genai.Ptr(c.config.QuestionTemp),
		MaxOutputTokens:   c.config.QuestionTokens,
	})
}

func (c *Client) EvaluateTranscript(ctx context.Context, req llm.EvaluationRequest) (*models.Evaluation, error) {
	text, err := c.generate(ctx, c.config.EvaluationModel, req.Prompt, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(req.SystemPrompt),
		Temperature:       genai.Ptr(c.config.EvaluationTemp),
		MaxOutputTokens:   c.config.EvaluationTokens,
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return nil, err
	}
	return llm.ParseEvaluation(providerName, text)
}

func (c *Client) GetProviderName() string {
	return providerName
}

func (c *Client) generate(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", classify(ctx, err)
	}

	// Extract the response text
	if result == nil {
		return "", &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeInvalidResponse,
			Message:  "No response generated",
		}
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeInvalidResponse,
			Message:  "Empty response generated",
		}
	}
	return text, nil
}

func systemInstruction(prompt string) *genai.Content {
	if prompt == "" {
		return nil
	}
	return genai.NewContentFromText(prompt, genai.RoleUser)
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return llm.WrapContextError(providerName, ctx.Err())
	}

	code := llm.ErrCodeServiceDown
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		code = llm.CodeForStatus(apiErr.Code)
	} else if isRateLimitError(err) {
		code = llm.ErrCodeRateLimit
	}
	return &llm.ProviderError{
		Provider: providerName,
		Code:     code,
		Message:  "Failed to generate content",
		Err:      err,
	}
}

// isRateLimitError catches quota failures that reach us without a status code.
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "quota")
}
