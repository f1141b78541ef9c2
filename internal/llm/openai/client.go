package openai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"mockinterview/ai/internal/llm"
	"mockinterview/ai/internal/models"
)

const providerName = "openai"

// Client talks to any OpenAI-compatible chat completions endpoint (Groq by default).
type Client struct {
	client *openai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	key := config.Credential()
	if key == "" {
		return nil, llm.ErrMissingCredential
	}

	clientConfig := openai.DefaultConfig(key)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

func (c *Client) GenerateQuestion(ctx context.Context, req llm.QuestionRequest) (string, error) {
	text, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model:       c.config.QuestionModel,
		Messages:    messages(req.SystemPrompt, req.UserPrompt),
		Temperature: c.config.QuestionTemp,
		MaxTokens:   c.config.QuestionTokens,
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) EvaluateTranscript(ctx context.Context, req llm.EvaluationRequest) (*models.Evaluation, error) {
	text, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model:       c.config.EvaluationModel,
		Messages:    messages(req.SystemPrompt, req.Prompt),
		Temperature: c.config.EvaluationTemp,
		MaxTokens:   c.config.EvaluationTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, err
	}
	return llm.ParseEvaluation(providerName, text)
}

func (c *Client) GetProviderName() string {
	return providerName
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeInvalidResponse,
			Message:  "No choices returned",
		}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeInvalidResponse,
			Message:  "Empty response generated",
		}
	}
	return text, nil
}

func messages(system, user string) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	return append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: user})
}

// classify maps client errors onto provider error codes.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return llm.WrapContextError(providerName, ctx.Err())
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	code := llm.ErrCodeServiceDown
	if status != 0 {
		code = llm.CodeForStatus(status)
	}
	return &llm.ProviderError{
		Provider: providerName,
		Code:     code,
		Message:  "Chat completion failed",
		Err:      err,
	}
}
