// Package fallback answers every provider call from local data: questions come
// from an embedded bank and evaluations from the heuristic scorer.
package fallback

import (
	"context"

	"go.uber.org/zap"

	"mockinterview/ai/internal/llm"
	"mockinterview/ai/internal/models"
	"mockinterview/ai/internal/scoring"
)

type Provider struct {
	bank      *Bank
	heuristic *scoring.Heuristic
	logger    *zap.Logger
}

func NewProvider(bank *Bank, heuristic *scoring.Heuristic, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{bank: bank, heuristic: heuristic, logger: logger}
}

// GenerateQuestion ignores the prompts and picks the req.QuestionNumber-th
// question from the matching bucket.
func (p *Provider) GenerateQuestion(_ context.Context, req llm.QuestionRequest) (string, error) {
	want := Bucket{Role: req.Role, Difficulty: req.Difficulty, InterviewType: req.InterviewType}
	question := p.bank.Question(want, req.QuestionNumber)

	_, used := p.bank.Questions(want)
	p.logger.Debug("Serving offline question",
		zap.String("bucket", used.String()),
		zap.Int("question_number", req.QuestionNumber))
	return question, nil
}

func (p *Provider) EvaluateTranscript(_ context.Context, req llm.EvaluationRequest) (*models.Evaluation, error) {
	eval := p.heuristic.Evaluate(req.Role, req.Answers)
	eval.Provider = llm.FallbackName
	return eval, nil
}

func (p *Provider) GetProviderName() string {
	return llm.FallbackName
}
