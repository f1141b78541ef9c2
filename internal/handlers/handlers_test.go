package handlers

import (
	"context"
	"errors"
	"text/template"

	"mockinterview/ai/internal/interview"
	"mockinterview/ai/internal/llm"
	"mockinterview/ai/internal/models"
)

type mockProvider struct {
	getProviderNameFn func() string
}

func (m *mockProvider) GenerateQuestion(context.Context, llm.QuestionRequest) (string, error) {
	return "mock question", nil
}

func (m *mockProvider) EvaluateTranscript(context.Context, llm.EvaluationRequest) (*models.Evaluation, error) {
	return &models.Evaluation{OverallScore: 50}, nil
}

func (m *mockProvider) GetProviderName() string {
	if m.getProviderNameFn == nil {
		return "mock"
	}
	return m.getProviderNameFn()
}

type mockPromptManager struct {
	getTemplatesFn func() map[string]map[string]*template.Template
}

func (m *mockPromptManager) BuildPrompt(string, string, interface{}) (string, error) {
	return "mock prompt", nil
}

func (m *mockPromptManager) GetTemplates() map[string]map[string]*template.Template {
	if m.getTemplatesFn == nil {
		return map[string]map[string]*template.Template{
			"interviewer": {
				"system": template.Must(template.New("test").Parse("test")),
			},
		}
	}
	return m.getTemplatesFn()
}

// mockInterviewer fails every call that has no function set.
type mockInterviewer struct {
	startFn     func(ctx context.Context, ownerID string, params interview.StartParams) (*interview.StartResult, error)
	submitFn    func(ctx context.Context, ownerID, sessionID string, in interview.AnswerInput) (*interview.AnswerResult, error)
	resumeFn    func(ctx context.Context, ownerID, sessionID string) (*interview.AnswerResult, error)
	getFn       func(ctx context.Context, ownerID, sessionID string) (*models.InterviewSession, error)
	listFn      func(ctx context.Context, ownerID string) ([]models.SessionSummary, error)
	analyticsFn func(ctx context.Context, ownerID string) (*models.Analytics, error)
}

var errNotStubbed = errors.New("not stubbed")

func (m *mockInterviewer) Start(ctx context.Context, ownerID string, params interview.StartParams) (*interview.StartResult, error) {
	if m.startFn == nil {
		return nil, errNotStubbed
	}
	return m.startFn(ctx, ownerID, params)
}

func (m *mockInterviewer) SubmitAnswer(ctx context.Context, ownerID, sessionID string, in interview.AnswerInput) (*interview.AnswerResult, error) {
	if m.submitFn == nil {
		return nil, errNotStubbed
	}
	return m.submitFn(ctx, ownerID, sessionID, in)
}

func (m *mockInterviewer) Resume(ctx context.Context, ownerID, sessionID string) (*interview.AnswerResult, error) {
	if m.resumeFn == nil {
		return nil, errNotStubbed
	}
	return m.resumeFn(ctx, ownerID, sessionID)
}

func (m *mockInterviewer) GetSession(ctx context.Context, ownerID, sessionID string) (*models.InterviewSession, error) {
	if m.getFn == nil {
		return nil, errNotStubbed
	}
	return m.getFn(ctx, ownerID, sessionID)
}

func (m *mockInterviewer) ListSessions(ctx context.Context, ownerID string) ([]models.SessionSummary, error) {
	if m.listFn == nil {
		return nil, errNotStubbed
	}
	return m.listFn(ctx, ownerID)
}

func (m *mockInterviewer) Analytics(ctx context.Context, ownerID string) (*models.Analytics, error) {
	if m.analyticsFn == nil {
		return nil, errNotStubbed
	}
	return m.analyticsFn(ctx, ownerID)
}
