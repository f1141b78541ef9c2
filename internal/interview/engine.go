// Package interview runs the mock interview state machine: one question at a
// time, one answer per question, and a single evaluation after the last answer.
package interview

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mockinterview/ai/internal/llm"
	"mockinterview/ai/internal/models"
	"mockinterview/ai/internal/prompts"
)

const (
	initialQuestionContext = "Initial question"
	publishTimeout         = 5 * time.Second
)

type Timeouts struct {
	FirstQuestion time.Duration
	NextQuestion  time.Duration
	Evaluation    time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		FirstQuestion: 30 * time.Second,
		NextQuestion:  15 * time.Second,
		Evaluation:    45 * time.Second,
	}
}

// StageCounter counts sessions entering a lifecycle stage.
type StageCounter interface {
	SessionStage(stage string, n int)
}

type nopStages struct{}

func (nopStages) SessionStage(string, int) {}

type Deps struct {
	Store     Store
	Provider  llm.Provider
	Prompts   *prompts.PromptManager
	Timeouts  Timeouts
	Publisher Publisher
	Stages    StageCounter
	Logger    *zap.Logger
	Now       func() time.Time
	NewID     func() string
}

// Engine holds no per-session state; concurrent calls for the same session
// must be serialized by the caller.
type Engine struct {
	store     Store
	provider  llm.Provider
	prompts   *prompts.PromptManager
	timeouts  Timeouts
	publisher Publisher
	stages    StageCounter
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewEngine(d Deps) *Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.Stages == nil {
		d.Stages = nopStages{}
	}
	defaults := DefaultTimeouts()
	if d.Timeouts.FirstQuestion <= 0 {
		d.Timeouts.FirstQuestion = defaults.FirstQuestion
	}
	if d.Timeouts.NextQuestion <= 0 {
		d.Timeouts.NextQuestion = defaults.NextQuestion
	}
	if d.Timeouts.Evaluation <= 0 {
		d.Timeouts.Evaluation = defaults.Evaluation
	}
	return &Engine{
		store:     d.Store,
		provider:  d.Provider,
		prompts:   d.Prompts,
		timeouts:  d.Timeouts,
		publisher: d.Publisher,
		stages:    d.Stages,
		logger:    d.Logger,
		now:       d.Now,
		newID:     d.NewID,
	}
}

type StartParams struct {
	Role           models.Role
	Difficulty     models.Difficulty
	InterviewType  models.InterviewType
	TotalQuestions int
}

type StartResult struct {
	Session  *models.InterviewSession
	Question string
}

type AnswerInput struct {
	Text           string
	ElapsedSeconds int
	WasVoiceInput  bool
}

// AnswerResult is the outcome of an answer or a resumed step: either the next
// question or, when Completed, the evaluation.
type AnswerResult struct {
	Session        *models.InterviewSession
	Completed      bool
	NextQuestion   string
	QuestionNumber int
	Evaluation     *models.Evaluation
	Score          *int
}

func (p *StartParams) validate() error {
	if !p.Role.Valid() {
		return &ValidationError{Field: "role", Reason: fmt.Sprintf("unsupported role %q", p.Role)}
	}
	if !p.Difficulty.Valid() {
		return &ValidationError{Field: "difficulty", Reason: fmt.Sprintf("unsupported difficulty %q", p.Difficulty)}
	}
	if !p.InterviewType.Valid() {
		return &ValidationError{Field: "interviewType", Reason: fmt.Sprintf("unsupported interview type %q", p.InterviewType)}
	}
	if p.TotalQuestions == 0 {
		p.TotalQuestions = models.DefaultTotalQuestions
	}
	if p.TotalQuestions < models.MinTotalQuestions || p.TotalQuestions > models.MaxTotalQuestions {
		return &ValidationError{
			Field:  "totalQuestions",
			Reason: fmt.Sprintf("must be between %d and %d", models.MinTotalQuestions, models.MaxTotalQuestions),
		}
	}
	return nil
}

// Start generates the first question and persists a new session. Nothing is
// stored when the question cannot be produced.
func (e *Engine) Start(ctx context.Context, ownerID string, params StartParams) (*StartResult, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, &ValidationError{Field: "ownerId", Reason: "required"}
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	system, err := e.prompts.SystemPrompt(params.Role, params.Difficulty, params.InterviewType)
	if err != nil {
		return nil, fmt.Errorf("build system prompt: %w", err)
	}
	user, err := e.prompts.FirstQuestionPrompt(params.Role, params.Difficulty, params.InterviewType)
	if err != nil {
		return nil, fmt.Errorf("build first question prompt: %w", err)
	}

	question, err := e.generateQuestion(ctx, e.timeouts.FirstQuestion, llm.QuestionRequest{
		Role:           params.Role,
		Difficulty:     params.Difficulty,
		InterviewType:  params.InterviewType,
		QuestionNumber: 1,
		SystemPrompt:   system,
		UserPrompt:     user,
	})
	if err != nil {
		e.logger.Error("Failed to generate first question",
			zap.String("owner_id", ownerID),
			zap.String("role", string(params.Role)),
			zap.Error(err))
		return nil, &QuestionGenerationError{QuestionNumber: 1, Err: err}
	}

	now := e.now()
	session := &models.InterviewSession{
		ID:                    e.newID(),
		OwnerID:               ownerID,
		Role:                  params.Role,
		Difficulty:            params.Difficulty,
		InterviewType:         params.InterviewType,
		TotalQuestions:        params.TotalQuestions,
		CurrentQuestionNumber: 1,
		Questions: []models.Question{{
			Text:    question,
			Number:  1,
			AskedAt: now,
			Context: initialQuestionContext,
		}},
		Answers: []models.Answer{},
		Transcript: []models.TranscriptEntry{{
			Speaker:   models.SpeakerInterviewer,
			Text:      question,
			Timestamp: now,
		}},
		Status:    models.StatusInProgress,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	e.logger.Info("Interview started",
		zap.String("session_id", session.ID),
		zap.String("owner_id", ownerID),
		zap.String("role", string(session.Role)),
		zap.String("difficulty", string(session.Difficulty)),
		zap.String("interview_type", string(session.InterviewType)),
		zap.Int("total_questions", session.TotalQuestions))
	e.stages.SessionStage("started", 1)

	return &StartResult{Session: session, Question: question}, nil
}

// SubmitAnswer records the answer to the current question, persists it, then
// produces the next question or the evaluation.
func (e *Engine) SubmitAnswer(ctx context.Context, ownerID, sessionID string, in AnswerInput) (*AnswerResult, error) {
	session, err := e.load(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkOpen(session); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, &ValidationError{Field: "answer", Reason: "must not be empty"}
	}
	if in.ElapsedSeconds < 0 {
		return nil, &ValidationError{Field: "elapsedSeconds", Reason: "must not be negative"}
	}
	if !session.AwaitingAnswer() {
		return nil, ErrAnswerAlreadyRecorded
	}

	now := e.now()
	session.Answers = append(session.Answers, models.Answer{
		Text:           text,
		Number:         session.CurrentQuestionNumber,
		SubmittedAt:    now,
		ElapsedSeconds: in.ElapsedSeconds,
		WasVoiceInput:  in.WasVoiceInput,
	})
	session.Transcript = append(session.Transcript, models.TranscriptEntry{
		Speaker:   models.SpeakerCandidate,
		Text:      text,
		Timestamp: now,
	})
	session.UpdatedAt = now
	if err := e.store.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}

	return e.advance(ctx, session)
}

// Resume retries the step that follows an already recorded answer.
func (e *Engine) Resume(ctx context.Context, ownerID, sessionID string) (*AnswerResult, error) {
	session, err := e.load(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkOpen(session); err != nil {
		return nil, err
	}
	if session.AwaitingAnswer() {
		return nil, ErrNothingPending
	}
	e.logger.Info("Resuming pending step",
		zap.String("session_id", session.ID),
		zap.Int("question_number", session.CurrentQuestionNumber))
	return e.advance(ctx, session)
}

func (e *Engine) GetSession(ctx context.Context, ownerID, sessionID string) (*models.InterviewSession, error) {
	return e.load(ctx, ownerID, sessionID)
}

// ListSessions returns the owner's sessions, newest first.
func (e *Engine) ListSessions(ctx context.Context, ownerID string) ([]models.SessionSummary, error) {
	sessions, err := e.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	out := make([]models.SessionSummary, 0, len(sessions))
	for i := range sessions {
		out = append(out, sessions[i].Summary())
	}
	return out, nil
}

func (e *Engine) Analytics(ctx context.Context, ownerID string) (*models.Analytics, error) {
	sessions, err := e.store.ListCompletedByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list completed sessions: %w", err)
	}
	return ComputeAnalytics(sessions), nil
}

func (e *Engine) load(ctx context.Context, ownerID, sessionID string) (*models.InterviewSession, error) {
	session, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return session, nil
}

func checkOpen(session *models.InterviewSession) error {
	switch session.Status {
	case models.StatusCompleted:
		return ErrSessionAlreadyCompleted
	case models.StatusAbandoned:
		return ErrSessionAbandoned
	}
	return nil
}

// advance runs the step after the current question was answered.
func (e *Engine) advance(ctx context.Context, session *models.InterviewSession) (*AnswerResult, error) {
	if session.IsLastQuestion() {
		return e.complete(ctx, session)
	}
	return e.nextQuestion(ctx, session)
}

func (e *Engine) nextQuestion(ctx context.Context, session *models.InterviewSession) (*AnswerResult, error) {
	current := session.CurrentQuestionNumber
	next := current + 1

	system, err := e.prompts.SystemPrompt(session.Role, session.Difficulty, session.InterviewType)
	if err != nil {
		return nil, fmt.Errorf("build system prompt: %w", err)
	}
	user, err := e.prompts.ContextPrompt(prompts.ContextInput{
		Role:           session.Role,
		Difficulty:     session.Difficulty,
		InterviewType:  session.InterviewType,
		LastQuestion:   session.Questions[len(session.Questions)-1].Text,
		LastAnswer:     session.Answers[len(session.Answers)-1].Text,
		QuestionNumber: next,
	})
	if err != nil {
		return nil, fmt.Errorf("build follow-up prompt: %w", err)
	}

	question, err := e.generateQuestion(ctx, e.timeouts.NextQuestion, llm.QuestionRequest{
		Role:           session.Role,
		Difficulty:     session.Difficulty,
		InterviewType:  session.InterviewType,
		QuestionNumber: next,
		SystemPrompt:   system,
		UserPrompt:     user,
	})
	if err != nil {
		e.logger.Error("Failed to generate next question",
			zap.String("session_id", session.ID),
			zap.Int("question_number", next),
			zap.Error(err))
		return nil, &QuestionGenerationError{SessionID: session.ID, QuestionNumber: next, Err: err}
	}

	now := e.now()
	session.Questions = append(session.Questions, models.Question{
		Text:    question,
		Number:  next,
		AskedAt: now,
		Context: fmt.Sprintf("Follow-up to question %d", current),
	})
	session.Transcript = append(session.Transcript, models.TranscriptEntry{
		Speaker:   models.SpeakerInterviewer,
		Text:      question,
		Timestamp: now,
	})
	session.CurrentQuestionNumber = next
	session.UpdatedAt = now
	if err := e.store.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("record question: %w", err)
	}

	return &AnswerResult{
		Session:        session,
		NextQuestion:   question,
		QuestionNumber: next,
	}, nil
}

func (e *Engine) complete(ctx context.Context, session *models.InterviewSession) (*AnswerResult, error) {
	system, err := e.prompts.EvaluationSystemPrompt(session.Role, session.Difficulty, session.InterviewType)
	if err != nil {
		return nil, fmt.Errorf("build evaluation system prompt: %w", err)
	}
	prompt, err := e.prompts.EvaluationPrompt(session.Role, session.Difficulty, session.InterviewType, session.Transcript)
	if err != nil {
		return nil, fmt.Errorf("build evaluation prompt: %w", err)
	}

	req := llm.EvaluationRequest{
		Role:          session.Role,
		Difficulty:    session.Difficulty,
		InterviewType: session.InterviewType,
		SystemPrompt:  system,
		Prompt:        prompt,
		Answers:       session.CandidateAnswers(),
	}
	start := e.now()
	eval, err := llm.WithTimeout(ctx, e.timeouts.Evaluation, func(ctx context.Context) (*models.Evaluation, error) {
		return e.provider.EvaluateTranscript(ctx, req)
	})
	if err == nil && eval == nil {
		err = &llm.ProviderError{Provider: e.provider.GetProviderName(), Code: llm.ErrCodeInvalidResponse, Message: "no evaluation returned"}
	}
	if err != nil {
		e.logger.Error("Failed to evaluate interview",
			zap.String("session_id", session.ID),
			zap.Error(err))
		return nil, &EvaluationError{SessionID: session.ID, Err: err}
	}
	eval = llm.Repair(eval)

	now := e.now()
	score := eval.OverallScore
	session.Status = models.StatusCompleted
	session.Evaluation = eval
	session.Score = &score
	session.CompletedAt = &now
	session.UpdatedAt = now
	if err := e.store.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("record evaluation: %w", err)
	}

	e.logger.Info("Interview completed",
		zap.String("session_id", session.ID),
		zap.String("owner_id", session.OwnerID),
		zap.Int("score", score),
		zap.String("provider", eval.Provider),
		zap.Int64("elapsed_ms", now.Sub(start).Milliseconds()))
	e.stages.SessionStage("completed", 1)
	e.publish(ctx, session)

	return &AnswerResult{
		Session:    session,
		Completed:  true,
		Evaluation: eval,
		Score:      session.Score,
	}, nil
}

func (e *Engine) generateQuestion(ctx context.Context, d time.Duration, req llm.QuestionRequest) (string, error) {
	question, err := llm.WithTimeout(ctx, d, func(ctx context.Context) (string, error) {
		return e.provider.GenerateQuestion(ctx, req)
	})
	if errors.Is(err, llm.ErrTimeout) {
		return "", &llm.ProviderError{
			Provider: e.provider.GetProviderName(),
			Code:     llm.ErrCodeTimeout,
			Message:  "question generation timed out",
			Err:      err,
		}
	}
	if err != nil {
		return "", err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", &llm.ProviderError{
			Provider: e.provider.GetProviderName(),
			Code:     llm.ErrCodeInvalidResponse,
			Message:  "empty question",
		}
	}
	return question, nil
}

// publish announces completion. Failures are logged and otherwise ignored.
func (e *Engine) publish(ctx context.Context, session *models.InterviewSession) {
	if e.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := CompletedEvent{
		SessionID:     session.ID,
		OwnerID:       session.OwnerID,
		Role:          session.Role,
		Difficulty:    session.Difficulty,
		InterviewType: session.InterviewType,
		Score:         *session.Score,
		Provider:      session.Evaluation.Provider,
		Questions:     len(session.Questions),
		CompletedAt:   *session.CompletedAt,
	}
	if err := e.publisher.PublishCompleted(ctx, event); err != nil {
		e.logger.Warn("Failed to publish completion event",
			zap.String("session_id", session.ID),
			zap.Error(err))
	}
}
