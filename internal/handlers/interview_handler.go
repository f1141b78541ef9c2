package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mockinterview/ai/internal/interview"
	"mockinterview/ai/internal/llm"
	"mockinterview/ai/internal/middleware"
	"mockinterview/ai/internal/models"
	"mockinterview/ai/internal/utils"
)

// Interviewer is the slice of the interview engine the HTTP layer drives.
type Interviewer interface {
	Start(ctx context.Context, ownerID string, params interview.StartParams) (*interview.StartResult, error)
	SubmitAnswer(ctx context.Context, ownerID, sessionID string, in interview.AnswerInput) (*interview.AnswerResult, error)
	Resume(ctx context.Context, ownerID, sessionID string) (*interview.AnswerResult, error)
	GetSession(ctx context.Context, ownerID, sessionID string) (*models.InterviewSession, error)
	ListSessions(ctx context.Context, ownerID string) ([]models.SessionSummary, error)
	Analytics(ctx context.Context, ownerID string) (*models.Analytics, error)
}

type InterviewHandler struct {
	engine Interviewer
	locker SessionLocker
	logger *zap.Logger
}

func NewInterviewHandler(engine Interviewer, locker SessionLocker, logger *zap.Logger) *InterviewHandler {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterviewHandler{
		engine: engine,
		locker: locker,
		logger: logger,
	}
}

func (h *InterviewHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartInterviewRequest](r)
	owner := middleware.OwnerID(r)

	result, err := h.engine.Start(r.Context(), owner, interview.StartParams{
		Role:           models.Role(req.Role),
		Difficulty:     models.Difficulty(req.Difficulty),
		InterviewType:  models.InterviewType(req.InterviewType),
		TotalQuestions: req.TotalQuestions,
	})
	if err != nil {
		h.writeError(w, err, zap.String("owner_id", owner))
		return
	}

	h.logger.Info("Interview started",
		zap.String("session_id", result.Session.ID),
		zap.String("owner_id", owner),
		zap.String("role", req.Role))

	utils.JSON(w, http.StatusCreated, models.StartInterviewResponse{
		SessionID:      result.Session.ID,
		FirstQuestion:  result.Question,
		QuestionNumber: result.Session.CurrentQuestionNumber,
		TotalQuestions: result.Session.TotalQuestions,
		Status:         result.Session.Status,
	})
}

// lockOwned checks ownership before locking so other users cannot hold a session busy.
func (h *InterviewHandler) lockOwned(w http.ResponseWriter, r *http.Request, owner, sessionID string) (func(), bool) {
	if _, err := h.engine.GetSession(r.Context(), owner, sessionID); err != nil {
		h.writeError(w, err, zap.String("session_id", sessionID), zap.String("owner_id", owner))
		return nil, false
	}
	unlock, err := h.locker.Lock(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err, zap.String("session_id", sessionID))
		return nil, false
	}
	return unlock, true
}

func (h *InterviewHandler) SubmitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SubmitAnswerRequest](r)
	owner := middleware.OwnerID(r)
	sessionID := chi.URLParam(r, "sessionId")

	unlock, ok := h.lockOwned(w, r, owner, sessionID)
	if !ok {
		return
	}
	defer unlock()

	result, err := h.engine.SubmitAnswer(r.Context(), owner, sessionID, interview.AnswerInput{
		Text:           req.Answer,
		ElapsedSeconds: req.ElapsedSeconds,
		WasVoiceInput:  req.WasVoiceInput,
	})
	if err != nil {
		h.writeError(w, err, zap.String("session_id", sessionID), zap.String("owner_id", owner))
		return
	}
	utils.JSON(w, http.StatusOK, answerResponse(result))
}

func (h *InterviewHandler) ResumeHandler(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerID(r)
	sessionID := chi.URLParam(r, "sessionId")

	unlock, ok := h.lockOwned(w, r, owner, sessionID)
	if !ok {
		return
	}
	defer unlock()

	result, err := h.engine.Resume(r.Context(), owner, sessionID)
	if err != nil {
		h.writeError(w, err, zap.String("session_id", sessionID), zap.String("owner_id", owner))
		return
	}
	utils.JSON(w, http.StatusOK, answerResponse(result))
}

func (h *InterviewHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	session, err := h.engine.GetSession(r.Context(), middleware.OwnerID(r), sessionID)
	if err != nil {
		h.writeError(w, err, zap.String("session_id", sessionID))
		return
	}
	utils.JSON(w, http.StatusOK, session)
}

func (h *InterviewHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.engine.ListSessions(r.Context(), middleware.OwnerID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, models.SessionListResponse{
		Count:    len(sessions),
		Sessions: sessions,
	})
}

func (h *InterviewHandler) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.engine.Analytics(r.Context(), middleware.OwnerID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, analytics)
}

func answerResponse(result *interview.AnswerResult) models.SubmitAnswerResponse {
	resp := models.SubmitAnswerResponse{
		SessionID:      result.Session.ID,
		Completed:      result.Completed,
		TotalQuestions: result.Session.TotalQuestions,
		Status:         result.Session.Status,
	}
	if result.Completed {
		resp.Evaluation = result.Evaluation
		resp.Score = result.Score
	} else {
		resp.NextQuestion = result.NextQuestion
		resp.QuestionNumber = result.QuestionNumber
	}
	return resp
}

// errorStatus maps engine and provider failures onto HTTP statuses. Nothing
// that failed is ever reported with a 2xx.
func errorStatus(err error) (int, models.ErrorResponse) {
	var validation *interview.ValidationError
	var questionErr *interview.QuestionGenerationError
	var evalErr *interview.EvaluationError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, models.ErrorResponse{
			Code:    "validation_error",
			Message: validation.Error(),
			Details: []models.ValidationErrorDetail{{Field: validation.Field, Reason: validation.Reason}},
		}
	case errors.Is(err, interview.ErrNotOwner):
		return http.StatusForbidden, models.ErrorResponse{Code: "forbidden", Message: "Interview session belongs to another user"}
	case errors.Is(err, interview.ErrSessionNotFound):
		return http.StatusNotFound, models.ErrorResponse{Code: "session_not_found", Message: "Interview session not found"}
	case errors.Is(err, interview.ErrSessionAlreadyCompleted):
		return http.StatusConflict, models.ErrorResponse{Code: "session_completed", Message: "Interview session is already completed"}
	case errors.Is(err, interview.ErrSessionAbandoned):
		return http.StatusConflict, models.ErrorResponse{Code: "session_abandoned", Message: "Interview session was abandoned"}
	case errors.Is(err, interview.ErrAnswerAlreadyRecorded):
		return http.StatusConflict, models.ErrorResponse{Code: "answer_already_recorded", Message: "The current question is already answered; resume the session instead"}
	case errors.Is(err, interview.ErrNothingPending):
		return http.StatusConflict, models.ErrorResponse{Code: "nothing_pending", Message: "The current question is still waiting for an answer"}
	case errors.Is(err, interview.ErrVersionConflict):
		return http.StatusConflict, models.ErrorResponse{Code: "version_conflict", Message: "Interview session was modified concurrently"}
	case errors.Is(err, ErrSessionLocked):
		return http.StatusConflict, models.ErrorResponse{Code: "session_busy", Message: "Another request is already updating this session"}
	case llm.HasCode(err, llm.ErrCodeRateLimit):
		return http.StatusTooManyRequests, models.ErrorResponse{Code: "rate_limited", Message: "AI provider rate limit reached, try again shortly"}
	case errors.As(err, &questionErr):
		if questionErr.Timeout() {
			return http.StatusGatewayTimeout, models.ErrorResponse{Code: "question_timeout", Message: "Timed out generating the next question"}
		}
		return http.StatusBadGateway, models.ErrorResponse{Code: "question_generation_failed", Message: "Failed to generate the next question"}
	case errors.As(err, &evalErr):
		if evalErr.Timeout() {
			return http.StatusGatewayTimeout, models.ErrorResponse{Code: "evaluation_timeout", Message: "Timed out evaluating the interview; resume to retry"}
		}
		return http.StatusBadGateway, models.ErrorResponse{Code: "evaluation_failed", Message: "Failed to evaluate the interview; resume to retry"}
	}
	return http.StatusInternalServerError, models.ErrorResponse{Code: "internal_error", Message: "Internal server error"}
}

func (h *InterviewHandler) writeError(w http.ResponseWriter, err error, fields ...zap.Field) {
	status, body := errorStatus(err)
	fields = append(fields, zap.Error(err), zap.Int("status", status))
	if status >= http.StatusInternalServerError {
		h.logger.Error("Interview request failed", fields...)
	} else {
		h.logger.Info("Interview request rejected", fields...)
	}
	utils.JSON(w, status, body)
}
