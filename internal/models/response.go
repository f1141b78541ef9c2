package models

type StartInterviewResponse struct {
	SessionID      string `json:"sessionId"`
	FirstQuestion  string `json:"firstQuestion"`
	QuestionNumber int    `json:"questionNumber"`
	TotalQuestions int    `json:"totalQuestions"`
	Status         Status `json:"status"`
}

// SubmitAnswerResponse carries either the next question or the final evaluation.
type SubmitAnswerResponse struct {
	SessionID      string      `json:"sessionId"`
	Completed      bool        `json:"completed"`
	NextQuestion   string      `json:"nextQuestion,omitempty"`
	QuestionNumber int         `json:"questionNumber,omitempty"`
	TotalQuestions int         `json:"totalQuestions"`
	Status         Status      `json:"status"`
	Evaluation     *Evaluation `json:"evaluation,omitempty"`
	Score          *int        `json:"score,omitempty"`
}

type SessionListResponse struct {
	Count    int              `json:"count"`
	Sessions []SessionSummary `json:"sessions"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
