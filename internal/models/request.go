package models

import (
	"fmt"
	"strings"
)

type StartInterviewRequest struct {
	Role           string `json:"role"`
	Difficulty     string `json:"difficulty"`
	InterviewType  string `json:"interviewType"`
	TotalQuestions int    `json:"totalQuestions"`
}

// implements the Validator interface
func (r *StartInterviewRequest) Validate() error {
	if strings.TrimSpace(r.Role) == "" {
		return &ErrorResponse{Code: "missing_role", Message: "role is required"}
	}
	role, err := ParseRole(r.Role)
	if err != nil {
		return &ErrorResponse{
			Code:    "invalid_role",
			Message: "role must be one of: " + strings.Join(RolesList(), ", "),
		}
	}
	r.Role = string(role)

	if strings.TrimSpace(r.Difficulty) == "" {
		return &ErrorResponse{Code: "missing_difficulty", Message: "difficulty is required"}
	}
	difficulty, err := ParseDifficulty(r.Difficulty)
	if err != nil {
		return &ErrorResponse{
			Code:    "invalid_difficulty",
			Message: "difficulty must be one of: " + strings.Join(DifficultiesList(), ", "),
		}
	}
	r.Difficulty = string(difficulty)

	if strings.TrimSpace(r.InterviewType) == "" {
		return &ErrorResponse{Code: "missing_interview_type", Message: "interviewType is required"}
	}
	interviewType, err := ParseInterviewType(r.InterviewType)
	if err != nil {
		return &ErrorResponse{
			Code:    "invalid_interview_type",
			Message: "interviewType must be one of: " + strings.Join(InterviewTypesList(), ", "),
		}
	}
	r.InterviewType = string(interviewType)

	if r.TotalQuestions == 0 {
		r.TotalQuestions = DefaultTotalQuestions
	}
	if r.TotalQuestions < RecommendedMinQuestions || r.TotalQuestions > RecommendedMaxQuestions {
		return &ErrorResponse{
			Code:    "invalid_total_questions",
			Message: fmt.Sprintf("totalQuestions must be between %d and %d", RecommendedMinQuestions, RecommendedMaxQuestions),
		}
	}
	return nil
}

type SubmitAnswerRequest struct {
	Answer         string `json:"answer"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
	WasVoiceInput  bool   `json:"wasVoiceInput"`
}

func (r *SubmitAnswerRequest) Validate() error {
	r.Answer = strings.TrimSpace(r.Answer)
	if r.Answer == "" {
		return &ErrorResponse{Code: "missing_answer", Message: "answer is required"}
	}
	if r.ElapsedSeconds < 0 {
		return &ErrorResponse{
			Code:    "invalid_elapsed_seconds",
			Message: "elapsedSeconds must not be negative",
			Details: []ValidationErrorDetail{{Field: "elapsedSeconds", Reason: "negative"}},
		}
	}
	return nil
}
