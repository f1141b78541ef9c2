package llm

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"mockinterview/ai/internal/models"
	"mockinterview/ai/internal/utils"
)

const (
	DefaultRoleFeedback       = "No specific feedback provided."
	DefaultDetailedEvaluation = "Evaluation completed."
)

// rawEvaluation accepts whatever shape the model produced for each field.
type rawEvaluation struct {
	OverallScore         json.RawMessage `json:"overallScore"`
	Strengths            json.RawMessage `json:"strengths"`
	Weaknesses           json.RawMessage `json:"weaknesses"`
	MissedTopics         json.RawMessage `json:"missedTopics"`
	Suggestions          json.RawMessage `json:"suggestions"`
	RoleSpecificFeedback json.RawMessage `json:"roleSpecificFeedback"`
	DetailedEvaluation   json.RawMessage `json:"detailedEvaluation"`
}

// ParseEvaluation turns completion text into a fully populated Evaluation.
// Code fences and surrounding prose are removed, every missing or mistyped
// field gets a default and the score is clamped into [0,100].
func ParseEvaluation(provider, text string) (*models.Evaluation, error) {
	cleaned := utils.StripFences(text)
	if cleaned == "" {
		return nil, &ProviderError{Provider: provider, Code: ErrCodeInvalidResponse, Message: "empty completion"}
	}

	var raw rawEvaluation
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		if err2 := json.Unmarshal([]byte(utils.ExtractJSONObject(cleaned)), &raw); err2 != nil {
			return nil, &ProviderError{
				Provider: provider,
				Code:     ErrCodeInvalidResponse,
				Message:  "completion is not a JSON object",
				Err:      err,
			}
		}
	}

	eval := &models.Evaluation{
		OverallScore:         parseScore(raw.OverallScore),
		Strengths:            parseList(raw.Strengths),
		Weaknesses:           parseList(raw.Weaknesses),
		MissedTopics:         parseList(raw.MissedTopics),
		Suggestions:          parseList(raw.Suggestions),
		RoleSpecificFeedback: parseText(raw.RoleSpecificFeedback),
		DetailedEvaluation:   parseText(raw.DetailedEvaluation),
		Provider:             provider,
	}
	return Repair(eval), nil
}

// Repair backfills defaults on an already typed evaluation.
func Repair(eval *models.Evaluation) *models.Evaluation {
	eval.OverallScore = ClampScore(eval.OverallScore)
	eval.Strengths = nonNil(eval.Strengths)
	eval.Weaknesses = nonNil(eval.Weaknesses)
	eval.MissedTopics = nonNil(eval.MissedTopics)
	eval.Suggestions = nonNil(eval.Suggestions)
	if strings.TrimSpace(eval.RoleSpecificFeedback) == "" {
		eval.RoleSpecificFeedback = DefaultRoleFeedback
	}
	if strings.TrimSpace(eval.DetailedEvaluation) == "" {
		eval.DetailedEvaluation = DefaultDetailedEvaluation
	}
	return eval
}

func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func parseScore(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return clampFloat(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSuffix(strings.TrimSpace(s), "%")
		if slash := strings.IndexByte(s, '/'); slash >= 0 {
			s = s[:slash]
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return clampFloat(f)
		}
	}
	return 0
}

func clampFloat(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	return ClampScore(int(math.Round(math.Max(-1, math.Min(101, f)))))
}

func parseList(raw json.RawMessage) []string {
	out := []string{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return out
	}
	var items []interface{}
	if err := json.Unmarshal(raw, &items); err == nil {
		for _, item := range items {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && strings.TrimSpace(single) != "" {
		out = append(out, strings.TrimSpace(single))
	}
	return out
}

func parseText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
