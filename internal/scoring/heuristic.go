// Package scoring holds the offline evaluator used whenever no model is available
// to grade a finished interview.
package scoring

import (
	"fmt"
	"strings"

	"mockinterview/ai/internal/llm"
	"mockinterview/ai/internal/models"
	"mockinterview/ai/internal/utils"
)

const (
	baselineScore = 50
	ProviderName  = "heuristic"
)

// Thresholds tunes the heuristic. Lengths are measured in bytes of the trimmed answer.
type Thresholds struct {
	MinLength    int `env:"MIN_LENGTH" envDefault:"20"`
	StrongLength int `env:"STRONG_LENGTH" envDefault:"100"`
	// answers longer than this count as detailed; they always score as strong
	DetailedLength      int      `env:"DETAILED_LENGTH" envDefault:"150"`
	Penalty             int      `env:"PENALTY" envDefault:"10"`
	Bonus               int      `env:"BONUS" envDefault:"5"`
	BelowAverageCeiling int      `env:"BELOW_AVERAGE_CEILING" envDefault:"40"`
	PoorCeiling         int      `env:"POOR_CEILING" envDefault:"30"`
	SeverityCount       int      `env:"SEVERITY_COUNT" envDefault:"5"`
	LowConfidence       []string `env:"LOW_CONFIDENCE_PHRASES" envDefault:"don't know,not sure,wrong" envSeparator:","`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinLength:           20,
		StrongLength:        100,
		DetailedLength:      150,
		Penalty:             10,
		Bonus:               5,
		BelowAverageCeiling: 40,
		PoorCeiling:         30,
		SeverityCount:       5,
		LowConfidence:       []string{"don't know", "not sure", "wrong"},
	}
}

type Heuristic struct {
	Thresholds Thresholds
}

func NewHeuristic(t Thresholds) *Heuristic {
	return &Heuristic{Thresholds: t}
}

// Tally is the per-answer classification behind a score.
type Tally struct {
	Weak   int
	Strong int
	Score  int
}

// Classify counts weak and strong answers and derives the capped score.
func (h *Heuristic) Classify(answers []string) Tally {
	th := h.Thresholds
	tally := Tally{Score: baselineScore}

	for _, answer := range answers {
		normalized := utils.NormalizeAnswer(answer)
		switch {
		case len(normalized) < th.MinLength || h.lowConfidence(normalized):
			tally.Weak++
			tally.Score -= th.Penalty
		case len(normalized) > th.StrongLength:
			tally.Strong++
			tally.Score += th.Bonus
		}
	}

	tally.Score = llm.ClampScore(tally.Score)
	if tally.Weak > tally.Strong && tally.Score > th.BelowAverageCeiling {
		tally.Score = th.BelowAverageCeiling
	}
	if tally.Weak >= th.SeverityCount && tally.Score > th.PoorCeiling {
		tally.Score = th.PoorCeiling
	}
	return tally
}

func (h *Heuristic) lowConfidence(answer string) bool {
	for _, phrase := range h.Thresholds.LowConfidence {
		if phrase != "" && strings.Contains(answer, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// Evaluate grades the answers without any network access. The result depends
// only on the role and the answers.
func (h *Heuristic) Evaluate(role models.Role, answers []string) *models.Evaluation {
	tally := h.Classify(answers)
	severe := tally.Weak >= h.Thresholds.SeverityCount

	eval := &models.Evaluation{
		OverallScore:         tally.Score,
		Strengths:            strengths(tally),
		Weaknesses:           weaknesses(tally, severe),
		MissedTopics:         missedTopics(role),
		Suggestions:          suggestions(role, severe),
		RoleSpecificFeedback: roleFeedback(role, severe),
		DetailedEvaluation:   detailed(role, len(answers), tally),
		Provider:             ProviderName,
	}
	return llm.Repair(eval)
}

func strengths(t Tally) []string {
	if t.Strong == 0 {
		return []string{"Willingness to participate"}
	}
	depth := "Basic understanding"
	if t.Strong > 2 {
		depth = "Some technical knowledge demonstrated"
	}
	return []string{"Attempted to answer questions", "Showed engagement", depth}
}

func weaknesses(t Tally, severe bool) []string {
	if t.Weak == 0 {
		return []string{"Could provide more detailed answers", "Need deeper technical understanding"}
	}
	out := []string{
		"Several answers were incomplete or incorrect",
		"Need to strengthen fundamental concepts",
		"Should practice more before interviews",
	}
	if severe {
		out = append(out, "Multiple incorrect answers indicate significant knowledge gaps")
	}
	return out
}

func missedTopics(role models.Role) []string {
	return []string{
		fmt.Sprintf("%s specific advanced topics", role),
		"Practical implementation details",
		"Best practices and patterns",
	}
}

func suggestions(role models.Role, severe bool) []string {
	out := []string{
		"Study core concepts more thoroughly",
		"Practice explaining technical concepts",
		"Work on problem-solving skills",
		fmt.Sprintf("Focus on %s specific technologies", role),
	}
	if severe {
		out = append(out, "Consider taking a fundamentals course before advanced interviews")
	}
	return out
}

func roleFeedback(role models.Role, severe bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on your answers, you need to strengthen your %s knowledge. ", role)
	if severe {
		b.WriteString("Multiple incorrect answers suggest you should focus on fundamentals first. ")
	}
	b.WriteString("Focus on core concepts and practice explaining them clearly.")
	return b.String()
}

func detailed(role models.Role, answered int, t Tally) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The candidate answered %d questions. ", answered)
	if t.Weak > 0 {
		fmt.Fprintf(&b, "%d answer(s) were incomplete or showed gaps in understanding. ", t.Weak)
	}
	fmt.Fprintf(&b, "The overall performance indicates a %s. ", band(t.Score))
	fmt.Fprintf(&b, "Continue practicing %s concepts to improve.", role)
	return b.String()
}

func band(score int) string {
	switch {
	case score < 30:
		return "need for significant preparation and study"
	case score < 50:
		return "need for more preparation"
	case score < 70:
		return "basic understanding that needs improvement"
	default:
		return "solid foundation"
	}
}
