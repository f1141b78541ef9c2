package models

import "time"

// TranscriptExport is one JSONL line written by the transcript exporter.
type TranscriptExport struct {
	SessionID     string         `json:"sessionId"`
	Role          Role           `json:"role"`
	Difficulty    Difficulty     `json:"difficulty"`
	InterviewType InterviewType  `json:"interviewType"`
	Turns         []ExportedTurn `json:"turns"`
	Score         int            `json:"score"`
	Evaluation    *Evaluation    `json:"evaluation,omitempty"`
	CompletedAt   time.Time      `json:"completedAt"`
}

// ExportedTurn pairs a question with the answer given to it.
type ExportedTurn struct {
	Number   int    `json:"number"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// NewTranscriptExport pairs each question with its answer. Unanswered
// questions are exported with an empty answer.
func NewTranscriptExport(s *InterviewSession) TranscriptExport {
	answers := make(map[int]string, len(s.Answers))
	for _, a := range s.Answers {
		answers[a.Number] = a.Text
	}

	turns := make([]ExportedTurn, 0, len(s.Questions))
	for _, q := range s.Questions {
		turns = append(turns, ExportedTurn{
			Number:   q.Number,
			Question: q.Text,
			Answer:   answers[q.Number],
		})
	}

	out := TranscriptExport{
		SessionID:     s.ID,
		Role:          s.Role,
		Difficulty:    s.Difficulty,
		InterviewType: s.InterviewType,
		Turns:         turns,
		Evaluation:    s.Evaluation,
	}
	if s.Score != nil {
		out.Score = *s.Score
	}
	if s.CompletedAt != nil {
		out.CompletedAt = *s.CompletedAt
	}
	return out
}
