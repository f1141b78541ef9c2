package models

import "time"

// InterviewSession is one interview attempt from the first question to its evaluation.
// The same struct is persisted by every store backend.
type InterviewSession struct {
	ID                    string            `gorm:"primaryKey;size:64" bson:"_id" json:"id"`
	OwnerID               string            `gorm:"index;not null" bson:"ownerId" json:"ownerId"`
	Role                  Role              `gorm:"not null" bson:"role" json:"role"`
	Difficulty            Difficulty        `gorm:"not null" bson:"difficulty" json:"difficulty"`
	InterviewType         InterviewType     `gorm:"not null" bson:"interviewType" json:"interviewType"`
	TotalQuestions        int               `gorm:"not null" bson:"totalQuestions" json:"totalQuestions"`
	CurrentQuestionNumber int               `gorm:"not null" bson:"currentQuestionNumber" json:"currentQuestionNumber"`
	Questions             []Question        `gorm:"serializer:json;type:text" bson:"questions" json:"questions"`
	Answers               []Answer          `gorm:"serializer:json;type:text" bson:"answers" json:"answers"`
	Transcript            []TranscriptEntry `gorm:"serializer:json;type:text" bson:"transcript" json:"transcript"`
	Status                Status            `gorm:"index;not null" bson:"status" json:"status"`
	Evaluation            *Evaluation       `gorm:"serializer:json;type:text" bson:"evaluation,omitempty" json:"evaluation,omitempty"`
	Score                 *int              `bson:"score,omitempty" json:"score,omitempty"`
	Version               int               `gorm:"not null;default:1" bson:"version" json:"version"`
	CreatedAt             time.Time         `gorm:"index;autoCreateTime:false" bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time         `gorm:"index;autoUpdateTime:false" bson:"updatedAt" json:"updatedAt"`
	CompletedAt           *time.Time        `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	ExportedAt            *time.Time        `gorm:"index" bson:"exportedAt,omitempty" json:"-"`
}

type Question struct {
	Text    string    `bson:"text" json:"text"`
	Number  int       `bson:"number" json:"number"`
	AskedAt time.Time `bson:"askedAt" json:"askedAt"`
	Context string    `bson:"context" json:"context"`
}

type Answer struct {
	Text           string    `bson:"text" json:"text"`
	Number         int       `bson:"number" json:"number"`
	SubmittedAt    time.Time `bson:"submittedAt" json:"submittedAt"`
	ElapsedSeconds int       `bson:"elapsedSeconds" json:"elapsedSeconds"`
	WasVoiceInput  bool      `bson:"wasVoiceInput" json:"wasVoiceInput"`
}

type TranscriptEntry struct {
	Speaker   Speaker   `bson:"speaker" json:"speaker"`
	Text      string    `bson:"text" json:"text"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Evaluation is the structured result produced once a session completes.
// Every list is non-nil and both text fields are non-empty once it leaves a provider.
type Evaluation struct {
	OverallScore         int      `bson:"overallScore" json:"overallScore"`
	Strengths            []string `bson:"strengths" json:"strengths"`
	Weaknesses           []string `bson:"weaknesses" json:"weaknesses"`
	MissedTopics         []string `bson:"missedTopics" json:"missedTopics"`
	Suggestions          []string `bson:"suggestions" json:"suggestions"`
	RoleSpecificFeedback string   `bson:"roleSpecificFeedback" json:"roleSpecificFeedback"`
	DetailedEvaluation   string   `bson:"detailedEvaluation" json:"detailedEvaluation"`
	Provider             string   `bson:"provider,omitempty" json:"provider,omitempty"`
}

// AwaitingAnswer reports whether the current question still has no answer.
func (s *InterviewSession) AwaitingAnswer() bool {
	return len(s.Answers) < len(s.Questions)
}

// IsLastQuestion reports whether the current question is the final one.
func (s *InterviewSession) IsLastQuestion() bool {
	return s.CurrentQuestionNumber >= s.TotalQuestions
}

// CandidateAnswers returns the answer texts in order.
func (s *InterviewSession) CandidateAnswers() []string {
	out := make([]string, 0, len(s.Answers))
	for _, a := range s.Answers {
		out = append(out, a.Text)
	}
	return out
}

// Summary is the listing view of a session.
func (s *InterviewSession) Summary() SessionSummary {
	return SessionSummary{
		ID:            s.ID,
		Role:          s.Role,
		Difficulty:    s.Difficulty,
		InterviewType: s.InterviewType,
		Score:         s.Score,
		Status:        s.Status,
		CreatedAt:     s.CreatedAt,
		CompletedAt:   s.CompletedAt,
	}
}

type SessionSummary struct {
	ID            string        `json:"id"`
	Role          Role          `json:"role"`
	Difficulty    Difficulty    `json:"difficulty"`
	InterviewType InterviewType `json:"interviewType"`
	Score         *int          `json:"score,omitempty"`
	Status        Status        `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	CompletedAt   *time.Time    `json:"completedAt,omitempty"`
}

type ScoreDistribution struct {
	Excellent        int `json:"excellent"`
	Good             int `json:"good"`
	Average          int `json:"average"`
	NeedsImprovement int `json:"needsImprovement"`
}

type ProgressPoint struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
	Role  Role      `json:"role"`
}

type Analytics struct {
	TotalInterviews        int                `json:"totalInterviews"`
	AverageScore           float64            `json:"averageScore"`
	ScoreDistribution      ScoreDistribution  `json:"scoreDistribution"`
	RoleDistribution       map[Role]int       `json:"roleDistribution"`
	DifficultyDistribution map[Difficulty]int `json:"difficultyDistribution"`
	ProgressOverTime       []ProgressPoint    `json:"progressOverTime"`
}
