package models

import (
	"fmt"
	"strings"
)

// Role is the position a mock interview is held for.
type Role string

const (
	RoleFrontend  Role = "Frontend"
	RoleBackend   Role = "Backend"
	RoleMERN      Role = "MERN"
	RoleFullStack Role = "Full Stack"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

type InterviewType string

const (
	InterviewTechnical  InterviewType = "Technical"
	InterviewBehavioral InterviewType = "Behavioral"
	InterviewMixed      InterviewType = "Mixed"
)

type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

type Speaker string

const (
	SpeakerInterviewer Speaker = "interviewer"
	SpeakerCandidate   Speaker = "candidate"
)

const (
	DefaultTotalQuestions = 7

	// bounds accepted by the engine itself
	MinTotalQuestions = 1
	MaxTotalQuestions = 20

	// bounds accepted from HTTP clients
	RecommendedMinQuestions = 5
	RecommendedMaxQuestions = 10
)

var roleAliases = map[string]Role{
	"frontend":   RoleFrontend,
	"backend":    RoleBackend,
	"mern":       RoleMERN,
	"full stack": RoleFullStack,
	"fullstack":  RoleFullStack,
	"full-stack": RoleFullStack,
}

var difficultyAliases = map[string]Difficulty{
	"beginner":     DifficultyBeginner,
	"intermediate": DifficultyIntermediate,
	"advanced":     DifficultyAdvanced,
}

var interviewTypeAliases = map[string]InterviewType{
	"technical":   InterviewTechnical,
	"behavioral":  InterviewBehavioral,
	"behavioural": InterviewBehavioral,
	"hr":          InterviewBehavioral,
	"mixed":       InterviewMixed,
}

// ParseRole accepts any casing and the common full-stack spellings.
func ParseRole(s string) (Role, error) {
	if r, ok := roleAliases[normalize(s)]; ok {
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func ParseDifficulty(s string) (Difficulty, error) {
	if d, ok := difficultyAliases[normalize(s)]; ok {
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// ParseInterviewType maps the legacy "HR" label onto Behavioral.
func ParseInterviewType(s string) (InterviewType, error) {
	if t, ok := interviewTypeAliases[normalize(s)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown interview type %q", s)
}

func (r Role) Valid() bool {
	switch r {
	case RoleFrontend, RoleBackend, RoleMERN, RoleFullStack:
		return true
	}
	return false
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

func (t InterviewType) Valid() bool {
	switch t {
	case InterviewTechnical, InterviewBehavioral, InterviewMixed:
		return true
	}
	return false
}

func RolesList() []string {
	return []string{string(RoleFrontend), string(RoleBackend), string(RoleMERN), string(RoleFullStack)}
}

func DifficultiesList() []string {
	return []string{string(DifficultyBeginner), string(DifficultyIntermediate), string(DifficultyAdvanced)}
}

func InterviewTypesList() []string {
	return []string{string(InterviewTechnical), string(InterviewBehavioral), string(InterviewMixed)}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
