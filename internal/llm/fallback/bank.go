package fallback

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"mockinterview/ai/internal/models"
)

//go:embed questions.yaml
var questionsYAML []byte

// Bucket identifies one list of canned questions.
type Bucket struct {
	Role          models.Role
	Difficulty    models.Difficulty
	InterviewType models.InterviewType
}

func (b Bucket) String() string {
	return fmt.Sprintf("%s/%s/%s", b.Role, b.Difficulty, b.InterviewType)
}

// Bank is the offline question table.
type Bank struct {
	questions map[Bucket][]string
}

// LoadBank parses the embedded question table.
func LoadBank() (*Bank, error) {
	return ParseBank(questionsYAML)
}

// ParseBank builds a Bank from YAML nested as role -> difficulty -> type -> questions.
func ParseBank(data []byte) (*Bank, error) {
	var raw map[string]map[string]map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}

	bank := &Bank{questions: make(map[Bucket][]string)}
	for roleKey, difficulties := range raw {
		role, err := models.ParseRole(roleKey)
		if err != nil {
			return nil, fmt.Errorf("question bank: %w", err)
		}
		for difficultyKey, types := range difficulties {
			difficulty, err := models.ParseDifficulty(difficultyKey)
			if err != nil {
				return nil, fmt.Errorf("question bank: %w", err)
			}
			for typeKey, questions := range types {
				interviewType, err := models.ParseInterviewType(typeKey)
				if err != nil {
					return nil, fmt.Errorf("question bank: %w", err)
				}
				if len(questions) == 0 {
					continue
				}
				bank.questions[Bucket{role, difficulty, interviewType}] = questions
			}
		}
	}
	return bank, nil
}

// Questions returns the list that serves b after applying the default chain:
// unknown difficulty falls back to Intermediate, unknown role to MERN and
// unknown type to Technical. The second result is the bucket actually used.
func (b *Bank) Questions(want Bucket) ([]string, Bucket) {
	role := want.Role
	if !b.hasRole(role) {
		role = models.RoleMERN
	}
	difficulty := want.Difficulty
	if !b.hasDifficulty(role, difficulty) {
		difficulty = models.DifficultyIntermediate
	}
	used := Bucket{role, difficulty, want.InterviewType}
	if questions, ok := b.questions[used]; ok {
		return questions, used
	}
	used.InterviewType = models.InterviewTechnical
	return b.questions[used], used
}

// Question returns the n-th question (1-based) for the bucket, cycling through the list.
func (b *Bank) Question(want Bucket, n int) string {
	questions, _ := b.Questions(want)
	if len(questions) == 0 {
		return fmt.Sprintf("Tell me about your experience with %s development.", want.Role)
	}
	if n < 1 {
		n = 1
	}
	return questions[(n-1)%len(questions)]
}

// Size is the number of populated buckets.
func (b *Bank) Size() int {
	return len(b.questions)
}

func (b *Bank) hasRole(role models.Role) bool {
	for bucket := range b.questions {
		if bucket.Role == role {
			return true
		}
	}
	return false
}

func (b *Bank) hasDifficulty(role models.Role, difficulty models.Difficulty) bool {
	for bucket := range b.questions {
		if bucket.Role == role && bucket.Difficulty == difficulty {
			return true
		}
	}
	return false
}
