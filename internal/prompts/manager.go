package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"mockinterview/ai/internal/models"
	"mockinterview/ai/internal/utils"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

// Truncation limits applied to text fed back to the model.
const (
	MaxQuestionContext    = 100
	MaxAnswerContext      = 150
	EvaluationTurns       = 10
	EvaluationTurnChars   = 200
	EvaluationPromptChars = 2000
)

const defaultKey = "default"

// PromptProvider is what handlers need to know about prompt templates.
type PromptProvider interface {
	BuildPrompt(mode, variant string, data interface{}) (string, error)
	GetTemplates() map[string]map[string]*template.Template
}

type PromptManager struct {
	templates  map[string]map[string]*template.Template // mode -> variant -> template
	vocabulary map[string]map[string]string             // vocabulary name -> key -> phrase
}

// loaded prompt template file
type PromptTemplate struct {
	Vocabulary map[string]map[string]string `yaml:"vocabulary"`
	Variants   map[string]string            `yaml:"variants"`
}

// PromptData is the value every template is rendered against.
type PromptData struct {
	Role              string
	Difficulty        string
	InterviewType     string
	RoleFocus         string
	DifficultyTone    string
	ExampleTechnology string
	ExampleTarget     string
	TypeRules         string
	TypeReminder      string
	LastQuestion      string
	LastAnswer        string
	QuestionNumber    int
	Conversation      string
}

// ContextInput describes the turn a follow-up question is built from.
type ContextInput struct {
	Role           models.Role
	Difficulty     models.Difficulty
	InterviewType  models.InterviewType
	LastQuestion   string
	LastAnswer     string
	QuestionNumber int
}

// creates a new prompt manager, loads templates and renders each one once
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{
		templates:  make(map[string]map[string]*template.Template),
		vocabulary: make(map[string]map[string]string),
	}
	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	if err := pm.verify(); err != nil {
		return nil, fmt.Errorf("failed to render prompt templates: %w", err)
	}
	return pm, nil
}

// builds a prompt for the given mode and variant
func (pm *PromptManager) BuildPrompt(mode, variant string, data interface{}) (string, error) {
	modeTemplates, exists := pm.templates[mode]
	if !exists {
		return "", fmt.Errorf("template not found for mode: %s", mode)
	}
	tmpl, exists := modeTemplates[variant]
	if !exists {
		return "", fmt.Errorf("variant '%s' not found for mode '%s'", variant, mode)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s/%s: %w", mode, variant, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (pm *PromptManager) GetTemplates() map[string]map[string]*template.Template {
	return pm.templates
}

// SystemPrompt is the interviewer instruction for a session configuration.
func (pm *PromptManager) SystemPrompt(role models.Role, difficulty models.Difficulty, interviewType models.InterviewType) (string, error) {
	data, err := pm.baseData(role, difficulty, interviewType)
	if err != nil {
		return "", err
	}
	return pm.BuildPrompt("interviewer", "system", data)
}

// FirstQuestionPrompt asks for the opening question.
func (pm *PromptManager) FirstQuestionPrompt(role models.Role, difficulty models.Difficulty, interviewType models.InterviewType) (string, error) {
	data, err := pm.baseData(role, difficulty, interviewType)
	if err != nil {
		return "", err
	}
	return pm.BuildPrompt("interviewer", "first_"+typeKey(interviewType), data)
}

// ContextPrompt asks for question number in.QuestionNumber given the previous turn.
func (pm *PromptManager) ContextPrompt(in ContextInput) (string, error) {
	data, err := pm.baseData(in.Role, in.Difficulty, in.InterviewType)
	if err != nil {
		return "", err
	}
	data.LastQuestion = utils.Truncate(in.LastQuestion, MaxQuestionContext)
	data.LastAnswer = utils.Truncate(in.LastAnswer, MaxAnswerContext)
	data.QuestionNumber = in.QuestionNumber
	return pm.BuildPrompt("interviewer", "follow_up", data)
}

// EvaluationSystemPrompt is the grader instruction.
func (pm *PromptManager) EvaluationSystemPrompt(role models.Role, difficulty models.Difficulty, interviewType models.InterviewType) (string, error) {
	return pm.BuildPrompt("evaluator", "system", pm.labels(role, difficulty, interviewType))
}

// EvaluationPrompt renders the most recent transcript turns into the grading request.
// The stored transcript is only read.
func (pm *PromptManager) EvaluationPrompt(role models.Role, difficulty models.Difficulty, interviewType models.InterviewType, transcript []models.TranscriptEntry) (string, error) {
	data := pm.labels(role, difficulty, interviewType)

	overhead, err := pm.BuildPrompt("evaluator", "evaluation", data)
	if err != nil {
		return "", err
	}
	budget := EvaluationPromptChars - utf8.RuneCountInString(overhead)
	data.Conversation = recentConversation(transcript, budget)

	return pm.BuildPrompt("evaluator", "evaluation", data)
}

// FormatConversation keeps the last EvaluationTurns entries, each cut to
// EvaluationTurnChars and prefixed with I (interviewer) or C (candidate).
func FormatConversation(transcript []models.TranscriptEntry) string {
	return strings.Join(conversationLines(transcript), "\n")
}

// recentConversation drops the oldest lines until the rest fits in budget runes.
func recentConversation(transcript []models.TranscriptEntry, budget int) string {
	lines := conversationLines(transcript)
	size := 0
	for _, line := range lines {
		size += utf8.RuneCountInString(line)
	}
	size += len(lines) - 1
	for len(lines) > 1 && size > budget {
		size -= utf8.RuneCountInString(lines[0]) + 1
		lines = lines[1:]
	}
	return utils.Truncate(strings.Join(lines, "\n"), budget)
}

func conversationLines(transcript []models.TranscriptEntry) []string {
	start := 0
	if len(transcript) > EvaluationTurns {
		start = len(transcript) - EvaluationTurns
	}
	lines := make([]string, 0, len(transcript)-start)
	for _, entry := range transcript[start:] {
		prefix := "C"
		if entry.Speaker == models.SpeakerInterviewer {
			prefix = "I"
		}
		lines = append(lines, prefix+": "+utils.Truncate(entry.Text, EvaluationTurnChars))
	}
	return lines
}

func (pm *PromptManager) labels(role models.Role, difficulty models.Difficulty, interviewType models.InterviewType) PromptData {
	return PromptData{
		Role:          string(role),
		Difficulty:    string(difficulty),
		InterviewType: string(interviewType),
	}
}

// baseData fills the vocabulary lookups and pre-renders the type-specific blocks.
func (pm *PromptManager) baseData(role models.Role, difficulty models.Difficulty, interviewType models.InterviewType) (PromptData, error) {
	data := pm.labels(role, difficulty, interviewType)
	data.RoleFocus = pm.lookup("role_focus", string(role))
	data.DifficultyTone = pm.lookup("difficulty_tone", string(difficulty))
	data.ExampleTechnology = pm.lookup("example_technology", string(role))
	data.ExampleTarget = pm.lookup("example_target", string(role))

	rules, err := pm.BuildPrompt("interviewer", "rules_"+typeKey(interviewType), data)
	if err != nil {
		return data, err
	}
	reminder, err := pm.BuildPrompt("interviewer", "reminder_"+typeKey(interviewType), data)
	if err != nil {
		return data, err
	}
	data.TypeRules = rules
	data.TypeReminder = reminder
	return data, nil
}

// lookup returns the phrase for key, or the vocabulary's default entry.
func (pm *PromptManager) lookup(vocabulary, key string) string {
	phrases := pm.vocabulary[vocabulary]
	if phrase, ok := phrases[key]; ok {
		return phrase
	}
	return phrases[defaultKey]
}

// typeKey maps unknown interview types onto the mixed variants.
func typeKey(t models.InterviewType) string {
	switch t {
	case models.InterviewTechnical:
		return "technical"
	case models.InterviewBehavioral:
		return "behavioral"
	default:
		return "mixed"
	}
}

// loadPrompts loads all YAML prompt files from the embedded filesystem
func (pm *PromptManager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var promptTemplate PromptTemplate
		if err := yaml.Unmarshal(data, &promptTemplate); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		pm.templates[name] = make(map[string]*template.Template)
		for variant, text := range promptTemplate.Variants {
			tmpl, err := template.New(name + "/" + variant).Option("missingkey=error").Parse(text)
			if err != nil {
				return fmt.Errorf("failed to compile %s/%s: %w", name, variant, err)
			}
			pm.templates[name][variant] = tmpl
		}
		for vocabulary, phrases := range promptTemplate.Vocabulary {
			pm.vocabulary[vocabulary] = phrases
		}
	}
	return nil
}

// verify renders every builder once with sample values.
func (pm *PromptManager) verify() error {
	for _, t := range []models.InterviewType{models.InterviewTechnical, models.InterviewBehavioral, models.InterviewMixed} {
		if _, err := pm.SystemPrompt(models.RoleBackend, models.DifficultyBeginner, t); err != nil {
			return err
		}
		if _, err := pm.FirstQuestionPrompt(models.RoleBackend, models.DifficultyBeginner, t); err != nil {
			return err
		}
		if _, err := pm.ContextPrompt(ContextInput{Role: models.RoleBackend, Difficulty: models.DifficultyBeginner, InterviewType: t, QuestionNumber: 2}); err != nil {
			return err
		}
	}
	if _, err := pm.EvaluationSystemPrompt(models.RoleBackend, models.DifficultyBeginner, models.InterviewMixed); err != nil {
		return err
	}
	_, err := pm.EvaluationPrompt(models.RoleBackend, models.DifficultyBeginner, models.InterviewMixed, nil)
	return err
}
