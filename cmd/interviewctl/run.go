package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mockinterview/ai/internal/interview"
	"mockinterview/ai/internal/llm"
	"mockinterview/ai/internal/llm/fallback"
	"mockinterview/ai/internal/llm/gemini"
	"mockinterview/ai/internal/llm/openai"
	"mockinterview/ai/internal/models"
	"mockinterview/ai/internal/prompts"
	"mockinterview/ai/internal/repositories"
	"mockinterview/ai/internal/scoring"
	"mockinterview/ai/internal/utils"
)

const cliOwner = "cli"

// bucketFlags are shared by every command that picks a question bucket.
type bucketFlags struct {
	role          string
	difficulty    string
	interviewType string
}

func (f *bucketFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.role, "role", "backend", "Frontend, Backend, MERN or Full Stack")
	cmd.Flags().StringVar(&f.difficulty, "difficulty", "beginner", "Beginner, Intermediate or Advanced")
	cmd.Flags().StringVar(&f.interviewType, "type", "technical", "Technical, Behavioral or Mixed")
}

func (f *bucketFlags) bucket() (fallback.Bucket, error) {
	role, err := models.ParseRole(f.role)
	if err != nil {
		return fallback.Bucket{}, err
	}
	difficulty, err := models.ParseDifficulty(f.difficulty)
	if err != nil {
		return fallback.Bucket{}, err
	}
	interviewType, err := models.ParseInterviewType(f.interviewType)
	if err != nil {
		return fallback.Bucket{}, err
	}
	return fallback.Bucket{Role: role, Difficulty: difficulty, InterviewType: interviewType}, nil
}

func newRunCmd() *cobra.Command {
	var (
		flags    bucketFlags
		total    int
		provider string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an interview, reading one answer per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, err := flags.bucket()
			if err != nil {
				return err
			}
			engine, err := newEngine(provider, utils.GetLogger())
			if err != nil {
				return err
			}
			return runInterview(cmd.Context(), engine, interview.StartParams{
				Role:           bucket.Role,
				Difficulty:     bucket.Difficulty,
				InterviewType:  bucket.InterviewType,
				TotalQuestions: total,
			}, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&total, "questions", "n", models.DefaultTotalQuestions, "Number of questions")
	cmd.Flags().StringVar(&provider, "provider", llm.FallbackName, "Question provider: fallback, openai or gemini")
	return cmd
}

// newEngine builds an in-memory engine. Remote providers read their
// credentials from the environment and fall back offline without them.
func newEngine(provider string, logger *zap.Logger) (*interview.Engine, error) {
	pm, err := prompts.NewPromptManager()
	if err != nil {
		return nil, err
	}

	reg := llm.NewRegistry()
	openai.Register(reg, nil)
	gemini.Register(reg, nil)
	fallback.Register(reg, scoring.DefaultThresholds(), logger)

	mode := llm.ModeAuto
	if provider == "" || provider == llm.FallbackName {
		mode = llm.ModeForceFallback
	}
	selection, err := reg.Resolve(llm.SelectionOptions{Mode: mode, Remote: provider, Logger: logger})
	if err != nil {
		return nil, err
	}

	return interview.NewEngine(interview.Deps{
		Store:    repositories.NewMemoryRepository(),
		Provider: selection.Provider(),
		Prompts:  pm,
		Logger:   logger,
	}), nil
}

func runInterview(ctx context.Context, engine *interview.Engine, params interview.StartParams, in io.Reader, out io.Writer) error {
	start, err := engine.Start(ctx, cliOwner, params)
	if err != nil {
		return err
	}
	session := start.Session
	fmt.Fprintf(out, "%s %s interview (%s), %d questions\n\n",
		session.Difficulty, session.Role, session.InterviewType, session.TotalQuestions)
	fmt.Fprintf(out, "Q1: %s\n> ", start.Question)

	scanner := bufio.NewScanner(in)
	asked := time.Now()
	for scanner.Scan() {
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			fmt.Fprint(out, "> ")
			continue
		}
		res, err := engine.SubmitAnswer(ctx, cliOwner, session.ID, interview.AnswerInput{
			Text:           answer,
			ElapsedSeconds: int(time.Since(asked).Seconds()),
		})
		if err != nil {
			return err
		}
		if res.Completed {
			printEvaluation(out, res.Evaluation)
			return nil
		}
		fmt.Fprintf(out, "\nQ%d: %s\n> ", res.QuestionNumber, res.NextQuestion)
		asked = time.Now()
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("input ended before the interview finished")
}

func printEvaluation(out io.Writer, eval *models.Evaluation) {
	fmt.Fprintf(out, "\nScore: %d/100\n", eval.OverallScore)
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(out, "\n%s:\n", title)
		for _, item := range items {
			fmt.Fprintf(out, "  - %s\n", item)
		}
	}
	section("Strengths", eval.Strengths)
	section("Weaknesses", eval.Weaknesses)
	section("Missed topics", eval.MissedTopics)
	section("Suggestions", eval.Suggestions)
	if eval.DetailedEvaluation != "" {
		fmt.Fprintf(out, "\n%s\n", eval.DetailedEvaluation)
	}
}
