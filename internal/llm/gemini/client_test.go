package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/genai"

	"mockinterview/ai/internal/llm"
	"mockinterview/ai/internal/models"
)

func newStubClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	server := httptest.NewServer(handler)

	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     "test",
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: server.Client(),
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    server.URL,
			APIVersion: "v1beta",
		},
	})
	if err != nil {
		t.Fatalf("failed to create genai client: %v", err)
	}

	client := &Client{
		client: genaiClient,
		config: &Config{
			APIKey:           "test",
			QuestionModel:    "question-model",
			EvaluationModel:  "evaluation-model",
			QuestionTemp:     0.7,
			QuestionTokens:   150,
			EvaluationTemp:   0.3,
			EvaluationTokens: 1200,
		},
	}

	return client, server.Close
}

func writeText(w http.ResponseWriter, text string) {
	resp := map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]any{
						{"text": text},
					},
				},
			},
		},
		"modelVersion": "test-version",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func TestClientGenerateQuestionSuccess(t *testing.T) {
	var body map[string]any
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/question-model:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		writeText(w, "What is a closure?\n")
	}

	client, cleanup := newStubClient(t, handler)
	defer cleanup()

	q, err := client.GenerateQuestion(context.Background(), llm.QuestionRequest{
		SystemPrompt: "You are an interviewer.",
		UserPrompt:   "Ask the first question.",
	})
	if err != nil {
		t.Fatalf("GenerateQuestion returned error: %v", err)
	}
	if q != "What is a closure?" {
		t.Fatalf("unexpected question %q", q)
	}
	if _, ok := body["systemInstruction"]; !ok {
		t.Fatalf("expected system instruction in request, got %v", body)
	}
	gen, _ := body["generationConfig"].(map[string]any)
	if gen["maxOutputTokens"].(float64) != 150 {
		t.Fatalf("expected maxOutputTokens 150, got %v", gen)
	}
}

func TestClientEvaluateTranscript(t *testing.T) {
	var body map[string]any
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/evaluation-model:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		writeText(w, `{"overallScore": "77", "weaknesses": "depth"}`)
	}

	client, cleanup := newStubClient(t, handler)
	defer cleanup()

	eval, err := client.EvaluateTranscript(context.Background(), llm.EvaluationRequest{
		Role:   models.RoleFrontend,
		Prompt: "evaluate",
	})
	if err != nil {
		t.Fatalf("EvaluateTranscript returned error: %v", err)
	}
	if eval.OverallScore != 77 || eval.Provider != "gemini" {
		t.Fatalf("unexpected evaluation %+v", eval)
	}
	if len(eval.Weaknesses) != 1 || eval.Strengths == nil {
		t.Fatalf("expected repaired lists, got %+v", eval)
	}
	gen, _ := body["generationConfig"].(map[string]any)
	if gen["responseMimeType"] != "application/json" {
		t.Fatalf("expected JSON mime type, got %v", gen)
	}
}

func TestClientRateLimit(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "429 rate limit", http.StatusTooManyRequests)
	}
	client, cleanup := newStubClient(t, handler)
	defer cleanup()

	_, err := client.GenerateQuestion(context.Background(), llm.QuestionRequest{UserPrompt: "q"})
	if err == nil {
		t.Fatal("expected error")
	}
	var provErr *llm.ProviderError
	if !errors.As(err, &provErr) || provErr.Code != llm.ErrCodeRateLimit {
		t.Fatalf("expected provider rate limit error, got %v", err)
	}
}

func TestClientEmptyResponse(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeText(w, "")
	}
	client, cleanup := newStubClient(t, handler)
	defer cleanup()

	_, err := client.GenerateQuestion(context.Background(), llm.QuestionRequest{UserPrompt: "q"})
	if !llm.HasCode(err, llm.ErrCodeInvalidResponse) {
		t.Fatalf("expected invalid_response for empty response, got %v", err)
	}
}

func TestGetProviderNameAndRateLimitHelper(t *testing.T) {
	client := &Client{}
	if client.GetProviderName() != "gemini" {
		t.Fatalf("expected provider name gemini")
	}

	cases := map[string]bool{
		"429 rate limit exceeded": true,
		"RESOURCE_EXHAUSTED":      true,
		"quota exceeded":          true,
		"other error":             false,
	}
	for input, expect := range cases {
		if got := isRateLimitError(errors.New(input)); got != expect {
			t.Fatalf("isRateLimitError(%s) = %v, expected %v", input, got, expect)
		}
	}
	if isRateLimitError(nil) {
		t.Fatalf("expected nil error to return false")
	}
}
