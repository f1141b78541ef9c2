package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mockinterview/ai/internal/llm"
	"mockinterview/ai/internal/models"
)

func newStubClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		GroqAPIKey:       "test-key",
		BaseURL:          server.URL,
		QuestionModel:    "question-model",
		EvaluationModel:  "evaluation-model",
		QuestionTemp:     0.7,
		QuestionTokens:   150,
		EvaluationTemp:   0.3,
		EvaluationTokens: 1200,
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "stub",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	})
}

func TestGenerateQuestionSuccess(t *testing.T) {
	var captured map[string]any
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		json.NewDecoder(r.Body).Decode(&captured)
		writeCompletion(w, "  Explain the event loop.  ")
	})

	q, err := client.GenerateQuestion(context.Background(), llm.QuestionRequest{
		SystemPrompt: "system",
		UserPrompt:   "ask something",
	})
	if err != nil {
		t.Fatalf("GenerateQuestion returned error: %v", err)
	}
	if q != "Explain the event loop." {
		t.Fatalf("unexpected question %q", q)
	}
	if captured["model"] != "question-model" {
		t.Fatalf("expected question model, got %v", captured["model"])
	}
	if captured["max_tokens"].(float64) != 150 {
		t.Fatalf("expected max_tokens 150, got %v", captured["max_tokens"])
	}
	if msgs := captured["messages"].([]any); len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", msgs)
	}
}

func TestEvaluateTranscriptParsesJSON(t *testing.T) {
	var captured map[string]any
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		writeCompletion(w, "```json\n{\"overallScore\": 68, \"strengths\": [\"clear\"]}\n```")
	})

	eval, err := client.EvaluateTranscript(context.Background(), llm.EvaluationRequest{
		Role:   models.RoleBackend,
		Prompt: "evaluate",
	})
	if err != nil {
		t.Fatalf("EvaluateTranscript returned error: %v", err)
	}
	if eval.OverallScore != 68 || eval.Provider != "openai" {
		t.Fatalf("unexpected evaluation %+v", eval)
	}
	if eval.DetailedEvaluation != llm.DefaultDetailedEvaluation {
		t.Fatalf("expected repaired detailed evaluation, got %q", eval.DetailedEvaluation)
	}
	if captured["model"] != "evaluation-model" {
		t.Fatalf("expected evaluation model, got %v", captured["model"])
	}
	format, ok := captured["response_format"].(map[string]any)
	if !ok || format["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", captured["response_format"])
	}
}

func TestClientErrorCodes(t *testing.T) {
	cases := map[int]string{
		http.StatusUnauthorized:       llm.ErrCodeAPIKey,
		http.StatusTooManyRequests:    llm.ErrCodeRateLimit,
		http.StatusServiceUnavailable: llm.ErrCodeServiceDown,
	}
	for status, want := range cases {
		client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "nope", "type": "error"},
			})
		})

		_, err := client.GenerateQuestion(context.Background(), llm.QuestionRequest{UserPrompt: "q"})
		var provErr *llm.ProviderError
		if !errors.As(err, &provErr) || provErr.Code != want {
			t.Fatalf("status %d: expected code %s, got %v", status, want, err)
		}
	}
}

func TestClientEmptyCompletion(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "   ")
	})

	_, err := client.GenerateQuestion(context.Background(), llm.QuestionRequest{UserPrompt: "q"})
	if !llm.HasCode(err, llm.ErrCodeInvalidResponse) {
		t.Fatalf("expected invalid_response, got %v", err)
	}
}

func TestClientDeadlineIsTimeout(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := client.GenerateQuestion(ctx, llm.QuestionRequest{UserPrompt: "q"})
	if !llm.HasCode(err, llm.ErrCodeTimeout) {
		t.Fatalf("expected timeout code, got %v", err)
	}
}

func TestNewClientRequiresCredential(t *testing.T) {
	if _, err := NewClient(&Config{GroqAPIKey: placeholderKey}); !errors.Is(err, llm.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}
