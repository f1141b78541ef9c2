package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("Truncate: expected unchanged string, got %q", got)
	}
	if got := Truncate("abcdefghij", 4); got != "abcd..." {
		t.Fatalf("Truncate: expected abcd..., got %q", got)
	}
	if got := Truncate("héllo wörld", 5); got != "héllo..." {
		t.Fatalf("Truncate: expected rune-aware cut, got %q", got)
	}
	if got := Truncate("anything", 0); got != "" {
		t.Fatalf("Truncate: expected empty string for zero max, got %q", got)
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```":   `{"a":1}`,
		"```\n{\"a\":1}\n```\n":     `{"a":1}`,
		"```json{\"a\":1}```":       `{"a":1}`,
		"  {\"a\":1}  ":             `{"a":1}`,
		"```python\nprint('hi')\n```": "print('hi')",
	}
	for input, want := range cases {
		if got := StripFences(input); got != want {
			t.Fatalf("StripFences(%q): expected %q, got %q", input, want, got)
		}
	}
}

func TestExtractJSONObject(t *testing.T) {
	in := "Here is the result: {\"overallScore\": 70} hope it helps"
	if got := ExtractJSONObject(in); got != `{"overallScore": 70}` {
		t.Fatalf("ExtractJSONObject: got %q", got)
	}
	if got := ExtractJSONObject("no json"); got != "no json" {
		t.Fatalf("ExtractJSONObject without braces should return input, got %q", got)
	}
}

func TestNormalizeAnswer(t *testing.T) {
	if got := NormalizeAnswer("  I Don't Know "); got != "i don't know" {
		t.Fatalf("NormalizeAnswer: got %q", got)
	}
}

func TestJSONHelper(t *testing.T) {
	rec := httptest.NewRecorder()
	payload := map[string]string{"hello": "world"}

	JSON(rec, http.StatusCreated, payload)

	if rec.Code != http.StatusCreated {
		t.Fatalf("JSON: expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	if contentType := rec.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("JSON: expected content-type application/json, got %s", contentType)
	}

	var got map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("JSON decode failed: %v", err)
	}
	if got["hello"] != "world" {
		t.Fatalf("JSON body mismatch: %+v", got)
	}
}

func TestLoggerOverride(t *testing.T) {
	custom := NewCLILogger(false)
	SetLogger(custom)
	t.Cleanup(func() { SetLogger(nil) })

	if GetLogger() != custom {
		t.Fatal("expected GetLogger to return the logger set by SetLogger")
	}

	SetLogger(nil)
	if GetLogger() == nil {
		t.Fatal("expected GetLogger to build a default logger")
	}
}
