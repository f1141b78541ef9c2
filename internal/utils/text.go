package utils

import (
	"strings"
	"unicode/utf8"
)

// Truncate cuts s to at most max runes and appends "..." when anything was dropped.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// StripFences removes a surrounding markdown code fence (```json, ``` or ```lang).
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractJSONObject returns the outermost {...} block of s, or s unchanged when none exists.
func ExtractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}

// NormalizeAnswer lower-cases and trims an answer before heuristic checks.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
