package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Verdict is one evaluation outcome: an acceptance decision plus the
// evaluator's critique of a rejected submission.
type Verdict struct {
	Accepted bool
	Critique string
}

// VerdictError reports evaluator output that did not match the structured
// shape. Callers treat it as a rejection, never as a fatal error.
type VerdictError struct {
	Raw string
	Err error
}

func (e *VerdictError) Error() string {
	return fmt.Sprintf("parse verdict: %v", e.Err)
}

func (e *VerdictError) Unwrap() error { return e.Err }

// ParseVerdict decodes the evaluator's response. The response is trimmed and
// unwrapped from a markdown code fence before decoding; anything that then
// fails to decode as an object with an eval_result boolean is a VerdictError.
func ParseVerdict(raw string) (Verdict, error) {
	text := stripCodeFence(strings.TrimSpace(raw))
	var decoded struct {
		EvalResult *bool  `json:"eval_result"`
		Critique   string `json:"critique"`
	}
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return Verdict{}, &VerdictError{Raw: raw, Err: err}
	}
	if decoded.EvalResult == nil {
		return Verdict{}, &VerdictError{Raw: raw, Err: errors.New("missing eval_result field")}
	}
	return Verdict{Accepted: *decoded.EvalResult, Critique: decoded.Critique}, nil
}

// stripCodeFence unwraps ``` fences, tolerating a language tag on the
// opening fence. Content that is not fenced passes through unchanged.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := strings.TrimPrefix(text, "```")
	if idx := strings.IndexByte(body, '\n'); idx >= 0 && isFenceTag(body[:idx]) {
		body = body[idx+1:]
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

// isFenceTag reports whether the opening fence line is empty or a bare
// language name like "json".
func isFenceTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, r := range tag {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
