package pipeline

import (
	"errors"
	"strings"
	"testing"
)

func TestParseVerdict(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		accepted bool
		critique string
	}{
		{
			name:     "plain acceptance",
			raw:      `{"eval_result": true, "critique": ""}`,
			accepted: true,
		},
		{
			name:     "plain rejection with critique",
			raw:      `{"eval_result": false, "critique": "missing semicolon"}`,
			critique: "missing semicolon",
		},
		{
			name:     "surrounding whitespace",
			raw:      "\n  {\"eval_result\": true, \"critique\": \"\"}  \n",
			accepted: true,
		},
		{
			name:     "json code fence",
			raw:      "```json\n{\"eval_result\": false, \"critique\": \"missing semicolon\"}\n```",
			critique: "missing semicolon",
		},
		{
			name:     "bare code fence",
			raw:      "```\n{\"eval_result\": true, \"critique\": \"\"}\n```",
			accepted: true,
		},
		{
			name:     "single line fence",
			raw:      "```{\"eval_result\": true, \"critique\": \"\"}```",
			accepted: true,
		},
		{
			name:     "extra fields ignored",
			raw:      `{"eval_result": true, "critique": "", "confidence": 0.9}`,
			accepted: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict, err := ParseVerdict(tc.raw)
			if err != nil {
				t.Fatalf("ParseVerdict(%q): %v", tc.raw, err)
			}
			if verdict.Accepted != tc.accepted {
				t.Fatalf("accepted = %v, want %v", verdict.Accepted, tc.accepted)
			}
			if verdict.Critique != tc.critique {
				t.Fatalf("critique = %q, want %q", verdict.Critique, tc.critique)
			}
		})
	}
}

func TestParseVerdictRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{name: "prose", raw: "looks good to me"},
		{name: "empty", raw: ""},
		{name: "missing eval_result", raw: `{"critique": "no decision"}`},
		{name: "wrong type", raw: `{"eval_result": "yes", "critique": ""}`},
		{name: "bare boolean", raw: "true"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseVerdict(tc.raw)
			if err == nil {
				t.Fatalf("ParseVerdict(%q) succeeded, want error", tc.raw)
			}
			var verr *VerdictError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want *VerdictError", err)
			}
			if verr.Raw != tc.raw {
				t.Fatalf("Raw = %q, want %q", verr.Raw, tc.raw)
			}
		})
	}
}

func TestParseVerdictMissingFieldMessage(t *testing.T) {
	_, err := ParseVerdict(`{"critique": "shrug"}`)
	if err == nil {
		t.Fatal("expected error for missing eval_result")
	}
	if got := err.Error(); !strings.Contains(got, "missing eval_result") {
		t.Fatalf("error = %q, want mention of missing eval_result", got)
	}
}
