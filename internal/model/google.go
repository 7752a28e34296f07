package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultGoogleBaseURL = "https://generativelanguage.googleapis.com/v1beta3"

type googleTextPrompt struct {
	Text string `json:"text"`
}

type googleGenerateRequest struct {
	Prompt          googleTextPrompt `json:"prompt"`
	Temperature     float64          `json:"temperature"`
	CandidateCount  int              `json:"candidateCount"`
	MaxOutputTokens int              `json:"maxOutputTokens"`
	TopK            *int             `json:"topK,omitempty"`
}

type googleGenerateResponse struct {
	Candidates []struct {
		Output string `json:"output"`
	} `json:"candidates"`
	Error *googleError `json:"error,omitempty"`
}

type googleError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GoogleClient is a hosted variant speaking the text-generation endpoint. It
// sends a single structured prompt that embeds the system instruction, the
// provider has no chat-message array for these models.
type GoogleClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewGoogleClient reads GOOGLE_API_KEY and targets the public endpoint.
func NewGoogleClient() *GoogleClient {
	return NewGoogleClientAt(defaultGoogleBaseURL, os.Getenv("GOOGLE_API_KEY"))
}

// NewGoogleClientAt targets a custom endpoint, used by tests.
func NewGoogleClientAt(baseURL, apiKey string) *GoogleClient {
	return &GoogleClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Create is a no-op beyond checking that credentials exist.
func (c *GoogleClient) Create(_ context.Context, handle Handle) error {
	if c.apiKey == "" {
		return &ProvisionError{Name: handle.EphemeralName, Err: errors.New("GOOGLE_API_KEY is not set")}
	}
	return nil
}

// Query wraps the system instruction and prompt into the structured prompt
// and requests a single candidate. code-bison models reject topK, so it is
// omitted for them.
func (c *GoogleClient) Query(ctx context.Context, handle Handle, prompt string) (string, error) {
	payload := googleGenerateRequest{
		Prompt:          googleTextPrompt{Text: structuredPrompt(handle.SystemPrompt, prompt)},
		Temperature:     handle.Temperature,
		CandidateCount:  1,
		MaxOutputTokens: 1024,
	}
	if !strings.Contains(handle.BaseModel, "code-bison") {
		topK := 22
		payload.TopK = &topK
	}

	url := fmt.Sprintf("%s/models/%s:generateText?key=%s", c.baseURL, handle.BaseModel, c.apiKey)
	var completion string
	err := withRetries(ctx, QueryRetryLimit, func() error {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		var decoded googleGenerateResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			if decoded.Error != nil {
				return fmt.Errorf("status %d: %s", resp.StatusCode, decoded.Error.Message)
			}
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		if len(decoded.Candidates) == 0 {
			return fmt.Errorf("no candidates returned")
		}
		completion = decoded.Candidates[0].Output
		return nil
	})
	if err != nil {
		return "", &QueryError{Name: handle.EphemeralName, Attempts: QueryRetryLimit, Err: err}
	}
	return completion, nil
}

// Dispose is a no-op; there is nothing to release remotely.
func (c *GoogleClient) Dispose(context.Context, Handle) error { return nil }

func structuredPrompt(systemPrompt, prompt string) string {
	var b strings.Builder
	b.WriteString("[SYSTEM]\n")
	b.WriteString(systemPrompt)
	b.WriteString("\n[/SYSTEM]\n[PROMPT]\n")
	b.WriteString(prompt)
	b.WriteString("\n[/PROMPT]\n")
	return b.String()
}
