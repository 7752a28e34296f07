package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultOllamaHost = "http://localhost:11434"

// OllamaClient is the managed variant: it materializes ephemeral models on a
// local Ollama runtime from a base template with the handle's temperature and
// system prompt baked in.
type OllamaClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewOllamaClient connects to the runtime at baseURL, falling back to
// OLLAMA_HOST and then the local default.
func NewOllamaClient(baseURL string) *OllamaClient {
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = defaultOllamaHost
	}
	return &OllamaClient{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

type ollamaCreateRequest struct {
	Name      string `json:"name"`
	Modelfile string `json:"modelfile"`
	Stream    bool   `json:"stream"`
}

type ollamaPullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

type ollamaDeleteRequest struct {
	Name string `json:"name"`
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Create materializes the handle's ephemeral model, pulling the base
// template first when the runtime does not have it.
func (c *OllamaClient) Create(ctx context.Context, handle Handle) error {
	present, err := c.hasModel(ctx, handle.BaseModel)
	if err != nil {
		return &ProvisionError{Name: handle.EphemeralName, Err: err}
	}
	if !present {
		if err := c.pull(ctx, handle.BaseModel); err != nil {
			return &ProvisionError{Name: handle.EphemeralName, Err: err}
		}
	}
	payload := ollamaCreateRequest{
		Name:      handle.EphemeralName,
		Modelfile: Modelfile(handle),
		Stream:    false,
	}
	if err := c.post(ctx, "/api/create", payload, nil); err != nil {
		return &ProvisionError{Name: handle.EphemeralName, Err: err}
	}
	return nil
}

// Query sends one prompt to the ephemeral model, retrying transient failures
// up to QueryRetryLimit before giving up.
func (c *OllamaClient) Query(ctx context.Context, handle Handle, prompt string) (string, error) {
	var completion string
	err := withRetries(ctx, QueryRetryLimit, func() error {
		var decoded ollamaGenerateResponse
		payload := ollamaGenerateRequest{Model: handle.EphemeralName, Prompt: prompt, Stream: false}
		if err := c.post(ctx, "/api/generate", payload, &decoded); err != nil {
			return err
		}
		completion = decoded.Response
		return nil
	})
	if err != nil {
		return "", &QueryError{Name: handle.EphemeralName, Attempts: QueryRetryLimit, Err: err}
	}
	return completion, nil
}

// Dispose removes the ephemeral model. A missing model counts as success so
// double-dispose is a no-op.
func (c *OllamaClient) Dispose(ctx context.Context, handle Handle) error {
	body, err := json.Marshal(ollamaDeleteRequest{Name: handle.EphemeralName})
	if err != nil {
		return &DisposeError{Name: handle.EphemeralName, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/delete", bytes.NewReader(body))
	if err != nil {
		return &DisposeError{Name: handle.EphemeralName, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &DisposeError{Name: handle.EphemeralName, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return &DisposeError{Name: handle.EphemeralName, Err: httpStatusError(resp)}
	}
	return nil
}

// ListNames returns the names of all models known to the runtime.
func (c *OllamaClient) ListNames(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, httpStatusError(resp)
	}
	var decoded ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(decoded.Models))
	for _, m := range decoded.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Sweep disposes every model on the runtime carrying NamePrefix. It is the
// crash-recovery net: it trusts the naming convention, not bookkeeping.
func (c *OllamaClient) Sweep(ctx context.Context) (int, error) {
	names, err := c.ListNames(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	var lastErr error
	for _, name := range names {
		if !strings.HasPrefix(name, NamePrefix) {
			continue
		}
		if err := c.Dispose(ctx, Handle{EphemeralName: name}); err != nil {
			lastErr = err
			continue
		}
		removed++
	}
	return removed, lastErr
}

func (c *OllamaClient) hasModel(ctx context.Context, name string) (bool, error) {
	names, err := c.ListNames(ctx)
	if err != nil {
		return false, err
	}
	for _, candidate := range names {
		if candidate == name || strings.HasPrefix(candidate, name+":") {
			return true, nil
		}
	}
	return false, nil
}

func (c *OllamaClient) pull(ctx context.Context, name string) error {
	return c.post(ctx, "/api/pull", ollamaPullRequest{Name: name, Stream: false}, nil)
}

func (c *OllamaClient) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return httpStatusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Modelfile renders the template the runtime builds an ephemeral model from.
func Modelfile(handle Handle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FROM %s\n\n", handle.BaseModel)
	fmt.Fprintf(&b, "PARAMETER temperature %g\n\n", handle.Temperature)
	fmt.Fprintf(&b, "SYSTEM \"\"\"%s\"\"\"\n", handle.SystemPrompt)
	return b.String()
}

func httpStatusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	message := strings.TrimSpace(string(data))
	if message == "" {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, message)
}
