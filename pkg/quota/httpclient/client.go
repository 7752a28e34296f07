// Package httpclient implements Limiter against a remote quotad server.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Brandon7CC/MODELFORGE/pkg/quota"
)

// Client talks to quotad's JSON API.
type Client struct {
	baseURL string
	client  *http.Client
}

// New constructs a client for the given base URL.
func New(baseURL string) *Client {
	return NewWithTimeout(baseURL, 10*time.Second)
}

// NewWithTimeout constructs a client with an explicit request timeout.
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Reserve requests a reservation over HTTP.
func (c *Client) Reserve(ctx context.Context, req quota.ReserveRequest) (quota.ReserveResponse, error) {
	var res quota.ReserveResponse
	if err := c.post(ctx, "/v1/reserve", req, &res); err != nil {
		return quota.ReserveResponse{}, err
	}
	return res, nil
}

// Complete reports completion over HTTP.
func (c *Client) Complete(ctx context.Context, req quota.CompleteRequest) (quota.CompleteResponse, error) {
	var res quota.CompleteResponse
	if err := c.post(ctx, "/v1/complete", req, &res); err != nil {
		return quota.CompleteResponse{}, err
	}
	return res, nil
}

// Limits fetches the definitions installed on the server.
func (c *Client) Limits(ctx context.Context) ([]quota.LimitDefinition, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/limits", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeHTTPError(resp.StatusCode, body)
	}
	var file quota.LimitsFile
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, err
	}
	return file.Limits, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return decodeHTTPError(resp.StatusCode, body)
	}
	return json.Unmarshal(body, out)
}

type errorResponse struct {
	Error string `json:"error"`
}

func decodeHTTPError(status int, body []byte) error {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		return fmt.Errorf("http %d: %s", status, resp.Error)
	}
	return fmt.Errorf("http %d", status)
}
