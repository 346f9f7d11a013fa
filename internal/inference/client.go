// Package inference talks to the Hugging Face Inference API.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api-inference.huggingface.co"
	DefaultTimeout = 2 * time.Minute
	maxErrorBody   = 4 << 10
)

// APIError is returned when the API answers with a non-200 status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("huggingface: status %d", e.StatusCode)
	}
	return fmt.Sprintf("huggingface: status %d: %s", e.StatusCode, e.Message)
}

// Client posts JSON payloads to hosted models.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// New creates a client. An empty baseURL selects the public endpoint; an
// empty token sends anonymous requests.
func New(baseURL, token string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// Run sends payload to model and decodes the JSON response into out.
func (c *Client) Run(ctx context.Context, model string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("huggingface: marshal request: %w", err)
	}

	endpoint := c.baseURL + "/models/" + url.PathEscape(model)
	// Model ids contain a slash that must stay literal.
	endpoint = strings.ReplaceAll(endpoint, "%2F", "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("huggingface: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("huggingface: %s: %w", model, err)
	}
	defer func() { _ = resp.Body.Close() }()

	slog.Debug("huggingface: response", "model", model, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("huggingface: %s: decode response: %w", model, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
