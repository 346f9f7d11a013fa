package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultLLMEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultLLMModel    = "gpt-4.1-mini"
	llmSystemPrompt    = "You summarize batches of social media posts about one account. Write a single neutral paragraph covering the main topics, opinions and events. Do not invent facts. Return only the paragraph."
)

// LLMSummarizer sends text to an OpenAI-compatible chat completions API.
// maxLength becomes the completion token budget.
type LLMSummarizer struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewLLM creates an LLM summarizer. An empty endpoint selects OpenAI.
func NewLLM(apiKey, model, endpoint string, timeout time.Duration) (*LLMSummarizer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llm: api key is required")
	}
	if model == "" {
		model = DefaultLLMModel
	}
	if endpoint == "" {
		endpoint = DefaultLLMEndpoint
	}
	return &LLMSummarizer{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Summarize asks the model for a one-paragraph summary of text.
func (l *LLMSummarizer) Summarize(ctx context.Context, text string, minLength, maxLength int) (string, error) {
	reqBody := chatRequest{
		Model: l.model,
		Messages: []chatMessage{
			{Role: "system", Content: llmSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Use at least %d and at most %d tokens.\n\n%s", minLength, maxLength, text)},
		},
		MaxTokens: maxLength,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: api returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", errors.New("llm: empty choices in response")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}
