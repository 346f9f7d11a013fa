package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/twitterwatch/internal/inference"
)

// DefaultModel is the hosted summarization model used when none is set.
const DefaultModel = "t5-large"

// HuggingFaceSummarizer calls a hosted summarization model. Lengths are in
// model tokens.
type HuggingFaceSummarizer struct {
	client *inference.Client
	model  string
}

// NewHuggingFace creates a summarizer backed by model.
func NewHuggingFace(client *inference.Client, model string) (*HuggingFaceSummarizer, error) {
	if client == nil {
		return nil, errors.New("huggingface summarizer: client is required")
	}
	if model == "" {
		model = DefaultModel
	}
	return &HuggingFaceSummarizer{client: client, model: model}, nil
}

type summaryRequest struct {
	Inputs     string            `json:"inputs"`
	Parameters summaryParameters `json:"parameters"`
}

type summaryParameters struct {
	MinLength int `json:"min_length"`
	MaxLength int `json:"max_length"`
}

type summaryResult struct {
	SummaryText string `json:"summary_text"`
}

// Summarize returns the model's summary of text.
func (h *HuggingFaceSummarizer) Summarize(ctx context.Context, text string, minLength, maxLength int) (string, error) {
	req := summaryRequest{
		Inputs:     text,
		Parameters: summaryParameters{MinLength: minLength, MaxLength: maxLength},
	}

	var results []summaryResult
	if err := h.client.Run(ctx, h.model, req, &results); err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", fmt.Errorf("huggingface: %s: empty summary response", h.model)
	}
	return strings.TrimSpace(results[0].SummaryText), nil
}
