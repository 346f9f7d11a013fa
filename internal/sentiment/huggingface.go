package sentiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/twitterwatch/internal/inference"
)

const (
	DefaultModel     = "facebook/bart-large-mnli"
	DefaultBatchSize = 32
)

// HuggingFaceClassifier runs zero-shot classification on a hosted model.
// Texts are sent in chunks of batchSize; results keep input order.
type HuggingFaceClassifier struct {
	client    *inference.Client
	model     string
	batchSize int
}

// NewHuggingFace creates a zero-shot classifier backed by model.
func NewHuggingFace(client *inference.Client, model string, batchSize int) (*HuggingFaceClassifier, error) {
	if client == nil {
		return nil, errors.New("huggingface classifier: client is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &HuggingFaceClassifier{client: client, model: model, batchSize: batchSize}, nil
}

type zeroShotRequest struct {
	Inputs     []string           `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

type zeroShotResult struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// Classify scores texts against labels.
func (h *HuggingFaceClassifier) Classify(ctx context.Context, texts, labels []string) ([][]LabelScore, error) {
	out := make([][]LabelScore, 0, len(texts))

	for start := 0; start < len(texts); start += h.batchSize {
		end := min(start+h.batchSize, len(texts))
		chunk := texts[start:end]

		var results []zeroShotResult
		req := zeroShotRequest{
			Inputs:     chunk,
			Parameters: zeroShotParameters{CandidateLabels: labels},
		}
		if err := h.client.Run(ctx, h.model, req, &results); err != nil {
			return nil, err
		}
		if len(results) != len(chunk) {
			return nil, fmt.Errorf("huggingface: %s: got %d results for %d texts", h.model, len(results), len(chunk))
		}

		for _, r := range results {
			out = append(out, pairScores(r.Labels, r.Scores))
		}
	}
	return out, nil
}

// pairScores zips labels with scores, dropping any unmatched tail.
func pairScores(labels []string, scores []float64) []LabelScore {
	n := min(len(labels), len(scores))
	pairs := make([]LabelScore, n)
	for i := range n {
		pairs[i] = LabelScore{Label: labels[i], Score: scores[i]}
	}
	return pairs
}
