package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/selivandex/stockpulse/pkg/models"
)

const inferenceURL = "https://api-inference.huggingface.co/models/%s"

// modelLoadingWait is the pause before the single retry when the hosted
// model answers 503 while warming up
const modelLoadingWait = 2 * time.Second

// HuggingFaceClient scores headlines against a hosted finance-news
// sentiment model via the inference API
type HuggingFaceClient struct {
	token  string
	model  string
	client *http.Client
}

// NewHuggingFaceClient creates an inference API client
func NewHuggingFaceClient(token, model string, timeout time.Duration) *HuggingFaceClient {
	return &HuggingFaceClient{
		token:  token,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

// Classify returns the model's label and probability for one headline.
// A 503 (model loading) is retried once after a short delay.
func (h *HuggingFaceClient) Classify(ctx context.Context, text string) (Prediction, error) {
	pred, retryable, err := h.classify(ctx, text)
	if err == nil || !retryable {
		return pred, err
	}

	select {
	case <-ctx.Done():
		return Prediction{}, ctx.Err()
	case <-time.After(modelLoadingWait):
	}

	pred, _, err = h.classify(ctx, text)
	return pred, err
}

func (h *HuggingFaceClient) classify(ctx context.Context, text string) (pred Prediction, retryable bool, err error) {
	payload, err := json.Marshal(map[string]string{"inputs": strings.TrimSpace(text)})
	if err != nil {
		return Prediction{}, false, fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := fmt.Sprintf(inferenceURL, h.model)
	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(payload))
	if err != nil {
		return Prediction{}, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return Prediction{}, false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return Prediction{}, true, fmt.Errorf("model loading (HTTP 503)")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Prediction{}, false, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Prediction{}, false, fmt.Errorf("failed to read response: %w", err)
	}

	label, score, err := parsePrediction(body)
	if err != nil {
		return Prediction{}, false, err
	}

	return Prediction{Label: label, Score: score}, false, nil
}

// parsePrediction handles the two response shapes the inference API emits:
// [[{label,score},...]] and [{label,score},...]
func parsePrediction(body []byte) (models.SentimentLabel, float64, error) {
	type entry struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}

	var nested [][]entry
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return normalizeLabel(nested[0][0].Label), nested[0][0].Score, nil
	}

	var flat []entry
	if err := json.Unmarshal(body, &flat); err == nil && len(flat) > 0 {
		return normalizeLabel(flat[0].Label), flat[0].Score, nil
	}

	return "", 0, fmt.Errorf("unrecognized classifier response: %s", string(body))
}

func normalizeLabel(label string) models.SentimentLabel {
	switch strings.ToUpper(label) {
	case "POSITIVE":
		return models.SentimentPositive
	case "NEGATIVE":
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}
