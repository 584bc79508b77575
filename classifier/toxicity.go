// Package classifier calls the external toxicity-classification endpoint.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
)

// offensiveLabels are the model labels that count as offensive.
// Comparison is case-insensitive.
var offensiveLabels = []string{"toxic", "insult", "obscene", "threat", "hate"}

// Prediction is one {label, score} pair from the model output.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ToxicityClient posts text to the classification endpoint and interprets the
// ranked predictions. Every fault (network, non-2xx status, malformed body)
// is returned as an error so the caller decides how to degrade; this client
// never guesses a verdict on its own.
type ToxicityClient struct {
	endpoint  string
	threshold float64
	http      *http.Client
	log       *slog.Logger
}

func NewToxicityClient(endpoint string, threshold float64, timeout time.Duration, log *slog.Logger) *ToxicityClient {
	return &ToxicityClient{
		endpoint:  endpoint,
		threshold: threshold,
		http:      &http.Client{Timeout: timeout},
		log:       log,
	}
}

// Classify reports whether the model flags text as offensive: true iff any
// returned label is in offensiveLabels with a score above the threshold.
// The wire shape is {"inputs": text} in, [[{label, score}, ...]] out.
func (c *ToxicityClient) Classify(ctx context.Context, text string) (bool, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return false, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("call classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var batches [][]Prediction
	if err := json.NewDecoder(resp.Body).Decode(&batches); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	if len(batches) == 0 {
		return false, nil
	}

	predictions := batches[0]
	offensive := lo.SomeBy(predictions, func(p Prediction) bool {
		return p.Score > c.threshold && lo.Contains(offensiveLabels, strings.ToLower(p.Label))
	})

	c.log.Debug("classifier response",
		"predictions", len(predictions),
		"offensive", offensive)
	return offensive, nil
}
