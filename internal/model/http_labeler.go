/*
Copyright (c) 2025 Fluent Labs

Licensed under the AGPLv3 License.
This file is part of the fluent-hub.
*/

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fluentlabs/fluent-hub/internal/logging"
)

// HTTPLabeler implements the Labeler interface using REST API calls to a
// token-classification model service
type HTTPLabeler struct {
	baseURL    string
	httpClient *http.Client
	labels     []string
}

type predictRequest struct {
	Words []string `json:"words"`
}

type predictResponse struct {
	LabelIDs []int `json:"label_ids"`
	WordIDs  []int `json:"word_ids"`
}

type labelsResponse struct {
	Labels []string `json:"labels"`
}

// NewHTTPLabeler creates a labeler client for a model service. The service
// must be reachable at construction time; an unreachable service is a
// missing capability and fails the construction of its tagger stage.
func NewHTTPLabeler(baseURL string, timeout time.Duration) (*HTTPLabeler, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("labeler base URL is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &http.Client{
		Timeout: timeout,
	}

	l := &HTTPLabeler{
		baseURL:    baseURL,
		httpClient: client,
	}

	if err := l.healthCheck(); err != nil {
		return nil, fmt.Errorf("labeler service health check failed: %w", err)
	}

	labels, err := l.fetchLabels()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch label vocabulary: %w", err)
	}
	l.labels = labels

	logging.Sugar.Infow("Connected to labeler service",
		"base_url", baseURL,
		"labels", labels,
	)

	return l, nil
}

// healthCheck verifies the service is running
func (l *HTTPLabeler) healthCheck() error {
	resp, err := l.httpClient.Get(l.baseURL + "/health")
	if err != nil {
		return fmt.Errorf("failed to connect to labeler service at %s: %w", l.baseURL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Warning: failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("labeler service health check failed with status: %d", resp.StatusCode)
	}

	return nil
}

// fetchLabels retrieves the model's ordered label vocabulary
func (l *HTTPLabeler) fetchLabels() ([]string, error) {
	resp, err := l.httpClient.Get(l.baseURL + "/labels")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch labels from %s: %w", l.baseURL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Warning: failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("labels request failed with status: %d", resp.StatusCode)
	}

	var labelsResp labelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&labelsResp); err != nil {
		return nil, fmt.Errorf("failed to parse labels response: %w", err)
	}

	if len(labelsResp.Labels) == 0 {
		return nil, fmt.Errorf("labeler service returned an empty label vocabulary")
	}

	return labelsResp.Labels, nil
}

// Predict implements the Labeler interface
func (l *HTTPLabeler) Predict(words []string) (*Prediction, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("empty word sequence")
	}

	startTime := time.Now()
	requestID := fmt.Sprintf("req_%d", startTime.UnixNano())

	body, err := json.Marshal(predictRequest{Words: words})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal predict request: %w", err)
	}

	resp, err := l.httpClient.Post(l.baseURL+"/predict", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("predict HTTP request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Warning: failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("predict failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var predictResp predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&predictResp); err != nil {
		return nil, fmt.Errorf("failed to parse predict response: %w", err)
	}

	if len(predictResp.LabelIDs) != len(predictResp.WordIDs) {
		return nil, fmt.Errorf("predict response label/word id length mismatch: %d != %d",
			len(predictResp.LabelIDs), len(predictResp.WordIDs))
	}

	logging.Sugar.Debugw("Prediction completed",
		"request_id", requestID,
		"base_url", l.baseURL,
		"words", len(words),
		"subwords", len(predictResp.LabelIDs),
		"processing_time_ms", time.Since(startTime).Milliseconds(),
	)

	return &Prediction{
		LabelIDs: predictResp.LabelIDs,
		WordIDs:  predictResp.WordIDs,
	}, nil
}

// Labels implements the Labeler interface
func (l *HTTPLabeler) Labels() []string {
	return append([]string(nil), l.labels...)
}

// Close cleans up resources
func (l *HTTPLabeler) Close() error {
	logging.Sugar.Infow("Closing labeler client", "base_url", l.baseURL)
	// HTTP client doesn't need explicit cleanup
	return nil
}
