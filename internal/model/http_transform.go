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

// TransformClient implements the Transformer interface using REST API
// calls to a whole-string transform service (truecasing, list generation)
type TransformClient struct {
	baseURL    string
	httpClient *http.Client
}

type transformRequest struct {
	Text string `json:"text"`
}

type transformResponse struct {
	Text string `json:"text"`
}

// NewTransformClient creates a transform client for a model service. The
// service must be reachable at construction time.
func NewTransformClient(baseURL string, timeout time.Duration) (*TransformClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("transform base URL is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	t := &TransformClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}

	if err := t.healthCheck(); err != nil {
		return nil, fmt.Errorf("transform service health check failed: %w", err)
	}

	logging.Sugar.Infow("Connected to transform service", "base_url", baseURL)

	return t, nil
}

// healthCheck verifies the service is running
func (t *TransformClient) healthCheck() error {
	resp, err := t.httpClient.Get(t.baseURL + "/health")
	if err != nil {
		return fmt.Errorf("failed to connect to transform service at %s: %w", t.baseURL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Warning: failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("transform service health check failed with status: %d", resp.StatusCode)
	}

	return nil
}

// Transform implements the Transformer interface
func (t *TransformClient) Transform(text string) (string, error) {
	startTime := time.Now()

	body, err := json.Marshal(transformRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("failed to marshal transform request: %w", err)
	}

	resp, err := t.httpClient.Post(t.baseURL+"/generate", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("transform HTTP request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Warning: failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transform failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var transformResp transformResponse
	if err := json.NewDecoder(resp.Body).Decode(&transformResp); err != nil {
		return "", fmt.Errorf("failed to parse transform response: %w", err)
	}

	logging.Sugar.Debugw("Transform completed",
		"base_url", t.baseURL,
		"input_length", len(text),
		"output_length", len(transformResp.Text),
		"processing_time_ms", time.Since(startTime).Milliseconds(),
	)

	return transformResp.Text, nil
}

// Close cleans up resources
func (t *TransformClient) Close() error {
	logging.Sugar.Infow("Closing transform client", "base_url", t.baseURL)
	return nil
}
