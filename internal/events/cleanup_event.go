/*
 * This file is part of Fluent (https://github.com/fluentlabs/fluent).
 * Copyright (C) 2025 Fluent Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package events

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fluentlabs/fluent-hub/internal/pipeline"
)

// CleanupEvent represents one complete cleanup request with full
// traceability of how the output was derived
type CleanupEvent struct {
	// Core identification
	UUID      string    `json:"uuid" db:"uuid"`
	RequestID string    `json:"request_id" db:"request_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`

	// Processing results
	Input  string          `json:"input" db:"input"`
	Output string          `json:"output" db:"output"`
	Stages []string        `json:"stages" db:"stages"`
	Steps  []pipeline.Step `json:"steps" db:"steps"`

	// Outcome
	ProcessingTime int64  `json:"processing_time_ms" db:"processing_time_ms"`
	Success        bool   `json:"success" db:"success"`
	ErrorMessage   string `json:"error_message,omitempty" db:"error_message"`
}

// NewCleanupEvent creates a new CleanupEvent with generated UUID and
// current timestamp
func NewCleanupEvent(requestID, input string) *CleanupEvent {
	return &CleanupEvent{
		UUID:      generateUUID(),
		RequestID: requestID,
		Timestamp: time.Now(),
		Input:     input,
		Stages:    []string{},
		Steps:     []pipeline.Step{},
		Success:   true,
	}
}

// generateUUID generates a simple UUID without external dependencies
func generateUUID() string {
	b := make([]byte, 16)
	_, err := io.ReadFull(rand.Reader, b)
	if err != nil {
		// Fallback to timestamp-based ID if random fails
		return fmt.Sprintf("fluent-%d", time.Now().UnixNano())
	}

	// Set version (4) and variant bits
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80

	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}

// SetResult records the pipeline output and marks processing as complete
func (ce *CleanupEvent) SetResult(details *pipeline.Details, stages []string) {
	ce.Output = details.Output
	ce.Steps = details.Steps
	ce.Stages = stages
	ce.ProcessingTime = time.Since(ce.Timestamp).Milliseconds()
}

// SetError marks the event as failed with an error message
func (ce *CleanupEvent) SetError(err error) {
	ce.Success = false
	ce.ErrorMessage = err.Error()
	ce.ProcessingTime = time.Since(ce.Timestamp).Milliseconds()
}

// StepsJSON returns the recorded steps as a JSON string for database
// storage
func (ce *CleanupEvent) StepsJSON() (string, error) {
	if ce.Steps == nil {
		return "[]", nil
	}

	data, err := json.Marshal(ce.Steps)
	if err != nil {
		return "", fmt.Errorf("failed to marshal steps: %w", err)
	}

	return string(data), nil
}

// SetStepsFromJSON parses a JSON string and sets the recorded steps
func (ce *CleanupEvent) SetStepsFromJSON(jsonStr string) error {
	if jsonStr == "" || jsonStr == "[]" {
		ce.Steps = []pipeline.Step{}
		return nil
	}

	var steps []pipeline.Step
	if err := json.Unmarshal([]byte(jsonStr), &steps); err != nil {
		return fmt.Errorf("failed to unmarshal steps JSON: %w", err)
	}

	ce.Steps = steps
	return nil
}

// StagesJSON returns the applied stage list as a JSON string for database
// storage
func (ce *CleanupEvent) StagesJSON() (string, error) {
	if ce.Stages == nil {
		return "[]", nil
	}

	data, err := json.Marshal(ce.Stages)
	if err != nil {
		return "", fmt.Errorf("failed to marshal stages: %w", err)
	}

	return string(data), nil
}

// SetStagesFromJSON parses a JSON string and sets the applied stage list
func (ce *CleanupEvent) SetStagesFromJSON(jsonStr string) error {
	if jsonStr == "" || jsonStr == "[]" {
		ce.Stages = []string{}
		return nil
	}

	var stages []string
	if err := json.Unmarshal([]byte(jsonStr), &stages); err != nil {
		return fmt.Errorf("failed to unmarshal stages JSON: %w", err)
	}

	ce.Stages = stages
	return nil
}

// IsValid performs basic validation on the cleanup event
func (ce *CleanupEvent) IsValid() error {
	if ce.UUID == "" {
		return fmt.Errorf("UUID is required")
	}

	if ce.RequestID == "" {
		return fmt.Errorf("requestID is required")
	}

	if ce.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}

	return nil
}

// String returns a human-readable representation of the cleanup event
func (ce *CleanupEvent) String() string {
	return fmt.Sprintf("CleanupEvent{UUID: %s, RequestID: %s, Input: %q, Output: %q, Stages: %v, Success: %t}",
		ce.UUID, ce.RequestID, ce.Input, ce.Output, ce.Stages, ce.Success)
}
