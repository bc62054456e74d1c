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
	"errors"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/fluentlabs/fluent-hub/internal/pipeline"
)

func TestNewCleanupEvent(t *testing.T) {
	event := NewCleanupEvent("req-1", "i uh think")

	if event.RequestID != "req-1" {
		t.Errorf("RequestID = %q, want %q", event.RequestID, "req-1")
	}
	if event.Input != "i uh think" {
		t.Errorf("Input = %q", event.Input)
	}
	if !event.Success {
		t.Error("new events should default to success")
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
	if event.Stages == nil || event.Steps == nil {
		t.Error("Stages and Steps should be initialized")
	}

	uuidPattern := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	if !uuidPattern.MatchString(event.UUID) {
		t.Errorf("UUID %q is not a v4 UUID", event.UUID)
	}
}

func TestNewCleanupEvent_UniqueUUIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		event := NewCleanupEvent("req", "text")
		if seen[event.UUID] {
			t.Fatalf("duplicate UUID: %s", event.UUID)
		}
		seen[event.UUID] = true
	}
}

func TestSetResult(t *testing.T) {
	event := NewCleanupEvent("req-1", "i uh think")
	event.Timestamp = time.Now().Add(-50 * time.Millisecond)

	details := &pipeline.Details{
		Input:  "i uh think",
		Output: "i think",
		Steps: []pipeline.Step{
			{Stage: "filler", Input: "i uh think", Output: "i think", Removed: []string{"uh"}},
		},
	}

	event.SetResult(details, []string{"filler"})

	if event.Output != "i think" {
		t.Errorf("Output = %q", event.Output)
	}
	if !reflect.DeepEqual(event.Stages, []string{"filler"}) {
		t.Errorf("Stages = %v", event.Stages)
	}
	if len(event.Steps) != 1 {
		t.Errorf("len(Steps) = %d, want 1", len(event.Steps))
	}
	if event.ProcessingTime < 50 {
		t.Errorf("ProcessingTime = %d, want >= 50", event.ProcessingTime)
	}
}

func TestSetError(t *testing.T) {
	event := NewCleanupEvent("req-1", "text")
	event.SetError(errors.New("model service down"))

	if event.Success {
		t.Error("Success should be false after SetError")
	}
	if event.ErrorMessage != "model service down" {
		t.Errorf("ErrorMessage = %q", event.ErrorMessage)
	}
}

func TestStepsJSON_RoundTrip(t *testing.T) {
	event := NewCleanupEvent("req-1", "text")
	event.Steps = []pipeline.Step{
		{Stage: "filler", Input: "a uh b", Output: "a b", Removed: []string{"uh"}},
		{Stage: "repetition", Input: "a b", Output: "a b", Removed: []string{}},
	}

	jsonStr, err := event.StepsJSON()
	if err != nil {
		t.Fatalf("StepsJSON() error = %v", err)
	}

	restored := NewCleanupEvent("req-2", "text")
	if err := restored.SetStepsFromJSON(jsonStr); err != nil {
		t.Fatalf("SetStepsFromJSON() error = %v", err)
	}

	if !reflect.DeepEqual(restored.Steps, event.Steps) {
		t.Errorf("round trip = %+v, want %+v", restored.Steps, event.Steps)
	}
}

func TestStagesJSON_RoundTrip(t *testing.T) {
	event := NewCleanupEvent("req-1", "text")
	event.Stages = []string{"truecase", "filler", "list"}

	jsonStr, err := event.StagesJSON()
	if err != nil {
		t.Fatalf("StagesJSON() error = %v", err)
	}

	restored := NewCleanupEvent("req-2", "text")
	if err := restored.SetStagesFromJSON(jsonStr); err != nil {
		t.Fatalf("SetStagesFromJSON() error = %v", err)
	}

	if !reflect.DeepEqual(restored.Stages, event.Stages) {
		t.Errorf("round trip = %v, want %v", restored.Stages, event.Stages)
	}
}

func TestStepsJSON_NilSteps(t *testing.T) {
	event := &CleanupEvent{}

	jsonStr, err := event.StepsJSON()
	if err != nil {
		t.Fatalf("StepsJSON() error = %v", err)
	}
	if jsonStr != "[]" {
		t.Errorf("StepsJSON() = %q, want []", jsonStr)
	}
}

func TestIsValid(t *testing.T) {
	valid := NewCleanupEvent("req-1", "text")
	if err := valid.IsValid(); err != nil {
		t.Errorf("IsValid() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(e *CleanupEvent)
	}{
		{"missing UUID", func(e *CleanupEvent) { e.UUID = "" }},
		{"missing request ID", func(e *CleanupEvent) { e.RequestID = "" }},
		{"zero timestamp", func(e *CleanupEvent) { e.Timestamp = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := NewCleanupEvent("req-1", "text")
			tt.mutate(event)
			if err := event.IsValid(); err == nil {
				t.Error("IsValid() expected error")
			}
		})
	}
}
