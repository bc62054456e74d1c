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

package tagger

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/fluentlabs/fluent-hub/internal/model"
)

// fakeLabeler labels listed words with a fixed tag id, one subword per
// word. No network involved.
type fakeLabeler struct {
	labels  []string
	tagged  map[string]int
	failure error
}

func (f *fakeLabeler) Predict(words []string) (*model.Prediction, error) {
	if f.failure != nil {
		return nil, f.failure
	}

	labelIDs := make([]int, len(words))
	wordIDs := make([]int, len(words))
	for i, w := range words {
		wordIDs[i] = i
		if id, ok := f.tagged[strings.ToLower(w)]; ok {
			labelIDs[i] = id
		}
	}
	return &model.Prediction{LabelIDs: labelIDs, WordIDs: wordIDs}, nil
}

func (f *fakeLabeler) Labels() []string {
	return f.labels
}

func (f *fakeLabeler) Close() error {
	return nil
}

func fillerLabeler() *fakeLabeler {
	return &fakeLabeler{
		labels: []string{"O", "B-FILL", "I-FILL"},
		tagged: map[string]int{"uh": 1, "um": 1},
	}
}

func TestNew_RequiresLabelerAndPredicate(t *testing.T) {
	if _, err := New("filler", nil, RemoveTagged); err == nil {
		t.Error("New() with nil labeler expected error")
	}
	if _, err := New("filler", fillerLabeler(), nil); err == nil {
		t.Error("New() with nil predicate expected error")
	}
}

func TestProcess_RemovesTaggedWords(t *testing.T) {
	tg, err := New("filler", fillerLabeler(), RemoveTagged)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		input string
		want  string
	}{
		{"i uh think um we should go", "i think we should go"},
		{"no fillers here", "no fillers here"},
		{"uh um", ""},
		{"", ""},
		{"   ", "   "}, // whitespace-only input returned unchanged
	}

	for _, tt := range tests {
		got, err := tg.Process(tt.input)
		if err != nil {
			t.Fatalf("Process(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Process(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestProcess_PredictionFailure(t *testing.T) {
	labeler := fillerLabeler()
	labeler.failure = fmt.Errorf("service unreachable")

	tg, err := New("filler", labeler, RemoveTagged)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := tg.Process("i uh think"); err == nil {
		t.Error("Process() expected error when prediction fails")
	}
}

func TestProcessWithDetails(t *testing.T) {
	tg, err := New("filler", fillerLabeler(), RemoveTagged)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	details, err := tg.ProcessWithDetails("i uh think")
	if err != nil {
		t.Fatalf("ProcessWithDetails() error = %v", err)
	}

	if details.Output != "i think" {
		t.Errorf("Output = %q, want %q", details.Output, "i think")
	}
	if !reflect.DeepEqual(details.Removed, []string{"uh"}) {
		t.Errorf("Removed = %v, want [uh]", details.Removed)
	}

	wantLabels := []WordLabel{
		{Word: "i", Label: "O"},
		{Word: "uh", Label: "B-FILL"},
		{Word: "think", Label: "O"},
	}
	if !reflect.DeepEqual(details.Labels, wantLabels) {
		t.Errorf("Labels = %v, want %v", details.Labels, wantLabels)
	}
}

func TestProcessWithDetails_BlankInput(t *testing.T) {
	tg, err := New("filler", fillerLabeler(), RemoveTagged)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	details, err := tg.ProcessWithDetails("")
	if err != nil {
		t.Fatalf("ProcessWithDetails() error = %v", err)
	}
	if details.Output != "" || len(details.Removed) != 0 || len(details.Labels) != 0 {
		t.Errorf("blank input should be identity, got %+v", details)
	}
}

func TestRemovalPredicates(t *testing.T) {
	tests := []struct {
		predicate RemovalPredicate
		label     string
		want      bool
	}{
		{RemoveTagged, "O", false},
		{RemoveTagged, "B-FILL", true},
		{RemoveTagged, "I-REP", true},
		{RemoveRepair, "O", false},
		{RemoveRepair, "B-REPAIR", true},
		{RemoveRepair, "I-REPAIR", true},
		{RemoveRepair, "B-REP", false}, // repetition labels keep the word
	}

	for _, tt := range tests {
		if got := tt.predicate(tt.label); got != tt.want {
			t.Errorf("predicate(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestProcess_RepairPredicate(t *testing.T) {
	labeler := &fakeLabeler{
		labels: []string{"O", "B-REPAIR", "I-REPAIR"},
		tagged: map[string]int{"store": 1},
	}

	tg, err := New("repair", labeler, RemoveRepair)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := tg.Process("the store the mall")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got != "the the mall" {
		t.Errorf("Process() = %q, want %q", got, "the the mall")
	}
}
