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

// Package tagger removes labeled words from running text. One parametrized
// Tagger serves every removal stage: the labeling capability supplies the
// per-word labels and a removal predicate decides which labels drop a word.
package tagger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fluentlabs/fluent-hub/internal/align"
	"github.com/fluentlabs/fluent-hub/internal/logging"
	"github.com/fluentlabs/fluent-hub/internal/model"
)

// RemovalPredicate reports whether a word carrying the given label is
// removed from the output.
type RemovalPredicate func(label string) bool

// RemoveTagged removes every word not labeled "O". Used by the filler and
// repetition stages.
func RemoveTagged(label string) bool {
	return label != "O"
}

// RemoveRepair removes only words whose label names the REPAIR category;
// any other label keeps the word. Used by the repair stage, whose model
// emits B-REPAIR/I-REPAIR.
func RemoveRepair(label string) bool {
	return strings.Contains(label, "REPAIR")
}

// WordLabel pairs an input word with its resolved label.
type WordLabel struct {
	Word  string `json:"word"`
	Label string `json:"label"`
}

// Details is the full result of one tagging pass.
type Details struct {
	Output  string      `json:"output"`
	Removed []string    `json:"removed"`
	Labels  []WordLabel `json:"labels"`
}

// Tagger runs one token-classification model over whitespace-split words
// and drops the words its removal predicate rejects.
type Tagger struct {
	name         string
	labeler      model.Labeler
	vocab        *align.Vocabulary
	shouldRemove RemovalPredicate
}

// New creates a tagger around a labeling capability. The labeler must
// already be constructed; a nil labeler means the capability could not be
// located and tagger construction fails.
func New(name string, labeler model.Labeler, shouldRemove RemovalPredicate) (*Tagger, error) {
	if labeler == nil {
		return nil, fmt.Errorf("tagger %q: labeling capability is missing", name)
	}
	if shouldRemove == nil {
		return nil, fmt.Errorf("tagger %q: removal predicate is required", name)
	}

	return &Tagger{
		name:         name,
		labeler:      labeler,
		vocab:        align.NewVocabulary(labeler.Labels()),
		shouldRemove: shouldRemove,
	}, nil
}

// Name returns the tagger's stage identifier.
func (t *Tagger) Name() string {
	return t.name
}

// Process cleans the text and returns it. Blank or whitespace-only input
// is returned unchanged. Words are split on whitespace with no further
// normalization (casing is an upstream concern) and kept words are
// rejoined with single spaces; original punctuation adjacency between
// tokens is not preserved.
func (t *Tagger) Process(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	words := strings.Fields(text)
	labels, err := t.wordLabels(words)
	if err != nil {
		return "", err
	}

	kept := make([]string, 0, len(words))
	for i, w := range words {
		if !t.shouldRemove(labels[i]) {
			kept = append(kept, w)
		}
	}

	return strings.Join(kept, " "), nil
}

// ProcessWithDetails cleans the text and additionally reports the resolved
// label per original word and which words were dropped.
func (t *Tagger) ProcessWithDetails(text string) (*Details, error) {
	if strings.TrimSpace(text) == "" {
		return &Details{Output: text, Removed: []string{}, Labels: []WordLabel{}}, nil
	}

	words := strings.Fields(text)
	labels, err := t.wordLabels(words)
	if err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(words))
	removed := []string{}
	wordLabels := make([]WordLabel, len(words))

	for i, w := range words {
		wordLabels[i] = WordLabel{Word: w, Label: labels[i]}
		if t.shouldRemove(labels[i]) {
			removed = append(removed, w)
		} else {
			kept = append(kept, w)
		}
	}

	logging.LogTaggerOperation(t.name, "process",
		zap.Int("words", len(words)),
		zap.Int("removed", len(removed)),
	)

	return &Details{
		Output:  strings.Join(kept, " "),
		Removed: removed,
		Labels:  wordLabels,
	}, nil
}

// wordLabels predicts subword labels and reconstructs one label per word
// from each word's first subword.
func (t *Tagger) wordLabels(words []string) ([]string, error) {
	pred, err := t.labeler.Predict(words)
	if err != nil {
		return nil, fmt.Errorf("tagger %q: prediction failed: %w", t.name, err)
	}

	return align.WordLabels(pred.LabelIDs, pred.WordIDs, len(words), t.vocab), nil
}
