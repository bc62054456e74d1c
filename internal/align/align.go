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

// Package align maps word-level labels onto subword tokenizations and
// reconstructs word-level decisions from subword predictions.
package align

import (
	"errors"
	"strings"
)

// IgnoreIndex is the sentinel label id assigned to special-token subwords.
// Training losses and metrics exclude it.
const IgnoreIndex = -100

// SpecialToken marks a subword with no originating word in an alignment's
// word-id map (e.g. [CLS], [SEP]).
const SpecialToken = -1

// ErrAlignmentMismatch reports a subword referencing a word index outside
// the labeled word sequence. The affected example is discarded by callers,
// never silently repaired.
var ErrAlignmentMismatch = errors.New("align: subword references word outside the label sequence")

// Vocabulary is an ordered label list with id lookup and the B→I
// continuation mapping.
type Vocabulary struct {
	labels []string
	ids    map[string]int
}

// NewVocabulary builds a vocabulary from an ordered label list.
func NewVocabulary(labels []string) *Vocabulary {
	v := &Vocabulary{
		labels: append([]string(nil), labels...),
		ids:    make(map[string]int, len(labels)),
	}
	for i, l := range v.labels {
		v.ids[l] = i
	}
	return v
}

// Labels returns the ordered label list.
func (v *Vocabulary) Labels() []string {
	return append([]string(nil), v.labels...)
}

// ID returns the id of a label.
func (v *Vocabulary) ID(label string) (int, bool) {
	id, ok := v.ids[label]
	return id, ok
}

// Label returns the name of a label id, or "O" for ids outside the
// vocabulary (including IgnoreIndex).
func (v *Vocabulary) Label(id int) string {
	if id < 0 || id >= len(v.labels) {
		return "O"
	}
	return v.labels[id]
}

// insideOf maps a B-X label id to its I-X id. Labels without an inside
// form pass through unchanged.
func (v *Vocabulary) insideOf(id int) int {
	label := v.Label(id)
	if !strings.HasPrefix(label, "B-") {
		return id
	}
	if inside, ok := v.ids["I-"+label[2:]]; ok {
		return inside
	}
	return id
}

// ExpandWordLabels assigns one label id per subword for training. wordIDs
// maps each subword to its originating word index, with SpecialToken for
// subwords that belong to no word; those receive IgnoreIndex. The first
// subword of a word carries the word's label; later subwords of the same
// word carry the label's inside form (B-X becomes I-X, everything else is
// unchanged).
func ExpandWordLabels(wordLabels []int, wordIDs []int, vocab *Vocabulary) ([]int, error) {
	out := make([]int, len(wordIDs))
	prev := SpecialToken

	for i, wordID := range wordIDs {
		switch {
		case wordID < 0:
			out[i] = IgnoreIndex
		case wordID >= len(wordLabels):
			return nil, ErrAlignmentMismatch
		case wordID != prev:
			out[i] = wordLabels[wordID]
		default:
			out[i] = vocab.insideOf(wordLabels[wordID])
		}
		prev = wordID
	}

	return out, nil
}

// WordLabels reconstructs one label per word from subword predictions.
// Each word takes the label predicted for its first subword; predictions
// on later subwords are ignored, so the removal decision for a word never
// depends on how many subwords it expanded into. Words with no subword
// default to "O".
func WordLabels(predicted []int, wordIDs []int, numWords int, vocab *Vocabulary) []string {
	labels := make([]string, numWords)
	for i := range labels {
		labels[i] = "O"
	}

	assigned := make([]bool, numWords)
	for i, wordID := range wordIDs {
		if wordID < 0 || wordID >= numWords || assigned[wordID] {
			continue
		}
		if i < len(predicted) {
			labels[wordID] = vocab.Label(predicted[i])
		}
		assigned[wordID] = true
	}

	return labels
}
