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

package annotate

import "strings"

// SpanKind classifies a disfluent span.
type SpanKind int

const (
	// NotApplicable means the example has no reparandum words and is
	// excluded from classification.
	NotApplicable SpanKind = iota

	// Repetition: the speaker restarted with (mostly) the same words,
	// e.g. "i i think".
	Repetition

	// Repair: the speaker replaced the reparandum with different words,
	// e.g. "the store no the mall".
	Repair
)

func (k SpanKind) String() string {
	switch k {
	case Repetition:
		return "repetition"
	case Repair:
		return "repair"
	default:
		return "not-applicable"
	}
}

const (
	// overlapThreshold is the reparandum/repair word-overlap ratio at or
	// above which a span counts as a repetition.
	overlapThreshold = 0.5

	// repairWindowSlack widens the repair window beyond the reparandum
	// length, so "i" still overlaps "i think".
	repairWindowSlack = 3
)

// Classify decides repetition vs. repair for a word sequence carrying
// Switchboard-native disfluency tags. The reparandum is the contiguous
// edited word set (tags BE, IE, BE_IP); the repair window is the first
// len(reparandum)+3 fluent words (tags O, C) after the reparandum begins.
// Overlap is set intersection over the reparandum set, not positional
// alignment. Deterministic for identical inputs.
func Classify(words, nativeTags []string) SpanKind {
	var reparandum, fluent []string
	seenReparandum := false

	for i, w := range words {
		if i >= len(nativeTags) {
			break
		}
		lower := strings.ToLower(w)
		switch nativeTags[i] {
		case "BE", "IE", "BE_IP":
			reparandum = append(reparandum, lower)
			seenReparandum = true
		case "O", "C":
			if seenReparandum {
				fluent = append(fluent, lower)
			}
		}
	}

	if len(reparandum) == 0 {
		return NotApplicable
	}

	window := len(reparandum) + repairWindowSlack
	if window > len(fluent) {
		window = len(fluent)
	}

	reparandumSet := make(map[string]bool, len(reparandum))
	for _, w := range reparandum {
		reparandumSet[w] = true
	}

	overlap := 0
	seen := make(map[string]bool, window)
	for _, w := range fluent[:window] {
		if reparandumSet[w] && !seen[w] {
			overlap++
			seen[w] = true
		}
	}

	if float64(overlap)/float64(len(reparandumSet)) >= overlapThreshold {
		return Repetition
	}
	return Repair
}
