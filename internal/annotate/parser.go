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

// Package annotate derives token-level training labels from annotated
// speech corpora.
//
// The DisfluencySpeech corpus uses a bracket mini-language inside the
// transcript text:
//
//	<laughter>          non-speech markup, deleted
//	{F uh, um}          filler span
//	{D well}            discourse marker
//	{C and}             coordinating conjunction
//	[the store + the mall]  self-repair: reparandum "+" repair
//
// The Switchboard corpus ships word-aligned native disfluency tags in a
// TSV interchange; see switchboard.go.
package annotate

import (
	"regexp"
	"strings"
)

// Example is one parsed transcript: parallel token and tag sequences.
// len(Tokens) == len(Tags) always holds for parser output.
type Example struct {
	Tokens []string `json:"tokens"`
	Tags   []string `json:"tags"`
}

// Variant configures how each annotation construct is tagged. A category
// names the BIO span type ("FILL", "REP", ...); the empty category leaves
// the construct's words fluent (tag O).
type Variant struct {
	Name        string
	Filler      string // category for {F ...} spans
	Discourse   string // category for {D ...} spans
	Conjunction string // category for {C ...} spans
	Reparandum  string // category for the pre-"+" side of [a + b]
}

// FillerOnly labels only fillers for removal. Discourse markers,
// conjunctions, and both repair sides stay fluent.
var FillerOnly = Variant{
	Name:   "filler-only",
	Filler: "FILL",
}

// CombinedRemoval folds fillers, discourse markers, and reparanda into one
// generic removal category. Conjunctions and repair-side words stay fluent.
var CombinedRemoval = Variant{
	Name:       "combined-removal",
	Filler:     "REP",
	Discourse:  "REP",
	Reparandum: "REP",
}

// reMarkup matches non-speech markup, which is stripped from the whole
// transcript before the rules run so it can never surface as a token, not
// even inside bracket content.
var reMarkup = regexp.MustCompile(`<[^>]+>`)

// Matcher rules tried in order at each cursor position. Each regex is
// anchored so a rule either consumes from the cursor or does not match.
// The word rule is Unicode-aware; corpus transcripts are UTF-8.
var (
	reFiller      = regexp.MustCompile(`^\{F\s+([^}]+)\}`)
	reDiscourse   = regexp.MustCompile(`^\{D\s+([^}]+)\}`)
	reConjunction = regexp.MustCompile(`^\{C\s+([^}]+)\}`)
	reRepair      = regexp.MustCompile(`^\[\s*([^+\]]*)\+\s*([^\]]*)\]`)
	reWord        = regexp.MustCompile(`^[\p{L}\p{N}_']+`)
)

// matchKind identifies which rule consumed input at the cursor.
type matchKind int

const (
	matchSkip matchKind = iota // no rule matched; skip one character
	matchFiller
	matchDiscourse
	matchConjunction
	matchRepair
	matchWord
)

// match is the tagged result of trying the rule list at one position.
type match struct {
	kind     matchKind
	consumed int
	words    []string // span content for filler/discourse/conjunction
	before   []string // reparandum side of a repair
	after    []string // repair side of a repair
	word     string   // plain word
}

// nextMatch tries the rules in priority order against text (the remainder
// of the input, starting at the cursor).
func nextMatch(text string) match {
	if m := reFiller.FindStringSubmatch(text); m != nil {
		return match{kind: matchFiller, consumed: len(m[0]), words: spanWords(m[1])}
	}
	if m := reDiscourse.FindStringSubmatch(text); m != nil {
		return match{kind: matchDiscourse, consumed: len(m[0]), words: spanWords(m[1])}
	}
	if m := reConjunction.FindStringSubmatch(text); m != nil {
		return match{kind: matchConjunction, consumed: len(m[0]), words: spanWords(m[1])}
	}
	if m := reRepair.FindStringSubmatch(text); m != nil {
		return match{
			kind:     matchRepair,
			consumed: len(m[0]),
			before:   sideWords(m[1]),
			after:    sideWords(m[2]),
		}
	}
	if m := reWord.FindString(text); m != "" {
		return match{kind: matchWord, consumed: len(m), word: m}
	}
	return match{kind: matchSkip, consumed: 1}
}

// spanWords normalizes bracket content: commas stripped, whitespace split.
func spanWords(content string) []string {
	return strings.Fields(strings.ReplaceAll(content, ",", ""))
}

// sideWords normalizes one side of a repair. Fragment words (leading "-")
// are dropped entirely.
func sideWords(content string) []string {
	words := spanWords(content)
	kept := words[:0]
	for _, w := range words {
		if !strings.HasPrefix(w, "-") {
			kept = append(kept, w)
		}
	}
	return kept
}

// Parse converts a raw annotated transcript into an ordered token/tag
// sequence under the variant's tagging scheme. Malformed or unterminated
// markup never fails: unmatched characters degrade to plain words or are
// skipped, and the cursor always advances.
func (v Variant) Parse(annotated string) Example {
	annotated = reMarkup.ReplaceAllString(annotated, "")

	var tokens, tags []string

	emitSpan := func(words []string, category string) {
		for j, w := range words {
			tokens = append(tokens, strings.ToLower(w))
			tags = append(tags, spanTag(category, j))
		}
	}

	i := 0
	for i < len(annotated) {
		m := nextMatch(annotated[i:])

		switch m.kind {
		case matchSkip:
			// nothing emitted
		case matchFiller:
			emitSpan(m.words, v.Filler)
		case matchDiscourse:
			emitSpan(m.words, v.Discourse)
		case matchConjunction:
			emitSpan(m.words, v.Conjunction)
		case matchRepair:
			emitSpan(m.before, v.Reparandum)
			emitSpan(m.after, "")
		case matchWord:
			tokens = append(tokens, strings.ToLower(m.word))
			tags = append(tags, "O")
		}

		if m.consumed < 1 {
			m.consumed = 1
		}
		i += m.consumed
	}

	return Example{Tokens: tokens, Tags: tags}
}

// spanTag builds the BIO tag for the j-th word of a span. The empty
// category means the span is not labeled for removal.
func spanTag(category string, j int) string {
	if category == "" {
		return "O"
	}
	if j == 0 {
		return "B-" + category
	}
	return "I-" + category
}

// LabelList returns the tag vocabulary the variant can emit, in the id
// order used for model training (O first, then B/I per category).
func (v Variant) LabelList() []string {
	labels := []string{"O"}
	seen := map[string]bool{}
	for _, cat := range []string{v.Filler, v.Discourse, v.Conjunction, v.Reparandum} {
		if cat == "" || seen[cat] {
			continue
		}
		seen[cat] = true
		labels = append(labels, "B-"+cat, "I-"+cat)
	}
	return labels
}
