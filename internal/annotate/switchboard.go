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

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Switchboard TSV interchange: tab-separated rows whose "sentence" and
// "ms_disfl" columns hold Python-style list literals, word-aligned.
//
// Native tag scheme:
//
//	BE, BE_IP           reparandum span start
//	IE, IP, C_IE, C_IP  reparandum span continuation
//	O, C                fluent
//
// ConvertSwitchboardTag maps a native tag to the B/I/O scheme under the
// given category ("REP" for the repetition models, "REPAIR" for the
// repair model).
func ConvertSwitchboardTag(tag, category string) string {
	switch tag {
	case "BE", "BE_IP":
		return "B-" + category
	case "IE", "IP", "C_IE", "C_IP":
		return "I-" + category
	default: // "O" or "C"
		return "O"
	}
}

// SwitchboardStats reports what a load pass kept and dropped.
type SwitchboardStats struct {
	Rows             int
	Loaded           int
	SkippedMismatch  int // word count != tag count; discarded, never repaired
	SkippedMalformed int // unparseable list literal
	SkippedFiltered  int // rejected by the repetition-only filter
}

// SwitchboardOptions configures a load pass.
type SwitchboardOptions struct {
	// Category is the BIO span type reparandum words are converted to.
	Category string

	// RepetitionsOnly keeps only rows the span classifier marks as
	// repetitions (reparandum overlapping its repair); repairs and rows
	// without a reparandum are dropped.
	RepetitionsOnly bool
}

// LoadSwitchboard reads the TSV interchange and converts each row to a
// token/tag example. Malformed rows and rows with mismatched word/tag
// counts are skipped, never repaired.
func LoadSwitchboard(r io.Reader, opts SwitchboardOptions) ([]Example, SwitchboardStats, error) {
	if opts.Category == "" {
		opts.Category = "REP"
	}

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, SwitchboardStats{}, fmt.Errorf("failed to read switchboard header: %w", err)
	}

	sentenceCol, disflCol := -1, -1
	for i, name := range header {
		switch name {
		case "sentence":
			sentenceCol = i
		case "ms_disfl":
			disflCol = i
		}
	}
	if sentenceCol < 0 || disflCol < 0 {
		return nil, SwitchboardStats{}, fmt.Errorf("switchboard header missing sentence/ms_disfl columns: %v", header)
	}

	var examples []Example
	var stats SwitchboardStats

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read switchboard row: %w", err)
		}

		stats.Rows++
		if len(record) <= sentenceCol || len(record) <= disflCol {
			stats.SkippedMalformed++
			continue
		}

		words, err := parseListLiteral(record[sentenceCol])
		if err != nil {
			stats.SkippedMalformed++
			continue
		}
		nativeTags, err := parseListLiteral(record[disflCol])
		if err != nil {
			stats.SkippedMalformed++
			continue
		}

		if len(words) != len(nativeTags) {
			stats.SkippedMismatch++
			continue
		}

		if opts.RepetitionsOnly && Classify(words, nativeTags) != Repetition {
			stats.SkippedFiltered++
			continue
		}

		tokens := make([]string, len(words))
		tags := make([]string, len(nativeTags))
		for i, w := range words {
			tokens[i] = strings.ToLower(w)
			tags[i] = ConvertSwitchboardTag(nativeTags[i], opts.Category)
		}

		examples = append(examples, Example{Tokens: tokens, Tags: tags})
		stats.Loaded++
	}

	return examples, stats, nil
}

// parseListLiteral reads a Python-style list literal of strings, e.g.
// ['i', "don't", 'know']. Only string elements are supported; backslash
// escapes inside strings are honored.
func parseListLiteral(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("not a list literal: %q", s)
	}

	var items []string
	i := 1
	end := len(s) - 1
	for i < end {
		c := s[i]
		if c == ' ' || c == ',' || c == '\t' {
			i++
			continue
		}
		if c != '\'' && c != '"' {
			return nil, fmt.Errorf("unexpected character %q in list literal", c)
		}

		quote := c
		i++
		var b strings.Builder
		for {
			if i >= end {
				return nil, fmt.Errorf("unterminated string in list literal")
			}
			if s[i] == '\\' && i+1 < end {
				b.WriteByte(unescape(s[i+1]))
				i += 2
				continue
			}
			if s[i] == quote {
				i++
				break
			}
			b.WriteByte(s[i])
			i++
		}
		items = append(items, b.String())
	}

	return items, nil
}

// unescape decodes the character following a backslash the way Python
// string literals do. Unknown escapes keep the escaped character.
func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return c
	}
}
