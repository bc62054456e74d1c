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
	"reflect"
	"strings"
	"testing"
)

func TestConvertSwitchboardTag(t *testing.T) {
	tests := []struct {
		tag      string
		category string
		want     string
	}{
		{"BE", "REP", "B-REP"},
		{"BE_IP", "REP", "B-REP"},
		{"IE", "REP", "I-REP"},
		{"IP", "REP", "I-REP"},
		{"C_IE", "REP", "I-REP"},
		{"C_IP", "REP", "I-REP"},
		{"O", "REP", "O"},
		{"C", "REP", "O"},
		{"BE", "REPAIR", "B-REPAIR"},
		{"IE", "REPAIR", "I-REPAIR"},
	}

	for _, tt := range tests {
		if got := ConvertSwitchboardTag(tt.tag, tt.category); got != tt.want {
			t.Errorf("ConvertSwitchboardTag(%q, %q) = %q, want %q", tt.tag, tt.category, got, tt.want)
		}
	}
}

func TestLoadSwitchboard(t *testing.T) {
	tsv := strings.Join([]string{
		"id\tsentence\tms_disfl",
		"1\t['i', 'i', 'think']\t['BE', 'O', 'O']",
		"2\t['we', 'went']\t['O']",     // mismatched lengths, discarded
		"3\tnot a list\t['O']",         // malformed sentence literal
		"4\t['so', 'so', 'anyway']\t['BE_IP', 'O', 'O']",
	}, "\n")

	examples, stats, err := LoadSwitchboard(strings.NewReader(tsv), SwitchboardOptions{})
	if err != nil {
		t.Fatalf("LoadSwitchboard() error = %v", err)
	}

	if stats.Rows != 4 {
		t.Errorf("stats.Rows = %d, want 4", stats.Rows)
	}
	if stats.Loaded != 2 {
		t.Errorf("stats.Loaded = %d, want 2", stats.Loaded)
	}
	if stats.SkippedMismatch != 1 {
		t.Errorf("stats.SkippedMismatch = %d, want 1", stats.SkippedMismatch)
	}
	if stats.SkippedMalformed != 1 {
		t.Errorf("stats.SkippedMalformed = %d, want 1", stats.SkippedMalformed)
	}

	if len(examples) != 2 {
		t.Fatalf("len(examples) = %d, want 2", len(examples))
	}

	want := Example{
		Tokens: []string{"i", "i", "think"},
		Tags:   []string{"B-REP", "O", "O"},
	}
	if !reflect.DeepEqual(examples[0], want) {
		t.Errorf("examples[0] = %+v, want %+v", examples[0], want)
	}
}

func TestLoadSwitchboard_RepairCategory(t *testing.T) {
	tsv := strings.Join([]string{
		"sentence\tms_disfl",
		"['the', 'store', 'the', 'mall']\t['BE', 'IE', 'O', 'O']",
	}, "\n")

	examples, _, err := LoadSwitchboard(strings.NewReader(tsv), SwitchboardOptions{Category: "REPAIR"})
	if err != nil {
		t.Fatalf("LoadSwitchboard() error = %v", err)
	}

	wantTags := []string{"B-REPAIR", "I-REPAIR", "O", "O"}
	if !reflect.DeepEqual(examples[0].Tags, wantTags) {
		t.Errorf("Tags = %v, want %v", examples[0].Tags, wantTags)
	}
}

func TestLoadSwitchboard_RepetitionsOnly(t *testing.T) {
	tsv := strings.Join([]string{
		"sentence\tms_disfl",
		"['i', 'i', 'think']\t['BE', 'O', 'O']",               // repetition, kept
		"['the', 'store', 'the', 'mall']\t['O', 'BE', 'O', 'O']", // repair, dropped
		"['all', 'fluent', 'here']\t['O', 'O', 'O']",          // no reparandum, dropped
	}, "\n")

	examples, stats, err := LoadSwitchboard(strings.NewReader(tsv), SwitchboardOptions{RepetitionsOnly: true})
	if err != nil {
		t.Fatalf("LoadSwitchboard() error = %v", err)
	}

	if stats.Loaded != 1 {
		t.Errorf("stats.Loaded = %d, want 1", stats.Loaded)
	}
	if stats.SkippedFiltered != 2 {
		t.Errorf("stats.SkippedFiltered = %d, want 2", stats.SkippedFiltered)
	}
	if len(examples) != 1 || examples[0].Tokens[0] != "i" {
		t.Errorf("unexpected surviving examples: %+v", examples)
	}
}

func TestLoadSwitchboard_MissingColumns(t *testing.T) {
	tsv := "a\tb\n1\t2\n"

	_, _, err := LoadSwitchboard(strings.NewReader(tsv), SwitchboardOptions{})
	if err == nil {
		t.Fatal("LoadSwitchboard() expected error for missing columns")
	}
}

func TestParseListLiteral(t *testing.T) {
	tests := []struct {
		input   string
		want    []string
		wantErr bool
	}{
		{"['a', 'b', 'c']", []string{"a", "b", "c"}, false},
		{`["a", "b"]`, []string{"a", "b"}, false},
		{`['don\'t', 'know']`, []string{"don't", "know"}, false},
		{`['line\none', 'tab\there', 'back\\slash']`, []string{"line\none", "tab\there", "back\\slash"}, false},
		{"[]", nil, false},
		{"['mixed', \"quotes\"]", []string{"mixed", "quotes"}, false},
		{"not a list", nil, true},
		{"['unterminated]", nil, true},
		{"[1, 2]", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseListLiteral(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseListLiteral(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseListLiteral(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
