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

package pipeline

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/fluentlabs/fluent-hub/internal/tagger"
)

// appendStage appends its marker to the text, making run order visible in
// the output.
type appendStage struct {
	name string
}

func (s *appendStage) Name() string { return s.name }

func (s *appendStage) Process(text string) (string, error) {
	return text + "|" + s.name, nil
}

// failStage always errors.
type failStage struct{}

func (s *failStage) Name() string { return "boom" }

func (s *failStage) Process(string) (string, error) {
	return "", fmt.Errorf("stage exploded")
}

// detailStage exercises the detailed-results path.
type detailStage struct {
	name    string
	removed []string
}

func (s *detailStage) Name() string { return s.name }

func (s *detailStage) Process(text string) (string, error) {
	return s.strip(text), nil
}

func (s *detailStage) ProcessWithDetails(text string) (*tagger.Details, error) {
	return &tagger.Details{
		Output:  s.strip(text),
		Removed: s.removed,
	}, nil
}

func (s *detailStage) strip(text string) string {
	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		drop := false
		for _, r := range s.removed {
			if w == r {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func TestProcess_RunsStagesInOrder(t *testing.T) {
	p := New(&appendStage{"a"}, &appendStage{"b"}, &appendStage{"c"})

	got, err := p.Process("in")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got != "in|a|b|c" {
		t.Errorf("Process() = %q, want %q", got, "in|a|b|c")
	}
}

func TestProcess_EmptyPipelineIsIdentity(t *testing.T) {
	p := New()

	got, err := p.Process("unchanged")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got != "unchanged" {
		t.Errorf("Process() = %q, want input unchanged", got)
	}
}

func TestProcess_StageErrorNamesStage(t *testing.T) {
	p := New(&appendStage{"a"}, &failStage{})

	_, err := p.Process("in")
	if err == nil {
		t.Fatal("Process() expected error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q does not name the failing stage", err)
	}
}

func TestProcessWithDetails_RecordsSteps(t *testing.T) {
	p := New(
		&detailStage{name: "filler", removed: []string{"uh"}},
		&appendStage{"list"},
	)

	details, err := p.ProcessWithDetails("i uh think")
	if err != nil {
		t.Fatalf("ProcessWithDetails() error = %v", err)
	}

	if details.Input != "i uh think" {
		t.Errorf("Input = %q", details.Input)
	}
	if details.Output != "i think|list" {
		t.Errorf("Output = %q, want %q", details.Output, "i think|list")
	}
	if len(details.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2", len(details.Steps))
	}

	first := details.Steps[0]
	if first.Stage != "filler" || first.Input != "i uh think" || first.Output != "i think" {
		t.Errorf("Steps[0] = %+v", first)
	}
	if !reflect.DeepEqual(first.Removed, []string{"uh"}) {
		t.Errorf("Steps[0].Removed = %v, want [uh]", first.Removed)
	}

	second := details.Steps[1]
	if second.Stage != "list" || second.Input != "i think" || second.Output != "i think|list" {
		t.Errorf("Steps[1] = %+v", second)
	}
	if len(second.Removed) != 0 {
		t.Errorf("Steps[1].Removed = %v, want empty", second.Removed)
	}
}

func TestStageMutation(t *testing.T) {
	p := New(&appendStage{"a"}, &appendStage{"c"})

	p.InsertStage(1, &appendStage{"b"})
	p.AddStage(&appendStage{"d"})
	p.InsertStage(-5, &appendStage{"first"})
	p.InsertStage(99, &appendStage{"last"})

	want := []string{"first", "a", "b", "c", "d", "last"}
	if got := p.StageNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("StageNames() = %v, want %v", got, want)
	}
}

func TestStageLookup(t *testing.T) {
	p := New(&appendStage{"a"}, &appendStage{"b"})

	if s, ok := p.Stage("b"); !ok || s.Name() != "b" {
		t.Errorf("Stage(b) = %v, %v", s, ok)
	}
	if _, ok := p.Stage("missing"); ok {
		t.Error("Stage(missing) should not be found")
	}
}
