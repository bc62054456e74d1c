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

// Package pipeline chains cleanup stages over transcript text. Each stage
// consumes the prior stage's full output, so execution is strictly
// sequential.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fluentlabs/fluent-hub/internal/logging"
	"github.com/fluentlabs/fluent-hub/internal/tagger"
)

// Stage is one cleanup step: a whole-string transform identified by name.
type Stage interface {
	Name() string
	Process(text string) (string, error)
}

// detailedStage is implemented by stages that report per-word labels and
// removed words (the tagger stages). Whole-string transform stages record
// an empty removed list instead.
type detailedStage interface {
	ProcessWithDetails(text string) (*tagger.Details, error)
}

// Step records one stage traversal for auditing.
type Step struct {
	Stage   string   `json:"stage"`
	Input   string   `json:"input"`
	Output  string   `json:"output"`
	Removed []string `json:"removed"`
}

// Details is the audited result of a full pipeline run.
type Details struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Steps  []Step `json:"steps"`
}

// Pipeline threads text through an ordered list of stages.
type Pipeline struct {
	stages []Stage
}

// New creates a pipeline over the given stages, run in order.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process runs the text through all stages in order.
func (p *Pipeline) Process(text string) (string, error) {
	result := text
	for _, stage := range p.stages {
		out, err := stage.Process(result)
		if err != nil {
			return "", fmt.Errorf("pipeline stage %q failed: %w", stage.Name(), err)
		}
		result = out
	}
	return result, nil
}

// ProcessWithDetails runs the text through all stages, recording each
// stage's identifier, input, output, and removed words. The step list
// shows exactly how the final output was derived.
func (p *Pipeline) ProcessWithDetails(text string) (*Details, error) {
	details := &Details{
		Input: text,
		Steps: []Step{},
	}

	current := text
	for _, stage := range p.stages {
		step := Step{
			Stage:   stage.Name(),
			Input:   current,
			Removed: []string{},
		}

		if ds, ok := stage.(detailedStage); ok {
			result, err := ds.ProcessWithDetails(current)
			if err != nil {
				return nil, fmt.Errorf("pipeline stage %q failed: %w", stage.Name(), err)
			}
			step.Output = result.Output
			step.Removed = result.Removed
		} else {
			out, err := stage.Process(current)
			if err != nil {
				return nil, fmt.Errorf("pipeline stage %q failed: %w", stage.Name(), err)
			}
			step.Output = out
		}

		logging.LogPipelineStage(stage.Name(),
			zap.Int("removed", len(step.Removed)),
		)

		details.Steps = append(details.Steps, step)
		current = step.Output
	}

	details.Output = current
	return details, nil
}

// AddStage appends a stage to the end of the pipeline. Stage mutation is
// permitted for experimentation; the semantic ordering contract is not
// re-validated and the caller is responsible for preserving it.
func (p *Pipeline) AddStage(s Stage) {
	p.stages = append(p.stages, s)
}

// InsertStage inserts a stage at a specific position. Out-of-range
// positions clamp to the nearest end.
func (p *Pipeline) InsertStage(index int, s Stage) {
	if index < 0 {
		index = 0
	}
	if index > len(p.stages) {
		index = len(p.stages)
	}
	p.stages = append(p.stages[:index], append([]Stage{s}, p.stages[index:]...)...)
}

// StageNames returns the identifiers of the stages in run order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Stage returns the stage with the given name, if present.
func (p *Pipeline) Stage(name string) (Stage, bool) {
	for _, s := range p.stages {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}
