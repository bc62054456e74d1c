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
	"strings"

	"go.uber.org/zap"

	"github.com/fluentlabs/fluent-hub/internal/config"
	"github.com/fluentlabs/fluent-hub/internal/listfmt"
	"github.com/fluentlabs/fluent-hub/internal/logging"
	"github.com/fluentlabs/fluent-hub/internal/model"
	"github.com/fluentlabs/fluent-hub/internal/tagger"
)

// Stage kinds, in semantic run order. Truecasing needs maximal surface
// context and must run before any word is deleted; list structuring must
// run last because disfluency removal on already-bulleted text would
// corrupt its structure.
const (
	StageTruecase   = "truecase"
	StageFiller     = "filler"
	StageRepetition = "repetition"
	StageRepair     = "repair"
	StageList       = "list"
)

// semanticOrder fixes the run order of the stages independent of which
// are enabled.
var semanticOrder = []string{StageTruecase, StageFiller, StageRepetition, StageRepair, StageList}

// BuildResult is the outcome of assembling a pipeline from configuration.
// Skipped lists the enabled stage kinds whose capability was unavailable
// when the builder was configured to skip rather than abort.
type BuildResult struct {
	Pipeline *Pipeline
	Skipped  []string
}

// Build assembles the pipeline from configuration in the fixed semantic
// order. A stage whose capability cannot be constructed aborts the build
// unless cfg.SkipUnavailable is set, in which case the stage is omitted
// and reported in the result.
func Build(cfg config.PipelineConfig, reg *model.Registry) (*BuildResult, error) {
	result := &BuildResult{
		Pipeline: New(),
		Skipped:  []string{},
	}

	for _, kind := range semanticOrder {
		if !stageEnabled(cfg, kind) {
			continue
		}

		stage, err := buildStage(cfg, reg, kind)
		if err != nil {
			if !cfg.SkipUnavailable {
				return nil, fmt.Errorf("stage %q unavailable: %w", kind, err)
			}
			logging.LogWarn("Skipping unavailable pipeline stage",
				zap.String("stage", kind),
				zap.Error(err),
			)
			result.Skipped = append(result.Skipped, kind)
			continue
		}

		result.Pipeline.AddStage(stage)
	}

	return result, nil
}

func stageEnabled(cfg config.PipelineConfig, kind string) bool {
	switch kind {
	case StageTruecase:
		return cfg.EnableTruecase
	case StageFiller:
		return cfg.EnableFillers
	case StageRepetition:
		return cfg.EnableRepetitions
	case StageRepair:
		return cfg.EnableRepairs
	case StageList:
		return cfg.EnableList
	default:
		return false
	}
}

func buildStage(cfg config.PipelineConfig, reg *model.Registry, kind string) (Stage, error) {
	switch kind {
	case StageTruecase:
		tr, err := reg.Transformer(StageTruecase)
		if err != nil {
			return nil, err
		}
		return &transformStage{name: StageTruecase, transformer: tr}, nil

	case StageFiller, StageRepetition:
		labeler, err := reg.Labeler(kind)
		if err != nil {
			return nil, err
		}
		return tagger.New(kind, labeler, tagger.RemoveTagged)

	case StageRepair:
		labeler, err := reg.Labeler(StageRepair)
		if err != nil {
			return nil, err
		}
		return tagger.New(StageRepair, labeler, tagger.RemoveRepair)

	case StageList:
		gen, err := reg.Transformer(StageList)
		if err != nil {
			return nil, err
		}
		return listfmt.NewStructurer(gen, cfg.ListStyle)

	default:
		return nil, fmt.Errorf("unknown stage kind: %q", kind)
	}
}

// transformStage adapts a whole-string transform capability (truecasing)
// to the Stage interface. Blank input short-circuits to identity.
type transformStage struct {
	name        string
	transformer model.Transformer
}

func (s *transformStage) Name() string {
	return s.name
}

func (s *transformStage) Process(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	return s.transformer.Transform(text)
}
