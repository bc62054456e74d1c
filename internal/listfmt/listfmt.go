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

// Package listfmt post-processes generated text into properly
// newline-separated, optionally numbered, bullet lists.
package listfmt

import (
	"fmt"
	"strings"

	"github.com/fluentlabs/fluent-hub/internal/model"
)

// TaskPrefix is prepended to the text before it is sent to the generation
// capability.
const TaskPrefix = "format list: "

// FixNewlines inserts a line break before every " - " occurrence that is
// immediately followed by an uppercase letter, except at the very start of
// the string. The generation model sometimes emits list items separated by
// " - " instead of a genuine line break; a legitimate leading bullet is
// left untouched.
func FixNewlines(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	i := 0
	for i < len(text) {
		if i > 0 && i+3 < len(text) &&
			isSpace(text[i]) && text[i+1] == '-' && isSpace(text[i+2]) &&
			text[i+3] >= 'A' && text[i+3] <= 'Z' {
			b.WriteString("\n- ")
			i += 3
			continue
		}
		b.WriteByte(text[i])
		i++
	}

	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

// NumberLines rewrites each line starting with "- " as "<n>. ". The
// counter increments across consecutive bulleted lines and resets to 1
// when a non-bulleted line is encountered (a new list context).
func NumberLines(text string) string {
	lines := strings.Split(text, "\n")
	num := 1
	for i, line := range lines {
		if strings.HasPrefix(line, "- ") {
			lines[i] = fmt.Sprintf("%d. %s", num, line[2:])
			num++
		} else {
			num = 1
		}
	}
	return strings.Join(lines, "\n")
}

// Structurer is the list-structuring pipeline stage: a generation
// capability turns spoken list indicators into bullets, then the newline
// fix-up and optional numbering are applied.
type Structurer struct {
	gen      model.Transformer
	numbered bool
}

// NewStructurer creates a list structurer. style is "bullets" or
// "numbered". A nil generator means the capability could not be located.
func NewStructurer(gen model.Transformer, style string) (*Structurer, error) {
	if gen == nil {
		return nil, fmt.Errorf("list structurer: generation capability is missing")
	}

	switch style {
	case "", "bullets":
		return &Structurer{gen: gen}, nil
	case "numbered":
		return &Structurer{gen: gen, numbered: true}, nil
	default:
		return nil, fmt.Errorf("list structurer: unknown style %q", style)
	}
}

// Name returns the stage identifier.
func (s *Structurer) Name() string {
	return "list"
}

// Process formats any detected lists in the text. Blank input is returned
// unchanged.
func (s *Structurer) Process(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	out, err := s.gen.Transform(TaskPrefix + text)
	if err != nil {
		return "", fmt.Errorf("list structurer: generation failed: %w", err)
	}

	out = FixNewlines(out)
	if s.numbered {
		out = NumberLines(out)
	}

	return out, nil
}
