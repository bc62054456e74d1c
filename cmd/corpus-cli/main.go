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

// corpus-cli converts annotated speech corpora into token/tag JSONL files
// for training the cleanup models.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fluentlabs/fluent-hub/internal/annotate"
)

func main() {
	var (
		format          = flag.String("format", "disfluencyspeech", "Corpus format: disfluencyspeech, switchboard")
		variant         = flag.String("variant", "filler", "Tagging variant for disfluencyspeech: filler, combined")
		category        = flag.String("category", "REP", "Span category for switchboard: REP, REPAIR")
		repetitionsOnly = flag.Bool("repetitions-only", false, "Keep only switchboard rows classified as repetitions")
		inPath          = flag.String("in", "", "Input file (default stdin)")
		outPath         = flag.String("out", "", "Output JSONL file (default stdout)")
	)
	flag.Parse()

	in := os.Stdin
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open input: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create output: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	var err error
	switch *format {
	case "disfluencyspeech":
		err = convertDisfluencySpeech(in, out, *variant)
	case "switchboard":
		err = convertSwitchboard(in, out, *category, *repetitionsOnly)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %s\n", *format)
		fmt.Fprintf(os.Stderr, "Valid formats: disfluencyspeech, switchboard\n")
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// convertDisfluencySpeech parses one annotated transcript per input line.
func convertDisfluencySpeech(in io.Reader, out io.Writer, variant string) error {
	var v annotate.Variant
	switch variant {
	case "filler":
		v = annotate.FillerOnly
	case "combined":
		v = annotate.CombinedRemoval
	default:
		return fmt.Errorf("unknown variant %q (valid: filler, combined)", variant)
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	encoder := json.NewEncoder(out)

	lines, emitted := 0, 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines++

		example := v.Parse(line)
		if len(example.Tokens) == 0 {
			continue
		}

		if err := encoder.Encode(example); err != nil {
			return fmt.Errorf("failed to write example: %w", err)
		}
		emitted++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Converted %d lines, emitted %d examples (variant: %s, labels: %v)\n",
		lines, emitted, v.Name, v.LabelList())
	return nil
}

// convertSwitchboard loads the TSV interchange and reports skip counts.
func convertSwitchboard(in io.Reader, out io.Writer, category string, repetitionsOnly bool) error {
	examples, stats, err := annotate.LoadSwitchboard(in, annotate.SwitchboardOptions{
		Category:        category,
		RepetitionsOnly: repetitionsOnly,
	})
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	for _, example := range examples {
		if err := encoder.Encode(example); err != nil {
			return fmt.Errorf("failed to write example: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Loaded %d of %d rows (mismatched: %d, malformed: %d, filtered: %d)\n",
		stats.Loaded, stats.Rows, stats.SkippedMismatch, stats.SkippedMalformed, stats.SkippedFiltered)
	return nil
}
