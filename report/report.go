// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package report renders evaluation run results as JSON artifacts and
// human-readable Markdown summaries, and serves stored results over
// HTTP.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/dataagent-eval/evaluation"
)

// WriteJSON writes the full run result, indented, to path.
func WriteJSON(result *evaluation.RunResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshaling result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("report: writing %s: %w", path, err)
	}
	return nil
}

// reportColumns fixes the metric order of the Markdown table.
var reportColumns = []evaluation.MetricType{
	evaluation.MetricTableMatch,
	evaluation.MetricQueryMatch,
	evaluation.MetricTextMatch,
	evaluation.MetricChartMatch,
	evaluation.MetricLLMJudge,
}

// WriteMarkdown renders the run summary and the per-question score table
// to w.
func WriteMarkdown(result *evaluation.RunResult, w io.Writer) error {
	var b strings.Builder

	b.WriteString("# Evaluation Report\n\n")
	if result.Dataset != "" {
		fmt.Fprintf(&b, "Dataset: `%s`\n\n", result.Dataset)
	}

	s := result.Summary
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "| Run ID | Questions | Correct | Incorrect | Accuracy |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %d | %d | %d | %.1f%% |\n\n",
		s.RunID, s.Total, s.Correct, s.Incorrect, s.Accuracy*100)

	b.WriteString("## Results\n\n")
	b.WriteString("| # | Category | Question | ")
	for _, m := range reportColumns {
		b.WriteString(metricHeading(m))
		b.WriteString(" | ")
	}
	b.WriteString("Correct |\n")
	b.WriteString("|---|---|---|")
	for range reportColumns {
		b.WriteString("---|")
	}
	b.WriteString("---|\n")

	for i, rec := range result.Records {
		fmt.Fprintf(&b, "| %d | %s | %s | ", i+1,
			escapeCell(rec.Question.Category), escapeCell(rec.Question.Question))
		for _, m := range reportColumns {
			b.WriteString(formatScore(rec.Verdict.Scores[m]))
			b.WriteString(" | ")
		}
		if rec.AgentError != "" {
			b.WriteString("agent error |\n")
			continue
		}
		if rec.Verdict.OverallCorrect {
			b.WriteString("yes |\n")
		} else {
			b.WriteString("no |\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteMarkdownFile renders the Markdown report to path.
func WriteMarkdownFile(result *evaluation.RunResult, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteMarkdown(result, f); err != nil {
		return fmt.Errorf("report: writing %s: %w", path, err)
	}
	return nil
}

func metricHeading(m evaluation.MetricType) string {
	switch m {
	case evaluation.MetricTableMatch:
		return "Table"
	case evaluation.MetricQueryMatch:
		return "Query"
	case evaluation.MetricTextMatch:
		return "Text"
	case evaluation.MetricChartMatch:
		return "Chart"
	case evaluation.MetricLLMJudge:
		return "Judge"
	}
	return string(m)
}

// formatScore renders one cell of the score table. Metrics that did not
// apply render as a dash, errored metrics as "error".
func formatScore(s *evaluation.MetricScore) string {
	if s == nil {
		return "-"
	}
	switch s.Status {
	case evaluation.ScoreStatusError:
		return "error"
	case evaluation.ScoreStatusNotApplicable:
		return "-"
	}
	if s.Value == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *s.Value)
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
