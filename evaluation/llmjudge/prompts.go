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

// Package llmjudge scores agent answers with an LLM judge on two
// pointwise criteria: intent resolution and completeness. The resulting
// score is informational; it never participates in the correctness rule.
package llmjudge

import (
	"fmt"
	"strings"

	"github.com/google/dataagent-eval/evaluation"
)

// Criterion names one pointwise judgement the judge performs.
type Criterion string

const (
	// CriterionIntentResolution asks whether the answer addresses the
	// user's question at all.
	CriterionIntentResolution Criterion = "intent_resolution"

	// CriterionCompleteness asks whether the answer leaves out important
	// details given the data it was derived from.
	CriterionCompleteness Criterion = "completeness"
)

// Criteria returns all judged criteria.
func Criteria() []Criterion {
	return []Criterion{CriterionIntentResolution, CriterionCompleteness}
}

// PromptBuilder constructs judge prompts per criterion.
type PromptBuilder struct{}

// NewPromptBuilder creates a new prompt builder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// Build creates the judge prompt for one criterion. The judge answers
// with a rating of 1 (fully satisfied), 0 (partially satisfied) or -1
// (not satisfied).
func (pb *PromptBuilder) Build(criterion Criterion, question, answer string, table *evaluation.Table) string {
	context := renderTable(table)

	switch criterion {
	case CriterionIntentResolution:
		return fmt.Sprintf(`You are an expert evaluator of data-analytics assistants.

**Criterion: intent resolution.** Given the question: '%s', does the response: '%s' directly and accurately address the user's question?

**Rating rubric:**
1: The response fully matches the intent.
0: The response partially matches the intent.
-1: The response does not match the intent.

Answer on two lines:
Rating: <1, 0 or -1>
Explanation: <one sentence>`, question, answer)

	case CriterionCompleteness:
		return fmt.Sprintf(`You are an expert evaluator of data-analytics assistants.

**Criterion: completeness.** Given the question: '%s' and the data context below, does the response: '%s' provide all the necessary information to be a complete answer, without leaving out important details?

**Data context:**
%s

**Rating rubric:**
1: The response is fully complete.
0: The response is partially complete.
-1: The response is incomplete.

Answer on two lines:
Rating: <1, 0 or -1>
Explanation: <one sentence>`, question, answer, context)

	default:
		return fmt.Sprintf("Rate the following response to '%s' with 1, 0 or -1.\n\n%s\n\nRating:", question, answer)
	}
}

// renderTable flattens the result table into a plain-text block for the
// judge's data context.
func renderTable(t *evaluation.Table) string {
	if t == nil || len(t.Rows) == 0 {
		return "(no result table)"
	}

	var b strings.Builder
	b.WriteString(strings.Join(t.Columns, " | "))
	b.WriteString("\n")
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = fmt.Sprint(c)
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString("\n")
	}
	return b.String()
}
