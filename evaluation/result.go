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

package evaluation

import "time"

// QuestionVerdict is the per-question correctness determination derived
// from all applicable metric scores. Verdicts are never mutated after
// creation.
type QuestionVerdict struct {
	QuestionID string `json:"question_id"`

	// Scores maps metric name to its score for this question.
	Scores map[MetricType]*MetricScore `json:"scores"`

	// OverallCorrect is true when any correctness metric scored perfect.
	OverallCorrect bool `json:"overall_correct"`
}

// Score returns the value of the named metric, or nil when the metric
// was not applicable, errored, or did not run.
func (v *QuestionVerdict) Score(metric MetricType) *float64 {
	if s, ok := v.Scores[metric]; ok {
		return s.Value
	}
	return nil
}

// QuestionRecord bundles a verdict with the question and the raw agent
// response, for reporting.
type QuestionRecord struct {
	Question Question        `json:"question_details"`
	Response *Response       `json:"agent_response,omitempty"`
	Verdict  QuestionVerdict `json:"verdict"`

	// AgentError records an agent call failure that left the question
	// unscored.
	AgentError string `json:"agent_error,omitempty"`

	// Elapsed is the wall time spent on the question, agent call
	// included.
	Elapsed time.Duration `json:"elapsed_ns,omitempty"`
}

// RunSummary aggregates all verdicts of one evaluation run.
type RunSummary struct {
	RunID          string    `json:"run_id"`
	AgentID        string    `json:"agent_id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Total          int       `json:"total_questions"`
	Correct        int       `json:"correct_questions"`
	Incorrect      int       `json:"incorrect_questions"`
	Accuracy       float64   `json:"accuracy"`
	Timestamp      time.Time `json:"timestamp"`
}

// RunResult is the full output of one evaluation run: the summary plus
// one record per question, in question order.
type RunResult struct {
	Summary RunSummary       `json:"evaluation_summary"`
	Records []QuestionRecord `json:"results"`

	// Dataset names the question set the run was evaluated against.
	Dataset string `json:"dataset,omitempty"`
}
