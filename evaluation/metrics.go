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

// MetricType identifies a specific evaluation metric.
type MetricType string

const (
	// MetricTableMatch compares the generated result table against the
	// expected rows using a fuzzy diff with column and row realignment.
	// Score: 0.0 - 1.0 (higher is better).
	MetricTableMatch MetricType = "TABLE_MATCH_SCORE"

	// MetricQueryMatch compares the generated structured query against
	// the human-authored reference query over fields and filters.
	// Score: 0.0 - 1.0; absent when the question has no reference query.
	MetricQueryMatch MetricType = "QUERY_MATCH_SCORE"

	// MetricTextMatch compares the generated free-text answer against the
	// expected answer using a ROUGE-L F-measure over stemmed tokens.
	// Score: 0.0 - 1.0 (higher is better).
	MetricTextMatch MetricType = "TEXT_MATCH_SCORE"

	// MetricChartMatch compares the generated chart specification against
	// the expected visualization: mark type, x-axis field, y-axis field.
	// Score: 0.0, 1/3, 2/3 or 1.0; absent when the question has no
	// expected visualization.
	MetricChartMatch MetricType = "CHART_MATCH_SCORE"

	// MetricLLMJudge scores intent resolution and completeness of the
	// answer with an LLM judge. Informational: it never participates in
	// the correctness rule.
	// Score: 0.0 - 1.0 (higher is better).
	MetricLLMJudge MetricType = "LLM_JUDGE_SCORE"
)

// AllMetrics returns all available metric types.
func AllMetrics() []MetricType {
	return []MetricType{
		MetricTableMatch,
		MetricQueryMatch,
		MetricTextMatch,
		MetricChartMatch,
		MetricLLMJudge,
	}
}

// DefaultMetrics returns the metrics an orchestrator runs when none are
// configured explicitly. The LLM judge is opt-in.
func DefaultMetrics() []MetricType {
	return []MetricType{
		MetricTableMatch,
		MetricQueryMatch,
		MetricTextMatch,
		MetricChartMatch,
	}
}

// String returns the string representation of the metric type.
func (m MetricType) String() string {
	return string(m)
}

// RequiresLLM returns true if the metric needs an LLM to evaluate.
func (m MetricType) RequiresLLM() bool {
	return m == MetricLLMJudge
}

// CountsTowardCorrectness returns true if a perfect score on this metric
// marks the question as correct.
func (m MetricType) CountsTowardCorrectness() bool {
	switch m {
	case MetricTableMatch, MetricQueryMatch, MetricTextMatch, MetricChartMatch:
		return true
	default:
		return false
	}
}
