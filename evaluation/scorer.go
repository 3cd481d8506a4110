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

import "context"

// ScoreStatus classifies the outcome of one metric on one question.
type ScoreStatus string

const (
	// ScoreStatusScored means the metric produced a value in [0, 1].
	ScoreStatusScored ScoreStatus = "SCORED"

	// ScoreStatusNotApplicable means the question carries no reference
	// for this metric. Not a failure and never a zero.
	ScoreStatusNotApplicable ScoreStatus = "NOT_APPLICABLE"

	// ScoreStatusError means the scorer or the agent call failed; the
	// error is recorded in place of the value.
	ScoreStatusError ScoreStatus = "ERROR"
)

// MetricScore is the result of one scorer on one question. Value is nil
// when the metric is not applicable or errored; a nil value never
// participates in correctness decisions.
type MetricScore struct {
	Metric MetricType  `json:"metric"`
	Value  *float64    `json:"value"`
	Status ScoreStatus `json:"status"`
	Error  string      `json:"error,omitempty"`
}

// Scored builds a MetricScore carrying a value in [0, 1].
func Scored(metric MetricType, value float64) *MetricScore {
	return &MetricScore{Metric: metric, Value: &value, Status: ScoreStatusScored}
}

// NotApplicable builds a MetricScore with no value.
func NotApplicable(metric MetricType) *MetricScore {
	return &MetricScore{Metric: metric, Status: ScoreStatusNotApplicable}
}

// Errored builds a MetricScore recording a scorer failure.
func Errored(metric MetricType, err error) *MetricScore {
	s := &MetricScore{Metric: metric, Status: ScoreStatusError}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

// Scorer is the capability interface every metric implements. Scorers
// are pure functions of their inputs: they hold no mutable state and may
// run concurrently for the same question.
type Scorer interface {
	// Metric returns the metric this scorer produces.
	Metric() MetricType

	// Score evaluates the agent response against the question's
	// reference material. A missing reference yields a score with a nil
	// value, not an error; malformed input shapes yield 0.0.
	Score(ctx context.Context, resp *Response, question *Question) (*MetricScore, error)
}
