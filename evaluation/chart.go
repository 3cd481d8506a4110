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

import (
	"context"
	"strings"
)

// ChartScorer scores the generated chart specification against the
// question's expected visualization.
type ChartScorer struct{}

// NewChartScorer creates a chart scorer.
func NewChartScorer() *ChartScorer {
	return &ChartScorer{}
}

// Metric implements Scorer.
func (s *ChartScorer) Metric() MetricType {
	return MetricChartMatch
}

// Score implements Scorer. The score is absent when the question has no
// expected visualization.
func (s *ChartScorer) Score(ctx context.Context, resp *Response, question *Question) (*MetricScore, error) {
	if question == nil || question.ExpectedChart == nil {
		return NotApplicable(MetricChartMatch), nil
	}
	var generated *ChartSpec
	if resp != nil {
		generated = resp.Chart
	}
	return Scored(MetricChartMatch, EvaluateChart(generated, question.ExpectedChart)), nil
}

// EvaluateChart runs three independent equality checks, each worth one
// third: mark type, x-axis field and y-axis field. An empty chart on
// either side scores 0.0. Expected chart types use dotted names
// ("column.stacked"); dots map to underscores to align with the
// generated mark naming scheme.
func EvaluateChart(generated *ChartSpec, expected *ExpectedChart) float64 {
	if generated.IsZero() || expected == nil {
		return 0.0
	}
	if expected.Type == "" && expected.XAxis == "" && expected.YAxis == "" {
		return 0.0
	}

	passed := 0

	expectedType := strings.ReplaceAll(expected.Type, ".", "_")
	if generated.Mark.Type != "" && expectedType != "" && generated.Mark.Type == expectedType {
		passed++
	}
	if generated.Encoding.X.Field != "" && expected.XAxis != "" && generated.Encoding.X.Field == expected.XAxis {
		passed++
	}
	if generated.Encoding.Y.Field != "" && expected.YAxis != "" && generated.Encoding.Y.Field == expected.YAxis {
		passed++
	}

	return float64(passed) / 3.0
}
