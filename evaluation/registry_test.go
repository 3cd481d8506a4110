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

import "testing"

func TestDefaultRegistryHasAlgorithmicScorers(t *testing.T) {
	for _, m := range DefaultMetrics() {
		if !DefaultRegistry.IsRegistered(m) {
			t.Errorf("metric %s not registered", m)
			continue
		}
		s, err := CreateScorer(m, ScorerConfig{})
		if err != nil {
			t.Errorf("CreateScorer(%s) failed: %v", m, err)
			continue
		}
		if s.Metric() != m {
			t.Errorf("scorer for %s reports metric %s", m, s.Metric())
		}
	}
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	r := NewRegistry()
	factory := func(ScorerConfig) (Scorer, error) { return NewTextScorer(), nil }

	if err := r.Register(MetricTextMatch, factory); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := r.Register(MetricTextMatch, factory); err == nil {
		t.Error("duplicate Register succeeded, want error")
	}
}

func TestRegistryUnknownMetric(t *testing.T) {
	r := NewRegistry()
	if _, err := r.CreateScorer(MetricType("NO_SUCH_METRIC"), ScorerConfig{}); err == nil {
		t.Error("CreateScorer for unknown metric succeeded, want error")
	}
}

func TestMetricPredicates(t *testing.T) {
	if MetricLLMJudge.CountsTowardCorrectness() {
		t.Error("LLM judge must not count toward correctness")
	}
	if !MetricTableMatch.CountsTowardCorrectness() {
		t.Error("table match must count toward correctness")
	}
	if !MetricLLMJudge.RequiresLLM() {
		t.Error("LLM judge must require an LLM")
	}
	if MetricTableMatch.RequiresLLM() {
		t.Error("table match must not require an LLM")
	}
}
