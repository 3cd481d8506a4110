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
	"errors"
	"fmt"
	"testing"
)

// fakeClient answers from a canned map and records call order.
type fakeClient struct {
	responses map[string]*Response
	errors    map[string]error
	calls     []string
}

func (c *fakeClient) Chat(ctx context.Context, question string) (*Response, error) {
	c.calls = append(c.calls, question)
	if err, ok := c.errors[question]; ok {
		return nil, err
	}
	resp, ok := c.responses[question]
	if !ok {
		return nil, fmt.Errorf("unexpected question %q", question)
	}
	return resp, nil
}

func tableQuestion(id, text string) Question {
	return Question{
		ID:       id,
		Category: "lookup",
		Question: text,
		ExpectedResult: []map[string]any{
			{"region": "east", "sales": 100.0},
			{"region": "west", "sales": 200.0},
		},
		ExpectedResultText: "east 100, west 200",
	}
}

func matchingResponse() *Response {
	return &Response{
		// Reversed row order still matches exactly.
		Table: &Table{
			Columns: []string{"region", "sales"},
			Rows:    [][]any{{"west", 200.0}, {"east", 100.0}},
		},
		Text: "west 200, east 100",
	}
}

func mismatchingResponse() *Response {
	return &Response{
		Table: &Table{
			Columns: []string{"region", "sales"},
			Rows:    [][]any{{"north", 1.0}, {"south", 2.0}},
		},
		Text: "unrelated words entirely",
	}
}

func TestOrchestratorAccuracy(t *testing.T) {
	questions := []Question{
		tableQuestion("q1", "sales by region?"),
		tableQuestion("q2", "sales by region again?"),
		tableQuestion("q3", "sales by region, third time?"),
		tableQuestion("q4", "something it gets wrong?"),
	}
	client := &fakeClient{
		responses: map[string]*Response{
			"sales by region?":             matchingResponse(),
			"sales by region again?":       matchingResponse(),
			"sales by region, third time?": matchingResponse(),
			"something it gets wrong?":     mismatchingResponse(),
		},
	}

	orch, err := NewOrchestrator(OrchestratorConfig{Client: client})
	if err != nil {
		t.Fatalf("NewOrchestrator failed: %v", err)
	}
	result, err := orch.Run(t.Context(), questions)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Summary.Total != 4 || result.Summary.Correct != 3 || result.Summary.Incorrect != 1 {
		t.Errorf("summary = %+v, want 3/4 correct", result.Summary)
	}
	if !almostEqual(result.Summary.Accuracy, 0.75) {
		t.Errorf("accuracy = %v, want 0.75", result.Summary.Accuracy)
	}
	if result.Summary.RunID == "" {
		t.Error("run ID is empty")
	}

	// Questions flow through strictly in order.
	for i, q := range questions {
		if client.calls[i] != q.Question {
			t.Errorf("call %d = %q, want %q", i, client.calls[i], q.Question)
		}
	}

	rec := result.Records[0]
	if !rec.Verdict.OverallCorrect {
		t.Error("record 0 not marked correct")
	}
	if v := rec.Verdict.Score(MetricTableMatch); v == nil || !almostEqual(*v, 1.0) {
		t.Errorf("table score = %v, want 1.0", v)
	}
	// No reference query on the question, so the metric is absent rather
	// than zero.
	if s := rec.Verdict.Scores[MetricQueryMatch]; s == nil || s.Status != ScoreStatusNotApplicable {
		t.Errorf("query score = %+v, want not applicable", s)
	}
}

func TestOrchestratorAgentError(t *testing.T) {
	questions := []Question{
		tableQuestion("q1", "works?"),
		tableQuestion("q2", "breaks?"),
		tableQuestion("q3", "works too?"),
	}
	client := &fakeClient{
		responses: map[string]*Response{
			"works?":     matchingResponse(),
			"works too?": matchingResponse(),
		},
		errors: map[string]error{
			"breaks?": errors.New("agent unavailable"),
		},
	}

	orch, err := NewOrchestrator(OrchestratorConfig{Client: client})
	if err != nil {
		t.Fatalf("NewOrchestrator failed: %v", err)
	}
	result, err := orch.Run(t.Context(), questions)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Summary.Correct != 2 {
		t.Errorf("correct = %d, want 2", result.Summary.Correct)
	}

	rec := result.Records[1]
	if rec.AgentError == "" {
		t.Error("agent error not recorded")
	}
	if rec.Verdict.OverallCorrect {
		t.Error("errored question marked correct")
	}
	for metric, score := range rec.Verdict.Scores {
		if score.Status != ScoreStatusError || score.Value != nil {
			t.Errorf("metric %s = %+v, want errored with nil value", metric, score)
		}
	}
}

// failingScorer always returns an error.
type failingScorer struct{}

func (failingScorer) Metric() MetricType { return MetricType("ALWAYS_FAILS") }
func (failingScorer) Score(context.Context, *Response, *Question) (*MetricScore, error) {
	return nil, errors.New("boom")
}

// panickyScorer always panics.
type panickyScorer struct{}

func (panickyScorer) Metric() MetricType { return MetricType("ALWAYS_PANICS") }
func (panickyScorer) Score(context.Context, *Response, *Question) (*MetricScore, error) {
	panic("unexpected shape")
}

func TestOrchestratorScorerFailureIsolation(t *testing.T) {
	questions := []Question{tableQuestion("q1", "sales by region?")}
	client := &fakeClient{
		responses: map[string]*Response{"sales by region?": matchingResponse()},
	}

	orch, err := NewOrchestrator(OrchestratorConfig{
		Client:  client,
		Scorers: []Scorer{NewTableScorer(), failingScorer{}, panickyScorer{}},
	})
	if err != nil {
		t.Fatalf("NewOrchestrator failed: %v", err)
	}
	result, err := orch.Run(t.Context(), questions)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	verdict := result.Records[0].Verdict
	if s := verdict.Scores[MetricType("ALWAYS_FAILS")]; s == nil || s.Status != ScoreStatusError {
		t.Errorf("failing scorer = %+v, want errored", s)
	}
	if s := verdict.Scores[MetricType("ALWAYS_PANICS")]; s == nil || s.Status != ScoreStatusError {
		t.Errorf("panicking scorer = %+v, want errored", s)
	}
	// The healthy metric still lands and decides correctness.
	if !verdict.OverallCorrect {
		t.Error("question not marked correct despite a perfect table score")
	}
}

func TestOrchestratorEmptyQuestionSet(t *testing.T) {
	orch, err := NewOrchestrator(OrchestratorConfig{Client: &fakeClient{}})
	if err != nil {
		t.Fatalf("NewOrchestrator failed: %v", err)
	}
	result, err := orch.Run(t.Context(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Summary.Total != 0 || result.Summary.Accuracy != 0.0 {
		t.Errorf("summary = %+v, want empty run with accuracy 0", result.Summary)
	}
}

func TestOrchestratorRequiresClient(t *testing.T) {
	if _, err := NewOrchestrator(OrchestratorConfig{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NewOrchestrator() error = %v, want ErrInvalidInput", err)
	}
}

func TestOrchestratorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	orch, err := NewOrchestrator(OrchestratorConfig{Client: &fakeClient{}})
	if err != nil {
		t.Fatalf("NewOrchestrator failed: %v", err)
	}
	if _, err := orch.Run(ctx, []Question{tableQuestion("q1", "anything?")}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
