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

package llmjudge

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/google/dataagent-eval/evaluation"
)

// Generator abstracts the model call so the judge can be tested without
// a live model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenAIGenerator calls a Gemini model through the genai client.
type GenAIGenerator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGenAIGenerator wraps a genai client and model name.
func NewGenAIGenerator(client *genai.Client, model string, temperature *float32) *GenAIGenerator {
	cfg := &genai.GenerateContentConfig{}
	if temperature != nil {
		cfg.Temperature = temperature
	}
	return &GenAIGenerator{client: client, model: model, config: cfg}
}

// Generate implements Generator.
func (g *GenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("failed to call judge model: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty judge response")
	}
	return resp.Text(), nil
}

// CriterionResult is one judged criterion, averaged over samples.
type CriterionResult struct {
	Criterion   Criterion `json:"criterion"`
	Score       float64   `json:"score"`
	Explanation string    `json:"explanation,omitempty"`
}

// Judge runs the pointwise criteria against a generator, sampling each
// criterion a configurable number of times and averaging.
type Judge struct {
	generator  Generator
	numSamples int
	prompts    *PromptBuilder
	parser     *ResponseParser
}

// Config configures a Judge.
type Config struct {
	Generator  Generator
	NumSamples int
}

// NewJudge creates a judge. NumSamples defaults to 1.
func NewJudge(cfg Config) (*Judge, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("llmjudge: generator is required")
	}
	if cfg.NumSamples <= 0 {
		cfg.NumSamples = 1
	}
	return &Judge{
		generator:  cfg.Generator,
		numSamples: cfg.NumSamples,
		prompts:    NewPromptBuilder(),
		parser:     NewResponseParser(),
	}, nil
}

// Evaluate judges the answer on all criteria and returns the per-
// criterion results plus the overall mean in [0, 1].
func (j *Judge) Evaluate(ctx context.Context, question, answer string, table *evaluation.Table) ([]CriterionResult, float64, error) {
	criteria := Criteria()
	results := make([]CriterionResult, 0, len(criteria))
	total := 0.0

	for _, criterion := range criteria {
		prompt := j.prompts.Build(criterion, question, answer, table)

		sampleTotal := 0.0
		explanation := ""
		for i := 0; i < j.numSamples; i++ {
			raw, err := j.generator.Generate(ctx, prompt)
			if err != nil {
				return nil, 0, fmt.Errorf("judging %s: %w", criterion, err)
			}
			rating, err := j.parser.ParseRating(raw)
			if err != nil {
				return nil, 0, fmt.Errorf("judging %s: %w", criterion, err)
			}
			sampleTotal += NormalizeRating(rating)
			if explanation == "" {
				explanation = j.parser.ParseExplanation(raw)
			}
		}

		score := sampleTotal / float64(j.numSamples)
		results = append(results, CriterionResult{
			Criterion:   criterion,
			Score:       score,
			Explanation: explanation,
		})
		total += score
	}

	return results, total / float64(len(criteria)), nil
}

// Scorer adapts the judge to the evaluation.Scorer interface.
type Scorer struct {
	judge *Judge
}

// NewScorer creates an LLM-judge scorer.
func NewScorer(cfg Config) (*Scorer, error) {
	judge, err := NewJudge(cfg)
	if err != nil {
		return nil, err
	}
	return &Scorer{judge: judge}, nil
}

// Metric implements evaluation.Scorer.
func (s *Scorer) Metric() evaluation.MetricType {
	return evaluation.MetricLLMJudge
}

// Score implements evaluation.Scorer. An empty generated answer is not
// judged.
func (s *Scorer) Score(ctx context.Context, resp *evaluation.Response, question *evaluation.Question) (*evaluation.MetricScore, error) {
	if resp == nil || resp.Text == "" {
		return evaluation.NotApplicable(evaluation.MetricLLMJudge), nil
	}
	_, overall, err := s.judge.Evaluate(ctx, question.Question, resp.Text, resp.Table)
	if err != nil {
		return nil, err
	}
	return evaluation.Scored(evaluation.MetricLLMJudge, overall), nil
}

func init() {
	// The judge needs a configured generator, so the factory validates
	// the config instead of self-constructing.
	_ = evaluation.Register(evaluation.MetricLLMJudge, func(cfg evaluation.ScorerConfig) (evaluation.Scorer, error) {
		gen, ok := cfg.LLM.(Generator)
		if !ok || gen == nil {
			return nil, fmt.Errorf("llmjudge: scorer config carries no generator")
		}
		return NewScorer(Config{Generator: gen, NumSamples: cfg.NumSamples})
	})
}
