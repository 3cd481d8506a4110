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
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/google/dataagent-eval/evaluation"

// AgentClient is the collaborator boundary to the agent under test. The
// remote service keeps conversation state keyed by a conversation
// identifier, so one client must not be shared across concurrent runs.
type AgentClient interface {
	// Chat sends one question and returns the agent's validated output
	// bundle.
	Chat(ctx context.Context, question string) (*Response, error)
}

// OrchestratorConfig configures an evaluation run. All policy that used
// to be ambient (metric selection, thresholds, timeouts) is threaded
// through here explicitly.
type OrchestratorConfig struct {
	// Client is the agent under test. Required.
	Client AgentClient

	// Scorers are the metrics to run. When nil, the orchestrator builds
	// DefaultMetrics from the default registry.
	Scorers []Scorer

	// Metrics selects which registered metrics to build when Scorers is
	// nil. Empty means DefaultMetrics.
	Metrics []MetricType

	// ScorerConfig configures scorers built from the registry.
	ScorerConfig ScorerConfig

	// QuestionTimeout bounds the agent call plus scoring for a single
	// question. A timeout fails that question, not the run. Zero means
	// no per-question bound.
	QuestionTimeout time.Duration

	// CorrectnessThreshold is the score a correctness metric must reach
	// for the question to count as correct. Zero means 1.0 (a perfect
	// score).
	CorrectnessThreshold float64

	// Storage, when set, receives the run result after aggregation.
	Storage Storage

	// AgentID and ConversationID identify the server-side conversation,
	// recorded in the summary.
	AgentID        string
	ConversationID string

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Orchestrator drives questions through the agent and all applicable
// scorers, assembles per-question verdicts and aggregates them into a
// run summary.
//
// Questions are processed strictly in sequence because the remote agent
// maintains conversation state across turns. The independent metrics for
// one question run concurrently; they are pure functions over their
// arguments.
type Orchestrator struct {
	client    AgentClient
	scorers   []Scorer
	timeout   time.Duration
	threshold float64
	storage   Storage
	agentID   string
	convID    string
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewOrchestrator creates an orchestrator from the config.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("%w: agent client is required", ErrInvalidInput)
	}

	scorers := cfg.Scorers
	if scorers == nil {
		metrics := cfg.Metrics
		if len(metrics) == 0 {
			metrics = DefaultMetrics()
		}
		for _, m := range metrics {
			s, err := CreateScorer(m, cfg.ScorerConfig)
			if err != nil {
				return nil, fmt.Errorf("building scorer for %s: %w", m, err)
			}
			scorers = append(scorers, s)
		}
	}

	threshold := cfg.CorrectnessThreshold
	if threshold == 0 {
		threshold = 1.0
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		client:    cfg.Client,
		scorers:   scorers,
		timeout:   cfg.QuestionTimeout,
		threshold: threshold,
		storage:   cfg.Storage,
		agentID:   cfg.AgentID,
		convID:    cfg.ConversationID,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}, nil
}

// Run evaluates every question in order and returns the aggregated run
// result. Individual question failures (agent errors, timeouts, scorer
// panics) are recorded in place and never abort the run; Run itself only
// fails on context cancellation or when persisting the result fails.
func (o *Orchestrator) Run(ctx context.Context, questions []Question) (*RunResult, error) {
	runID := uuid.NewString()
	o.logger.Info("starting evaluation run", "run_id", runID, "questions", len(questions))

	records := make([]QuestionRecord, 0, len(questions))
	correct := 0
	for i := range questions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec := o.evaluateQuestion(ctx, &questions[i])
		if rec.Verdict.OverallCorrect {
			correct++
		}
		records = append(records, rec)

		o.logger.Info("question scored",
			"question_id", rec.Verdict.QuestionID,
			"correct", rec.Verdict.OverallCorrect,
			"elapsed", rec.Elapsed,
		)
	}

	total := len(questions)
	accuracy := 0.0
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}

	result := &RunResult{
		Summary: RunSummary{
			RunID:          runID,
			AgentID:        o.agentID,
			ConversationID: o.convID,
			Total:          total,
			Correct:        correct,
			Incorrect:      total - correct,
			Accuracy:       accuracy,
			Timestamp:      time.Now().UTC(),
		},
		Records: records,
	}

	if o.storage != nil {
		if err := o.storage.SaveRunResult(ctx, result); err != nil {
			return result, fmt.Errorf("saving run result: %w", err)
		}
	}
	return result, nil
}

// evaluateQuestion resolves one question end to end: agent call, then
// all scorers concurrently, then the verdict.
func (o *Orchestrator) evaluateQuestion(ctx context.Context, q *Question) QuestionRecord {
	start := time.Now()

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	ctx, span := o.tracer.Start(ctx, "evaluation.question",
		trace.WithAttributes(
			attribute.String("question.id", q.ID),
			attribute.String("question.category", q.Category),
		))
	defer span.End()

	resp, err := o.client.Chat(ctx, q.Question)
	if err != nil {
		// The question is fully unscored; the run continues.
		span.SetStatus(codes.Error, err.Error())
		o.logger.Warn("agent call failed", "question_id", q.ID, "error", err)

		scores := make(map[MetricType]*MetricScore, len(o.scorers))
		for _, s := range o.scorers {
			scores[s.Metric()] = Errored(s.Metric(), err)
		}
		return QuestionRecord{
			Question:   *q,
			AgentError: err.Error(),
			Elapsed:    time.Since(start),
			Verdict: QuestionVerdict{
				QuestionID: q.ID,
				Scores:     scores,
			},
		}
	}

	results := make([]*MetricScore, len(o.scorers))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range o.scorers {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					results[i] = Errored(s.Metric(), fmt.Errorf("scorer panic: %v", r))
				}
			}()
			ms, err := s.Score(gctx, resp, q)
			if err != nil {
				results[i] = Errored(s.Metric(), err)
				return nil
			}
			results[i] = ms
			return nil
		})
	}
	// Errors are recorded per metric, never propagated.
	_ = g.Wait()

	scores := make(map[MetricType]*MetricScore, len(results))
	overall := false
	for _, ms := range results {
		scores[ms.Metric] = ms
		if ms.Metric.CountsTowardCorrectness() && ms.Value != nil && *ms.Value >= o.threshold {
			overall = true
		}
		if ms.Value != nil {
			span.SetAttributes(attribute.Float64("score."+string(ms.Metric), *ms.Value))
		}
	}
	span.SetAttributes(attribute.Bool("question.correct", overall))

	return QuestionRecord{
		Question: *q,
		Response: resp,
		Elapsed:  time.Since(start),
		Verdict: QuestionVerdict{
			QuestionID:     q.ID,
			Scores:         scores,
			OverallCorrect: overall,
		},
	}
}
