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

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/genai"

	"github.com/google/dataagent-eval/agent"
	"github.com/google/dataagent-eval/dataset"
	"github.com/google/dataagent-eval/evaluation"
	"github.com/google/dataagent-eval/evaluation/llmjudge"
	"github.com/google/dataagent-eval/internal/config"
	"github.com/google/dataagent-eval/report"
)

type runFlags struct {
	dataset   string
	fixtures  string
	agentURL  string
	metrics   []string
	threshold float64
	timeout   time.Duration
	outJSON   string
	outMD     string
}

func runCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate a question set against the agent.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluation(cmd.Context(), &f)
		},
	}

	cmd.Flags().StringVar(&f.dataset, "dataset", "", "Path to the JSON question set")
	cmd.Flags().StringVar(&f.fixtures, "fixtures", "", "Replay fixture file; plays back canned responses instead of calling the agent")
	cmd.Flags().StringVar(&f.agentURL, "agent-url", "", "Base URL of the data agent service")
	cmd.Flags().StringSliceVar(&f.metrics, "metrics", nil, "Metrics to run (default: all non-LLM metrics)")
	cmd.Flags().Float64Var(&f.threshold, "threshold", 0, "Correctness threshold (default 1.0)")
	cmd.Flags().DurationVar(&f.timeout, "question-timeout", 0, "Per-question timeout")
	cmd.Flags().StringVar(&f.outJSON, "out", "", "Results JSON output path")
	cmd.Flags().StringVar(&f.outMD, "report", "", "Markdown report output path (- for stdout)")
	return cmd
}

func runEvaluation(ctx context.Context, f *runFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mergeRunFlags(cfg, f)

	if cfg.Dataset == "" {
		return fmt.Errorf("a dataset is required (--dataset or config)")
	}
	questions, err := dataset.Load(cfg.Dataset)
	if err != nil {
		return err
	}

	// Spans are recorded even without an exporter; embedders wire one
	// through the global provider before calling in.
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.WithoutCancel(ctx))

	client, err := buildClient(ctx, cfg, f)
	if err != nil {
		return err
	}

	metrics, err := parseMetrics(cfg.Metrics)
	if err != nil {
		return err
	}

	scorerCfg := evaluation.ScorerConfig{
		JudgeModel: cfg.Judge.Model,
		NumSamples: cfg.Judge.NumSamples,
	}
	if needsJudge(metrics) {
		gen, err := buildJudgeGenerator(ctx, cfg.Judge)
		if err != nil {
			return err
		}
		scorerCfg.LLM = gen
	}

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return err
	}

	orch, err := evaluation.NewOrchestrator(evaluation.OrchestratorConfig{
		Client:               client,
		Metrics:              metrics,
		ScorerConfig:         scorerCfg,
		QuestionTimeout:      cfg.QuestionTimeout.Std(),
		CorrectnessThreshold: cfg.CorrectnessThreshold,
		Storage:              store,
		AgentID:              cfg.AgentID,
		ConversationID:       cfg.ConversationID,
	})
	if err != nil {
		return err
	}

	result, err := orch.Run(ctx, questions)
	if err != nil {
		return err
	}
	result.Dataset = cfg.Dataset

	slog.Info("evaluation finished",
		"run_id", result.Summary.RunID,
		"correct", result.Summary.Correct,
		"total", result.Summary.Total,
		"accuracy", fmt.Sprintf("%.1f%%", result.Summary.Accuracy*100),
	)

	if cfg.Output.ResultsJSON != "" {
		if err := report.WriteJSON(result, cfg.Output.ResultsJSON); err != nil {
			return err
		}
	}
	switch cfg.Output.ReportMarkdown {
	case "":
	case "-":
		if err := report.WriteMarkdown(result, os.Stdout); err != nil {
			return err
		}
	default:
		if err := report.WriteMarkdownFile(result, cfg.Output.ReportMarkdown); err != nil {
			return err
		}
	}
	return nil
}

func mergeRunFlags(cfg *config.Config, f *runFlags) {
	if f.dataset != "" {
		cfg.Dataset = f.dataset
	}
	if f.fixtures != "" {
		cfg.Fixtures = f.fixtures
	}
	if len(f.metrics) > 0 {
		cfg.Metrics = f.metrics
	}
	if f.threshold != 0 {
		cfg.CorrectnessThreshold = f.threshold
	}
	if f.timeout != 0 {
		cfg.QuestionTimeout = config.Duration(f.timeout)
	}
	if f.outJSON != "" {
		cfg.Output.ResultsJSON = f.outJSON
	}
	if f.outMD != "" {
		cfg.Output.ReportMarkdown = f.outMD
	}
}

// buildClient picks replay or live mode and, in live mode, provisions
// the agent and the run's conversation.
func buildClient(ctx context.Context, cfg *config.Config, f *runFlags) (evaluation.AgentClient, error) {
	if cfg.Fixtures != "" {
		return agent.NewReplayClient(cfg.Fixtures)
	}
	if f.agentURL == "" {
		return nil, fmt.Errorf("either --fixtures or --agent-url is required")
	}

	client, err := agent.NewHTTPClient(f.agentURL)
	if err != nil {
		return nil, err
	}
	if cfg.AgentID == "" {
		cfg.AgentID = "eval-agent-" + uuid.NewString()
	}
	if cfg.ConversationID == "" {
		cfg.ConversationID = uuid.NewString()
	}
	if err := client.CreateAgent(ctx, cfg.AgentID, ""); err != nil {
		return nil, err
	}
	if err := client.CreateConversation(ctx, cfg.AgentID, cfg.ConversationID); err != nil {
		return nil, err
	}
	return client, nil
}

func parseMetrics(names []string) ([]evaluation.MetricType, error) {
	metrics := make([]evaluation.MetricType, 0, len(names))
	for _, name := range names {
		m := evaluation.MetricType(name)
		if !evaluation.DefaultRegistry.IsRegistered(m) {
			return nil, fmt.Errorf("unknown metric %q (available: %v)", name, evaluation.AllMetrics())
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}

func needsJudge(metrics []evaluation.MetricType) bool {
	for _, m := range metrics {
		if m.RequiresLLM() {
			return true
		}
	}
	return false
}

func buildJudgeGenerator(ctx context.Context, cfg config.JudgeConfig) (llmjudge.Generator, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("judge.model is required when the LLM judge metric is selected")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{})
	if err != nil {
		return nil, fmt.Errorf("creating judge model client: %w", err)
	}
	return llmjudge.NewGenAIGenerator(client, cfg.Model, nil), nil
}
