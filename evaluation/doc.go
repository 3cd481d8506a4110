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

// Package evaluation scores natural-language-to-analytics-query agents
// against human-authored references.
//
// For each question the agent under test produces a bundle of artifacts
// (generated SQL, a result table, a structured query, a free-text answer
// and a chart specification). Each artifact is scored independently
// against the reference material carried by the question:
//
//   - TABLE_MATCH_SCORE: fuzzy tabular diff with column and row
//     realignment (0.0-1.0)
//   - QUERY_MATCH_SCORE: structural query similarity over fields and
//     filters (0.0-1.0, absent when no reference query exists)
//   - TEXT_MATCH_SCORE: ROUGE-L F-measure over stemmed tokens (0.0-1.0)
//   - CHART_MATCH_SCORE: mark type and axis field equality (0.0-1.0,
//     absent when no expected visualization exists)
//   - LLM_JUDGE_SCORE: optional LLM-judged intent resolution and
//     completeness (0.0-1.0, informational only)
//
// # Scorers
//
// Every metric is a [Scorer]: a pure function of the agent response and
// the question. Scorers share no state and are registered in a
// [Registry] keyed by [MetricType]:
//
//	evaluation.Register(evaluation.MetricTableMatch, func(cfg evaluation.ScorerConfig) (evaluation.Scorer, error) {
//	    return evaluation.NewTableScorer(), nil
//	})
//
// # Orchestration
//
// The [Orchestrator] drives one question at a time through the agent and
// all applicable scorers, assembles a [QuestionVerdict] per question and
// a [RunSummary] for the run. Questions are evaluated strictly in
// sequence because the remote agent keeps server-side conversation
// state; the independent metrics for a single question run concurrently.
//
// A question counts as correct when any of the table, query, text or
// chart scores is perfect. Missing references make a score absent, not
// zero, and absent scores never participate in the correctness rule. A
// scorer failure is recorded in place of that metric's score and never
// aborts the run.
//
// # Storage
//
// Run results persist through the [Storage] interface; in-memory,
// JSON-file and SQLite backends live in the storage subpackage.
package evaluation
