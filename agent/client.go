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

// Package agent is the collaborator boundary to the conversational
// analytics agent under test. The remote service is a black box that
// answers one question per turn with a bundle of artifacts; this package
// validates the loose wire payload into the typed model exactly once, so
// the scorers never inspect untyped maps.
package agent

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/google/dataagent-eval/evaluation"
)

// Client talks to the data agent service. Implementations own transport,
// authentication and retries; the evaluation core only sees Chat.
type Client interface {
	// CreateAgent provisions the data agent the run converses with.
	CreateAgent(ctx context.Context, agentID, systemInstruction string) error

	// CreateConversation opens the server-side conversation whose state
	// spans the whole run.
	CreateConversation(ctx context.Context, agentID, conversationID string) error

	// Chat sends one question and returns the validated output bundle.
	Chat(ctx context.Context, question string) (*evaluation.Response, error)
}

// RawResponse is the loose per-turn payload shape produced by the remote
// service before boundary validation.
type RawResponse struct {
	SQL             string           `json:"generated_sql,omitempty"`
	Rows            []map[string]any `json:"data,omitempty"`
	Query           *RawQuery        `json:"generated_query,omitempty"`
	Text            string           `json:"response_text,omitempty"`
	Chart           map[string]any   `json:"generated_chart,omitempty"`
	DimensionFields []string         `json:"dimension_fields,omitempty"`
	MeasureFields   []string         `json:"measure_fields,omitempty"`

	// HasTable distinguishes "no tabular artifact" from an empty result
	// set, which is a legitimate zero-row table.
	HasTable bool `json:"has_table,omitempty"`
}

// RawQuery is the wire shape of the generated structured query.
type RawQuery struct {
	Fields  []string         `json:"fields,omitempty"`
	Filters []RawQueryFilter `json:"filters,omitempty"`
	Model   string           `json:"model,omitempty"`
	Explore string           `json:"explore,omitempty"`
}

// RawQueryFilter is one wire filter pair.
type RawQueryFilter struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// BuildResponse validates a raw payload into the typed response model.
// Absent artifacts stay nil; a malformed chart payload is an error here,
// not inside a scorer.
func BuildResponse(raw *RawResponse) (*evaluation.Response, error) {
	if raw == nil {
		return nil, fmt.Errorf("agent: nil raw response")
	}

	resp := &evaluation.Response{
		SQL:             raw.SQL,
		Text:            raw.Text,
		DimensionFields: raw.DimensionFields,
		MeasureFields:   raw.MeasureFields,
	}

	if raw.HasTable || len(raw.Rows) > 0 {
		resp.Table = evaluation.NewTable(raw.Rows)
	}

	if raw.Query != nil {
		q := &evaluation.Query{
			Fields:  raw.Query.Fields,
			Model:   raw.Query.Model,
			Explore: raw.Query.Explore,
		}
		for _, f := range raw.Query.Filters {
			q.Filters = append(q.Filters, evaluation.QueryFilter{Field: f.Field, Value: f.Value})
		}
		resp.Query = q
	}

	if len(raw.Chart) > 0 {
		chart, err := DecodeChart(raw.Chart)
		if err != nil {
			return nil, fmt.Errorf("agent: decoding chart spec: %w", err)
		}
		resp.Chart = chart
	}

	return resp, nil
}

// DecodeChart decodes a loose Vega-style chart mapping into a ChartSpec.
// The mark may appear either as a bare string ("bar") or as an object
// ({"type": "bar"}); both normalize to the same spec.
func DecodeChart(payload map[string]any) (*evaluation.ChartSpec, error) {
	if mark, ok := payload["mark"].(string); ok {
		normalized := make(map[string]any, len(payload))
		for k, v := range payload {
			normalized[k] = v
		}
		normalized["mark"] = map[string]any{"type": mark}
		payload = normalized
	}

	var spec evaluation.ChartSpec
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &spec,
		TagName: "json",
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(payload); err != nil {
		return nil, err
	}
	return &spec, nil
}
