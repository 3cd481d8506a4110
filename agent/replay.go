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

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/dataagent-eval/evaluation"
)

// ReplayClient plays back canned agent responses from a fixture file,
// for offline evaluation runs and tests. The fixture maps the question
// text to its raw payload:
//
//	{
//	  "What were total sales last month?": {
//	    "response_text": "...",
//	    "data": [{"month": "2025-06", "sales": 1234.5}]
//	  }
//	}
type ReplayClient struct {
	responses map[string]*RawResponse

	agentID        string
	conversationID string
}

// NewReplayClient loads a fixture file.
func NewReplayClient(path string) (*ReplayClient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("agent: reading replay fixture: %w", err)
	}

	var responses map[string]*RawResponse
	if err := json.Unmarshal(data, &responses); err != nil {
		return nil, fmt.Errorf("agent: parsing replay fixture: %w", err)
	}

	normalized := make(map[string]*RawResponse, len(responses))
	for q, r := range responses {
		normalized[normalizeQuestion(q)] = r
	}
	return &ReplayClient{responses: normalized}, nil
}

// NewReplayClientFromMap builds a replay client from in-memory
// responses.
func NewReplayClientFromMap(responses map[string]*RawResponse) *ReplayClient {
	normalized := make(map[string]*RawResponse, len(responses))
	for q, r := range responses {
		normalized[normalizeQuestion(q)] = r
	}
	return &ReplayClient{responses: normalized}
}

// CreateAgent implements Client. Replay has no server side; the call
// only records the identifier.
func (c *ReplayClient) CreateAgent(ctx context.Context, agentID, systemInstruction string) error {
	c.agentID = agentID
	return nil
}

// CreateConversation implements Client.
func (c *ReplayClient) CreateConversation(ctx context.Context, agentID, conversationID string) error {
	c.conversationID = conversationID
	return nil
}

// Chat implements Client. An unknown question is an error, which the
// orchestrator records as an unscored question.
func (c *ReplayClient) Chat(ctx context.Context, question string) (*evaluation.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, ok := c.responses[normalizeQuestion(question)]
	if !ok {
		return nil, fmt.Errorf("agent: no replay fixture for question %q", question)
	}
	return BuildResponse(raw)
}

func normalizeQuestion(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
