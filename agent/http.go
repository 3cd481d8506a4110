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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/dataagent-eval/evaluation"
)

// HTTPClient talks to a data agent service over its REST surface. The
// service holds the conversation state; the client only carries the
// identifiers.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	agentID        string
	conversationID string
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient overrides the underlying http.Client, e.g. to add
// authentication or custom timeouts.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) { h.httpClient = c }
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) (*HTTPClient, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("agent: invalid base URL %q: %w", baseURL, err)
	}
	c := &HTTPClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateAgent implements Client.
func (c *HTTPClient) CreateAgent(ctx context.Context, agentID, systemInstruction string) error {
	body := map[string]string{
		"agent_id":           agentID,
		"system_instruction": systemInstruction,
	}
	if err := c.post(ctx, "/v1/agents", body, nil); err != nil {
		return fmt.Errorf("agent: creating agent %s: %w", agentID, err)
	}
	c.agentID = agentID
	return nil
}

// CreateConversation implements Client.
func (c *HTTPClient) CreateConversation(ctx context.Context, agentID, conversationID string) error {
	body := map[string]string{
		"agent_id":        agentID,
		"conversation_id": conversationID,
	}
	if err := c.post(ctx, "/v1/conversations", body, nil); err != nil {
		return fmt.Errorf("agent: creating conversation %s: %w", conversationID, err)
	}
	c.conversationID = conversationID
	return nil
}

// Chat implements Client. The raw payload is validated into the typed
// model before it reaches any scorer.
func (c *HTTPClient) Chat(ctx context.Context, question string) (*evaluation.Response, error) {
	body := map[string]string{
		"agent_id":        c.agentID,
		"conversation_id": c.conversationID,
		"question":        question,
	}
	var raw RawResponse
	if err := c.post(ctx, "/v1/chat", body, &raw); err != nil {
		return nil, fmt.Errorf("agent: chat: %w", err)
	}
	return BuildResponse(&raw)
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s returned %s: %s", path, resp.Status, msg)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
