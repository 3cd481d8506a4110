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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientChat(t *testing.T) {
	var gotCreateAgent, gotCreateConversation bool

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/agents", func(w http.ResponseWriter, r *http.Request) {
		gotCreateAgent = true
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /v1/conversations", func(w http.ResponseWriter, r *http.Request) {
		gotCreateConversation = true
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /v1/chat", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req["conversation_id"] != "conv-1" {
			http.Error(w, "missing conversation", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(RawResponse{
			Text: "answer to: " + req["question"],
			Rows: []map[string]any{{"sales": 300.0}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL)
	if err != nil {
		t.Fatalf("NewHTTPClient failed: %v", err)
	}
	ctx := t.Context()

	if err := client.CreateAgent(ctx, "agent-1", "be helpful"); err != nil {
		t.Fatalf("CreateAgent failed: %v", err)
	}
	if err := client.CreateConversation(ctx, "agent-1", "conv-1"); err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if !gotCreateAgent || !gotCreateConversation {
		t.Fatal("provisioning endpoints not called")
	}

	resp, err := client.Chat(ctx, "total sales?")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Text != "answer to: total sales?" {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.Table.NumRows() != 1 {
		t.Errorf("table rows = %d, want 1", resp.Table.NumRows())
	}
}

func TestHTTPClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conversation expired", http.StatusGone)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL)
	if err != nil {
		t.Fatalf("NewHTTPClient failed: %v", err)
	}
	if _, err := client.Chat(t.Context(), "anything?"); err == nil {
		t.Error("Chat succeeded against failing server, want error")
	}
}
