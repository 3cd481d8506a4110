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
	"os"
	"path/filepath"
	"testing"
)

func TestReplayClientFromMap(t *testing.T) {
	client := NewReplayClientFromMap(map[string]*RawResponse{
		"What were total sales?": {
			Text: "Total sales were 300.",
			Rows: []map[string]any{{"sales": 300.0}},
		},
	})

	t.Run("known question", func(t *testing.T) {
		resp, err := client.Chat(t.Context(), "What were total sales?")
		if err != nil {
			t.Fatalf("Chat failed: %v", err)
		}
		if resp.Text != "Total sales were 300." {
			t.Errorf("Text = %q", resp.Text)
		}
		if resp.Table.NumRows() != 1 {
			t.Errorf("table rows = %d, want 1", resp.Table.NumRows())
		}
	})

	t.Run("lookup normalizes case and whitespace", func(t *testing.T) {
		if _, err := client.Chat(t.Context(), "  what were TOTAL sales?  "); err != nil {
			t.Errorf("Chat failed: %v", err)
		}
	})

	t.Run("unknown question", func(t *testing.T) {
		if _, err := client.Chat(t.Context(), "Something never recorded?"); err == nil {
			t.Error("Chat succeeded for unknown question, want error")
		}
	})
}

func TestReplayClientFromFile(t *testing.T) {
	fixture := `{
	  "What were total sales?": {
	    "response_text": "Total sales were 300.",
	    "data": [{"sales": 300}]
	  }
	}`
	path := filepath.Join(t.TempDir(), "fixtures.json")
	if err := os.WriteFile(path, []byte(fixture), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	client, err := NewReplayClient(path)
	if err != nil {
		t.Fatalf("NewReplayClient failed: %v", err)
	}
	resp, err := client.Chat(t.Context(), "What were total sales?")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Text != "Total sales were 300." {
		t.Errorf("Text = %q", resp.Text)
	}
}

func TestReplayClientMissingFile(t *testing.T) {
	if _, err := NewReplayClient(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("NewReplayClient succeeded for missing file, want error")
	}
}
