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

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/dataagent-eval/evaluation"
)

// FileStorage persists run results as JSON, one file per run:
//
//	<basePath>/
//	  runs/
//	    <runID>.json
type FileStorage struct {
	mu       sync.RWMutex
	basePath string
}

// NewFileStorage creates a file-based storage instance rooted at
// basePath.
func NewFileStorage(basePath string) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Join(basePath, "runs"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create runs directory: %w", err)
	}
	return &FileStorage{basePath: basePath}, nil
}

func (f *FileStorage) runPath(runID string) string {
	return filepath.Join(f.basePath, "runs", fmt.Sprintf("%s.json", runID))
}

// SaveRunResult stores the result of one evaluation run.
func (f *FileStorage) SaveRunResult(ctx context.Context, result *evaluation.RunResult) error {
	if result == nil || result.Summary.RunID == "" {
		return evaluation.ErrInvalidInput
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.runPath(result.Summary.RunID)
	if _, err := os.Stat(path); err == nil {
		return evaluation.ErrAlreadyExists
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run result file: %w", err)
	}
	return nil
}

// GetRunResult retrieves a run result by run ID.
func (f *FileStorage) GetRunResult(ctx context.Context, runID string) (*evaluation.RunResult, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.runPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, evaluation.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read run result file: %w", err)
	}

	var result evaluation.RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run result: %w", err)
	}
	return &result, nil
}

// ListRunResults returns all stored run results, newest first.
func (f *FileStorage) ListRunResults(ctx context.Context) ([]evaluation.RunResult, error) {
	return f.list(func(*evaluation.RunResult) bool { return true })
}

// ListRunResultsByDataset returns all runs for a question set, newest
// first.
func (f *FileStorage) ListRunResultsByDataset(ctx context.Context, dataset string) ([]evaluation.RunResult, error) {
	return f.list(func(r *evaluation.RunResult) bool { return r.Dataset == dataset })
}

func (f *FileStorage) list(keep func(*evaluation.RunResult) bool) ([]evaluation.RunResult, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(f.basePath, "runs"))
	if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	results := make([]evaluation.RunResult, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(f.basePath, "runs", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		var result evaluation.RunResult
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", entry.Name(), err)
		}
		if keep(&result) {
			results = append(results, result)
		}
	}
	sortNewestFirst(results)
	return results, nil
}
