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

// Package storage provides persistence backends for evaluation run
// results: in-memory, JSON files on disk, and SQLite.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/dataagent-eval/evaluation"
)

// MemoryStorage keeps run results in memory. Suitable for tests and
// development.
type MemoryStorage struct {
	mu sync.RWMutex

	// results maps runID -> RunResult
	results map[string]*evaluation.RunResult

	// byDataset maps dataset name -> []runID
	byDataset map[string][]string
}

// NewMemoryStorage creates a new in-memory storage instance.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		results:   make(map[string]*evaluation.RunResult),
		byDataset: make(map[string][]string),
	}
}

// SaveRunResult stores the result of one evaluation run.
func (m *MemoryStorage) SaveRunResult(ctx context.Context, result *evaluation.RunResult) error {
	if result == nil || result.Summary.RunID == "" {
		return evaluation.ErrInvalidInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	runID := result.Summary.RunID
	if _, exists := m.results[runID]; exists {
		return evaluation.ErrAlreadyExists
	}

	// Copy to prevent external modifications through the caller's
	// pointer.
	copied := *result
	m.results[runID] = &copied
	if result.Dataset != "" {
		m.byDataset[result.Dataset] = append(m.byDataset[result.Dataset], runID)
	}
	return nil
}

// GetRunResult retrieves a run result by run ID.
func (m *MemoryStorage) GetRunResult(ctx context.Context, runID string) (*evaluation.RunResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result, exists := m.results[runID]
	if !exists {
		return nil, evaluation.ErrNotFound
	}
	copied := *result
	return &copied, nil
}

// ListRunResults returns all stored run results, newest first.
func (m *MemoryStorage) ListRunResults(ctx context.Context) ([]evaluation.RunResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]evaluation.RunResult, 0, len(m.results))
	for _, r := range m.results {
		results = append(results, *r)
	}
	sortNewestFirst(results)
	return results, nil
}

// ListRunResultsByDataset returns all runs for a question set, newest
// first.
func (m *MemoryStorage) ListRunResultsByDataset(ctx context.Context, dataset string) ([]evaluation.RunResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runIDs, exists := m.byDataset[dataset]
	if !exists {
		return []evaluation.RunResult{}, nil
	}

	results := make([]evaluation.RunResult, 0, len(runIDs))
	for _, id := range runIDs {
		if r, ok := m.results[id]; ok {
			results = append(results, *r)
		}
	}
	sortNewestFirst(results)
	return results, nil
}

func sortNewestFirst(results []evaluation.RunResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Summary.Timestamp.After(results[j].Summary.Timestamp)
	})
}
