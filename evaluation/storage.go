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
	"errors"
)

var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("evaluation: not found")

	// ErrAlreadyExists indicates the resource already exists.
	ErrAlreadyExists = errors.New("evaluation: already exists")

	// ErrInvalidInput indicates invalid input parameters.
	ErrInvalidInput = errors.New("evaluation: invalid input")
)

// Storage defines persistence for evaluation run results.
type Storage interface {
	// SaveRunResult stores the result of one evaluation run.
	SaveRunResult(ctx context.Context, result *RunResult) error

	// GetRunResult retrieves a run result by run ID.
	GetRunResult(ctx context.Context, runID string) (*RunResult, error)

	// ListRunResults returns all stored run results, newest first.
	ListRunResults(ctx context.Context) ([]RunResult, error)

	// ListRunResultsByDataset returns the runs evaluated against a
	// specific question set, newest first.
	ListRunResultsByDataset(ctx context.Context, dataset string) ([]RunResult, error)
}
