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
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/google/dataagent-eval/evaluation"
)

// resultJSON stores a full RunResult as a JSON column.
type resultJSON evaluation.RunResult

// Value implements driver.Valuer.
func (r resultJSON) Value() (driver.Value, error) {
	b, err := json.Marshal(evaluation.RunResult(r))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (r *resultJSON) Scan(value any) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	case nil:
		*r = resultJSON{}
		return nil
	default:
		return fmt.Errorf("failed to scan run result JSON value: %T", value)
	}
	return json.Unmarshal(bytes, (*evaluation.RunResult)(r))
}

// runRecord is the gorm model for one evaluation run.
type runRecord struct {
	RunID     string     `gorm:"primaryKey;column:run_id"`
	Dataset   string     `gorm:"index;column:dataset"`
	Accuracy  float64    `gorm:"column:accuracy"`
	Timestamp time.Time  `gorm:"index;column:timestamp"`
	Result    resultJSON `gorm:"type:text;column:result"`
}

func (runRecord) TableName() string {
	return "evaluation_runs"
}

// SQLiteStorage persists run results in a SQLite database. The summary
// columns are queryable; the full result lives in a JSON column.
type SQLiteStorage struct {
	db *gorm.DB
}

// NewSQLiteStorage opens (and migrates) the database at path. Use
// ":memory:" for an ephemeral database.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.AutoMigrate(&runRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// SaveRunResult stores the result of one evaluation run.
func (s *SQLiteStorage) SaveRunResult(ctx context.Context, result *evaluation.RunResult) error {
	if result == nil || result.Summary.RunID == "" {
		return evaluation.ErrInvalidInput
	}

	rec := runRecord{
		RunID:     result.Summary.RunID,
		Dataset:   result.Dataset,
		Accuracy:  result.Summary.Accuracy,
		Timestamp: result.Summary.Timestamp,
		Result:    resultJSON(*result),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return evaluation.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert run result: %w", err)
	}
	return nil
}

// GetRunResult retrieves a run result by run ID.
func (s *SQLiteStorage) GetRunResult(ctx context.Context, runID string) (*evaluation.RunResult, error) {
	var rec runRecord
	err := s.db.WithContext(ctx).First(&rec, "run_id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, evaluation.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run result: %w", err)
	}
	result := evaluation.RunResult(rec.Result)
	return &result, nil
}

// ListRunResults returns all stored run results, newest first.
func (s *SQLiteStorage) ListRunResults(ctx context.Context) ([]evaluation.RunResult, error) {
	return s.list(ctx, s.db.WithContext(ctx))
}

// ListRunResultsByDataset returns all runs for a question set, newest
// first.
func (s *SQLiteStorage) ListRunResultsByDataset(ctx context.Context, dataset string) ([]evaluation.RunResult, error) {
	return s.list(ctx, s.db.WithContext(ctx).Where("dataset = ?", dataset))
}

func (s *SQLiteStorage) list(ctx context.Context, tx *gorm.DB) ([]evaluation.RunResult, error) {
	var recs []runRecord
	if err := tx.Order("timestamp DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list run results: %w", err)
	}
	results := make([]evaluation.RunResult, 0, len(recs))
	for _, rec := range recs {
		results = append(results, evaluation.RunResult(rec.Result))
	}
	return results, nil
}
