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

// Package dataset loads evaluation question sets and converts raw CSV
// question exports into the JSON format the harness consumes.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/dataagent-eval/evaluation"
)

// Load reads a question set from a JSON file. A load failure is fatal to
// an evaluation run: the orchestrator never starts on a broken set.
func Load(path string) ([]evaluation.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: reading %s: %w", path, err)
	}

	var questions []evaluation.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("dataset: parsing %s: %w", path, err)
	}

	for i := range questions {
		if err := validate(&questions[i]); err != nil {
			return nil, fmt.Errorf("dataset: question %d: %w", i, err)
		}
		if questions[i].ID == "" {
			questions[i].ID = fmt.Sprintf("q-%03d", i+1)
		}
	}
	return questions, nil
}

func validate(q *evaluation.Question) error {
	if q.Category == "" {
		return fmt.Errorf("missing required field %q", "category")
	}
	if q.Question == "" {
		return fmt.Errorf("missing required field %q", "question")
	}
	if q.ExpectedResultText == "" {
		return fmt.Errorf("missing required field %q", "expected_result_text")
	}
	return nil
}

// ConvertCSV converts a CSV export of evaluation questions into the JSON
// question-set format. The CSV must carry Category, Question and
// "Expected result" columns; the structured reference fields are filled
// in by hand afterwards.
func ConvertCSV(csvPath, jsonPath string) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("dataset: opening %s: %w", csvPath, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("dataset: reading CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"Category", "Question", "Expected result"} {
		if _, ok := col[required]; !ok {
			return fmt.Errorf("dataset: CSV missing required column %q", required)
		}
	}

	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("dataset: reading CSV rows: %w", err)
	}

	questions := make([]evaluation.Question, 0, len(records))
	for i, rec := range records {
		questions = append(questions, evaluation.Question{
			ID:                 fmt.Sprintf("q-%03d", i+1),
			Category:           rec[col["Category"]],
			Question:           rec[col["Question"]],
			ExpectedResultText: rec[col["Expected result"]],
		})
	}

	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return fmt.Errorf("dataset: marshaling questions: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return fmt.Errorf("dataset: writing %s: %w", jsonPath, err)
	}
	return nil
}
