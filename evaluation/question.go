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

import "sort"

// Question is a single evaluation case: a natural-language question plus
// the human-authored reference material it is scored against. Questions
// are immutable once loaded.
type Question struct {
	ID       string `json:"id,omitempty"`
	Category string `json:"category"`
	Question string `json:"question"`

	// ExpectedResult holds the expected table as ordered row mappings
	// (column name -> value). Row order is not semantically meaningful.
	ExpectedResult []map[string]any `json:"expected_result,omitempty"`

	// ExpectedResultText is the expected free-text answer.
	ExpectedResultText string `json:"expected_result_text"`

	// ReferenceQuery is the gold-standard structured query, when one has
	// been authored for this question.
	ReferenceQuery *ReferenceQuery `json:"reference_query,omitempty"`

	// ExpectedChart is the expected visualization, when one has been
	// authored for this question.
	ExpectedChart *ExpectedChart `json:"expected_data_visualization,omitempty"`
}

// ReferenceQuery is the human-authored expected structured query.
//
// A nil Fields slice means the reference carries no field list at all;
// the query metric is not applicable in that case.
type ReferenceQuery struct {
	Fields  []string          `json:"fields"`
	Filters map[string]string `json:"filters,omitempty"`
	Model   string            `json:"model,omitempty"`
	Explore string            `json:"explore,omitempty"`
}

// ExpectedChart describes the expected visualization for a question.
type ExpectedChart struct {
	Type  string `json:"type"`
	XAxis string `json:"x-axis"`
	YAxis string `json:"y-axis"`
}

// Response is the agent's output bundle for one question, validated once
// at the collaborator boundary. All artifact fields are optional; absent
// artifacts are nil or empty. The core treats a Response as read-only.
type Response struct {
	SQL   string     `json:"sql,omitempty"`
	Table *Table     `json:"table,omitempty"`
	Query *Query     `json:"query,omitempty"`
	Text  string     `json:"text,omitempty"`
	Chart *ChartSpec `json:"chart,omitempty"`

	// DimensionFields and MeasureFields come from the generated query's
	// schema: dimensions are grouping/identity columns, measures are
	// numeric aggregates. The table comparator uses dimensions as join
	// keys.
	DimensionFields []string `json:"dimension_fields,omitempty"`
	MeasureFields   []string `json:"measure_fields,omitempty"`
}

// Query is the agent's generated structured query.
type Query struct {
	Fields  []string      `json:"fields,omitempty"`
	Filters []QueryFilter `json:"filters,omitempty"`
	Model   string        `json:"model,omitempty"`
	Explore string        `json:"explore,omitempty"`
}

// QueryFilter is a single (field, value) filter pair.
type QueryFilter struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// ChartSpec is a Vega-style chart specification reduced to the parts the
// chart metric inspects.
type ChartSpec struct {
	Mark     MarkSpec     `json:"mark"`
	Encoding EncodingSpec `json:"encoding"`
}

// MarkSpec identifies the chart's mark type, e.g. "bar" or "line".
type MarkSpec struct {
	Type string `json:"type"`
}

// EncodingSpec carries the x and y axis encodings.
type EncodingSpec struct {
	X AxisSpec `json:"x"`
	Y AxisSpec `json:"y"`
}

// AxisSpec names the field bound to an axis.
type AxisSpec struct {
	Field string `json:"field"`
}

// IsZero reports whether the spec carries no mark and no axis fields.
func (c *ChartSpec) IsZero() bool {
	return c == nil || (c.Mark.Type == "" && c.Encoding.X.Field == "" && c.Encoding.Y.Field == "")
}

// Table is a tabular result with named columns and rows of scalar cells.
// Tables compare by value; row order is not semantically meaningful.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewTable builds a table from ordered row mappings. Columns are the
// union of the row keys in lexicographic order so that construction is
// deterministic; cells absent from a row are nil.
func NewTable(records []map[string]any) *Table {
	seen := make(map[string]bool)
	var columns []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)

	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = rec[col]
		}
		rows[i] = row
	}
	return &Table{Columns: columns, Rows: rows}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Records returns the table as row mappings, for serialization into
// reports.
func (t *Table) Records() []map[string]any {
	if t == nil {
		return nil
	}
	records := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for j, col := range t.Columns {
			if j < len(row) {
				rec[col] = row[j]
			}
		}
		records[i] = rec
	}
	return records
}
