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
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMeasureTablesExactMatch(t *testing.T) {
	tests := []struct {
		name      string
		generated *Table
		expected  *Table
		want      float64
	}{
		{
			name: "identical",
			generated: &Table{
				Columns: []string{"region", "sales"},
				Rows:    [][]any{{"east", 100.0}, {"west", 200.0}},
			},
			expected: &Table{
				Columns: []string{"region", "sales"},
				Rows:    [][]any{{"east", 100.0}, {"west", 200.0}},
			},
			want: 1.0,
		},
		{
			name: "row order permuted",
			generated: &Table{
				Columns: []string{"region", "sales"},
				Rows:    [][]any{{"west", 200.0}, {"east", 100.0}},
			},
			expected: &Table{
				Columns: []string{"region", "sales"},
				Rows:    [][]any{{"east", 100.0}, {"west", 200.0}},
			},
			want: 1.0,
		},
		{
			name: "column order permuted",
			generated: &Table{
				Columns: []string{"sales", "region"},
				Rows:    [][]any{{100.0, "east"}, {200.0, "west"}},
			},
			expected: &Table{
				Columns: []string{"region", "sales"},
				Rows:    [][]any{{"east", 100.0}, {"west", 200.0}},
			},
			want: 1.0,
		},
		{
			name: "numeric within relative tolerance",
			generated: &Table{
				Columns: []string{"region", "sales"},
				Rows:    [][]any{{"east", 100.5}},
			},
			expected: &Table{
				Columns: []string{"region", "sales"},
				Rows:    [][]any{{"east", 100.0}},
			},
			want: 1.0,
		},
		{
			name: "integer versus float dtype",
			generated: &Table{
				Columns: []string{"count"},
				Rows:    [][]any{{int64(4)}},
			},
			expected: &Table{
				Columns: []string{"count"},
				Rows:    [][]any{{4.0}},
			},
			want: 1.0,
		},
		{
			name: "string case and whitespace",
			generated: &Table{
				Columns: []string{"category"},
				Rows:    [][]any{{" Beauty "}},
			},
			expected: &Table{
				Columns: []string{"category"},
				Rows:    [][]any{{"beauty"}},
			},
			want: 1.0,
		},
		{
			name:      "both empty",
			generated: &Table{Columns: []string{"a"}},
			expected:  &Table{Columns: []string{"b"}},
			want:      1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeasureTables(tt.generated, tt.expected, nil)
			if !almostEqual(got, tt.want) {
				t.Errorf("MeasureTables() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMeasureTablesMissingSides(t *testing.T) {
	table := &Table{Columns: []string{"a"}, Rows: [][]any{{1.0}}}

	if got := MeasureTables(nil, table, nil); got != 0.0 {
		t.Errorf("nil generated = %v, want 0.0", got)
	}
	if got := MeasureTables(table, nil, nil); got != 0.0 {
		t.Errorf("nil expected = %v, want 0.0", got)
	}
}

func TestMeasureTablesDisjointColumns(t *testing.T) {
	generated := &Table{Columns: []string{"a"}, Rows: [][]any{{1.0}}}
	expected := &Table{Columns: []string{"b"}, Rows: [][]any{{1.0}}}

	if got := MeasureTables(generated, expected, nil); got != 0.0 {
		t.Errorf("MeasureTables() = %v, want 0.0", got)
	}
}

func TestMeasureTablesPartialRows(t *testing.T) {
	// Same columns, one of two rows matches: 0.3*1.0 + 0.7*0.5.
	generated := &Table{
		Columns: []string{"region", "sales"},
		Rows:    [][]any{{"east", 100.0}, {"west", 999.0}},
	}
	expected := &Table{
		Columns: []string{"region", "sales"},
		Rows:    [][]any{{"east", 100.0}, {"west", 200.0}},
	}

	got := MeasureTables(generated, expected, nil)
	if want := 0.3*1.0 + 0.7*0.5; !almostEqual(got, want) {
		t.Errorf("MeasureTables() = %v, want %v", got, want)
	}
}

func TestMeasureTablesPartialColumns(t *testing.T) {
	// Generated carries an extra column: column Jaccard 2/3, and the
	// restriction to the common columns still matches every row.
	generated := &Table{
		Columns: []string{"region", "sales", "extra"},
		Rows:    [][]any{{"east", 100.0, "x"}, {"west", 200.0, "y"}},
	}
	expected := &Table{
		Columns: []string{"region", "sales"},
		Rows:    [][]any{{"east", 100.0}, {"west", 200.0}},
	}

	got := MeasureTables(generated, expected, nil)
	if want := 0.3*(2.0/3.0) + 0.7*1.0; !almostEqual(got, want) {
		t.Errorf("MeasureTables() = %v, want %v", got, want)
	}
}

func TestMeasureTablesJoinTolerance(t *testing.T) {
	// 0.1 vs 0.109 fails the relative fast path but is inside the
	// absolute join tolerance, so the rows still pair up.
	hint := &JoinHint{Dimensions: []string{"region"}, Measures: []string{"rate"}}
	generated := &Table{
		Columns: []string{"region", "rate"},
		Rows:    [][]any{{"east", 0.109}},
	}
	expected := &Table{
		Columns: []string{"region", "rate"},
		Rows:    [][]any{{"east", 0.1}},
	}

	got := MeasureTables(generated, expected, hint)
	if !almostEqual(got, 1.0) {
		t.Errorf("MeasureTables() = %v, want 1.0", got)
	}
}

func TestMeasureTablesJoinKeyMismatch(t *testing.T) {
	// The dimension is the join key; a different key value means the
	// rows never pair even though the measures agree.
	hint := &JoinHint{Dimensions: []string{"region"}}
	generated := &Table{
		Columns: []string{"region", "sales"},
		Rows:    [][]any{{"north", 100.0}},
	}
	expected := &Table{
		Columns: []string{"region", "sales"},
		Rows:    [][]any{{"east", 100.0}},
	}

	got := MeasureTables(generated, expected, hint)
	if want := 0.3 * 1.0; !almostEqual(got, want) {
		t.Errorf("MeasureTables() = %v, want %v", got, want)
	}
}

func TestMeasureTablesRowCountMismatch(t *testing.T) {
	// Matched pairs divide by the larger row count.
	generated := &Table{
		Columns: []string{"region", "sales"},
		Rows:    [][]any{{"east", 100.0}},
	}
	expected := &Table{
		Columns: []string{"region", "sales"},
		Rows:    [][]any{{"east", 100.0}, {"west", 200.0}},
	}

	got := MeasureTables(generated, expected, nil)
	if want := 0.3*1.0 + 0.7*0.5; !almostEqual(got, want) {
		t.Errorf("MeasureTables() = %v, want %v", got, want)
	}
}

func TestTableScorer(t *testing.T) {
	scorer := NewTableScorer()
	if scorer.Metric() != MetricTableMatch {
		t.Fatalf("Metric() = %v, want %v", scorer.Metric(), MetricTableMatch)
	}

	question := &Question{
		ExpectedResult: []map[string]any{
			{"region": "east", "sales": 100.0},
			{"region": "west", "sales": 200.0},
		},
	}
	resp := &Response{
		Table: &Table{
			Columns: []string{"region", "sales"},
			Rows:    [][]any{{"west", 200.0}, {"east", 100.0}},
		},
		DimensionFields: []string{"region"},
	}

	score, err := scorer.Score(t.Context(), resp, question)
	if err != nil {
		t.Fatalf("Score() failed: %v", err)
	}
	if score.Status != ScoreStatusScored || score.Value == nil || !almostEqual(*score.Value, 1.0) {
		t.Errorf("Score() = %+v, want scored 1.0", score)
	}
}

func TestNewTableColumnUnion(t *testing.T) {
	table := NewTable([]map[string]any{
		{"b": 2.0, "a": 1.0},
		{"a": 3.0, "c": 4.0},
	})

	wantCols := []string{"a", "b", "c"}
	if len(table.Columns) != len(wantCols) {
		t.Fatalf("Columns = %v, want %v", table.Columns, wantCols)
	}
	for i, c := range wantCols {
		if table.Columns[i] != c {
			t.Fatalf("Columns = %v, want %v", table.Columns, wantCols)
		}
	}
	// The cell absent from row 1 is nil.
	if table.Rows[0][2] != nil {
		t.Errorf("Rows[0][2] = %v, want nil", table.Rows[0][2])
	}
}
