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
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	// Weighting of the partial score: column overlap is a coarse
	// structural signal, row-level matching carries the values.
	tableColumnWeight = 0.3
	tableDataWeight   = 0.7

	// Relative tolerance for the exact-match fast path.
	exactMatchRelTol = 1e-2

	// Absolute tolerance for numeric cells during the fuzzy row join.
	joinAbsTol = 0.01
)

// JoinHint carries the generated query's schema split. Dimensions that
// survive column restriction become the join keys for row matching.
type JoinHint struct {
	Dimensions []string
	Measures   []string
}

// TableScorer scores the generated result table against the question's
// expected rows.
type TableScorer struct{}

// NewTableScorer creates a table scorer.
func NewTableScorer() *TableScorer {
	return &TableScorer{}
}

// Metric implements Scorer.
func (s *TableScorer) Metric() MetricType {
	return MetricTableMatch
}

// Score implements Scorer.
func (s *TableScorer) Score(ctx context.Context, resp *Response, question *Question) (*MetricScore, error) {
	var generated *Table
	var hint *JoinHint
	if resp != nil {
		generated = resp.Table
		hint = &JoinHint{Dimensions: resp.DimensionFields, Measures: resp.MeasureFields}
	}
	var expected *Table
	if question != nil && question.ExpectedResult != nil {
		expected = NewTable(question.ExpectedResult)
	}
	return Scored(MetricTableMatch, MeasureTables(generated, expected, hint)), nil
}

// MeasureTables scores the similarity of two tables in [0, 1].
//
// A nil table on either side scores 0.0 and two zero-row tables score
// 1.0. Otherwise both tables are canonicalized (columns aligned by name,
// rows sorted lexicographically) and checked for equality up to numeric
// precision; on failure a weighted partial score combines column-set
// overlap with a fuzzy outer row join on the hint's dimension columns.
func MeasureTables(generated, expected *Table, hint *JoinHint) float64 {
	if generated == nil || expected == nil {
		return 0.0
	}
	if len(generated.Rows) == 0 && len(expected.Rows) == 0 {
		return 1.0
	}

	if tablesEqual(generated, expected) {
		return 1.0
	}

	columnScore, common := columnOverlap(generated.Columns, expected.Columns)
	if len(common) == 0 {
		// No shared columns: no basis for row comparison.
		return 0.0
	}

	joinKeys := joinKeyColumns(common, hint)
	dataScore := fuzzyJoinScore(generated, expected, common, joinKeys)

	return tableColumnWeight*columnScore + tableDataWeight*dataScore
}

// tablesEqual is the exact-match fast path: same column set, same row
// count, and cell-wise equality after canonicalization, with numeric
// cells compared under a small relative tolerance and without regard to
// cell dtype.
func tablesEqual(a, b *Table) bool {
	if len(a.Columns) != len(b.Columns) || len(a.Rows) != len(b.Rows) {
		return false
	}

	cols := append([]string(nil), a.Columns...)
	sort.Strings(cols)
	for _, c := range cols {
		if b.ColumnIndex(c) < 0 {
			return false
		}
	}

	ra := canonicalRows(a, cols)
	rb := canonicalRows(b, cols)
	for i := range ra {
		for j := range cols {
			if !cellsEqualRel(ra[i][j], rb[i][j], exactMatchRelTol) {
				return false
			}
		}
	}
	return true
}

// canonicalRows projects the table onto the given column order and sorts
// the rows lexicographically by normalized cell text. The sort is stable
// so equal rows keep their relative source order.
func canonicalRows(t *Table, cols []string) [][]any {
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.ColumnIndex(c)
	}

	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		proj := make([]any, len(cols))
		for j, k := range idx {
			if k >= 0 && k < len(row) {
				proj[j] = row[k]
			}
		}
		rows[i] = proj
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for k := range cols {
			si, sj := normCell(rows[i][k]), normCell(rows[j][k])
			if si != sj {
				return si < sj
			}
		}
		return false
	})
	return rows
}

// columnOverlap returns the Jaccard similarity of the two column sets
// and the sorted intersection.
func columnOverlap(a, b []string) (float64, []string) {
	setA := make(map[string]bool, len(a))
	for _, c := range a {
		setA[c] = true
	}
	setB := make(map[string]bool, len(b))
	for _, c := range b {
		setB[c] = true
	}

	union := make(map[string]bool, len(setA)+len(setB))
	var common []string
	for c := range setA {
		union[c] = true
		if setB[c] {
			common = append(common, c)
		}
	}
	for c := range setB {
		union[c] = true
	}
	sort.Strings(common)

	if len(union) == 0 {
		return 0.0, nil
	}
	return float64(len(common)) / float64(len(union)), common
}

// joinKeyColumns picks the row-join key set: the hint's dimensions when
// any survive the column restriction, otherwise all common columns.
// Dimensions are the grouping columns, so they identify rows; measures
// then only need to agree within tolerance.
func joinKeyColumns(common []string, hint *JoinHint) map[string]bool {
	keys := make(map[string]bool)
	if hint != nil {
		commonSet := make(map[string]bool, len(common))
		for _, c := range common {
			commonSet[c] = true
		}
		for _, d := range hint.Dimensions {
			if commonSet[d] {
				keys[d] = true
			}
		}
	}
	if len(keys) == 0 {
		for _, c := range common {
			keys[c] = true
		}
	}
	return keys
}

// fuzzyJoinScore performs an approximate outer join of the two tables,
// restricted to the common columns, and returns matched pairs over the
// larger row count. Join-key cells must agree as normalized strings;
// remaining numeric cells must agree within an absolute tolerance.
func fuzzyJoinScore(generated, expected *Table, common []string, joinKeys map[string]bool) float64 {
	genRows := restrictRows(generated, common)
	expRows := restrictRows(expected, common)

	if len(genRows) == 0 && len(expRows) == 0 {
		return 0.0
	}

	matchedGen := make([]bool, len(genRows))
	matched := 0
	for _, er := range expRows {
		for i, gr := range genRows {
			if matchedGen[i] {
				continue
			}
			if rowsMatch(gr, er, common, joinKeys) {
				matchedGen[i] = true
				matched++
				break
			}
		}
	}

	denom := len(genRows)
	if len(expRows) > denom {
		denom = len(expRows)
	}
	return float64(matched) / float64(denom)
}

func restrictRows(t *Table, cols []string) [][]any {
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.ColumnIndex(c)
	}
	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		proj := make([]any, len(cols))
		for j, k := range idx {
			if k >= 0 && k < len(row) {
				proj[j] = row[k]
			}
		}
		rows[i] = proj
	}
	return rows
}

func rowsMatch(gen, exp []any, cols []string, joinKeys map[string]bool) bool {
	for j, col := range cols {
		if joinKeys[col] {
			if normCell(gen[j]) != normCell(exp[j]) {
				return false
			}
			continue
		}
		if !cellsEqualAbs(gen[j], exp[j], joinAbsTol) {
			return false
		}
	}
	return true
}

// normCell renders a cell for comparison: trimmed, lowercased, with
// numbers in a canonical decimal form so 4, 4.0 and "4" agree.
func normCell(v any) string {
	if f, ok := cellNumber(v); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
}

// cellNumber extracts a numeric value from the cell if it has one.
func cellNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// cellsEqualRel compares two cells, numbers under a relative tolerance,
// everything else as normalized strings.
func cellsEqualRel(a, b any, relTol float64) bool {
	fa, okA := cellNumber(a)
	fb, okB := cellNumber(b)
	if okA && okB {
		diff := math.Abs(fa - fb)
		scale := math.Max(math.Abs(fa), math.Abs(fb))
		if scale == 0 {
			return diff == 0
		}
		return diff <= relTol*scale
	}
	return normCell(a) == normCell(b)
}

// cellsEqualAbs compares two cells, numbers under an absolute tolerance,
// everything else as normalized strings.
func cellsEqualAbs(a, b any, absTol float64) bool {
	fa, okA := cellNumber(a)
	fb, okB := cellNumber(b)
	if okA && okB {
		return math.Abs(fa-fb) <= absTol
	}
	return normCell(a) == normCell(b)
}
