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
	"strings"
)

const (
	queryFieldWeight  = 0.6
	queryFilterWeight = 0.4
)

// timeGrainSuffixes are the date grains a field name may carry. Two
// filter keys that agree after stripping a grain suffix reference the
// same underlying date field; choosing a different grain is treated as
// key-equivalent. Longer suffixes listed first so _fiscal_year wins
// over _year.
var timeGrainSuffixes = []string{
	"_fiscal_quarter",
	"_fiscal_year",
	"_quarter",
	"_minute",
	"_second",
	"_month",
	"_year",
	"_week",
	"_date",
	"_hour",
}

// QueryScoreBreakdown exposes the weighted sub-components of a query
// score for reporting. Model and explore carry zero weight on the
// current single-model, single-explore API surface and exist for
// forward compatibility.
type QueryScoreBreakdown struct {
	FieldScore       float64 `json:"field_score"`
	FilterKeyScore   float64 `json:"filter_key_score"`
	FilterValueScore float64 `json:"filter_value_score"`
	ModelScore       float64 `json:"model_score"`
	ExploreScore     float64 `json:"explore_score"`
	Total            float64 `json:"total"`
}

// QueryScorer scores the structural similarity of the generated query
// against the question's reference query.
type QueryScorer struct{}

// NewQueryScorer creates a query scorer.
func NewQueryScorer() *QueryScorer {
	return &QueryScorer{}
}

// Metric implements Scorer.
func (s *QueryScorer) Metric() MetricType {
	return MetricQueryMatch
}

// Score implements Scorer. The score is absent when the question has no
// reference query or the reference carries no field list: there is
// nothing to compare against, which is not a zero.
func (s *QueryScorer) Score(ctx context.Context, resp *Response, question *Question) (*MetricScore, error) {
	var ref *ReferenceQuery
	if question != nil {
		ref = question.ReferenceQuery
	}
	var generated *Query
	if resp != nil {
		generated = resp.Query
	}

	score, _ := ScoreQuery(generated, ref)
	if score == nil {
		return NotApplicable(MetricQueryMatch), nil
	}
	return Scored(MetricQueryMatch, *score), nil
}

// ScoreQuery computes the weighted structural similarity of a generated
// query to a reference in [0, 1], together with its breakdown. It
// returns a nil score when the reference is absent or has no fields key.
//
// Field overlap carries weight 0.6 as a Jaccard similarity; filters
// carry 0.4, split evenly between key matching and value matching. A
// reference without filters awards the full filter weight: absence of
// constraints is automatically satisfied.
func ScoreQuery(generated *Query, ref *ReferenceQuery) (*float64, *QueryScoreBreakdown) {
	if ref == nil || ref.Fields == nil {
		return nil, nil
	}

	var genFields []string
	var genFilters []QueryFilter
	if generated != nil {
		genFields = generated.Fields
		genFilters = generated.Filters
	}

	bd := &QueryScoreBreakdown{
		FieldScore: fieldJaccard(genFields, ref.Fields),
	}

	if len(ref.Filters) == 0 {
		bd.FilterKeyScore = 1.0
		bd.FilterValueScore = 1.0
	} else {
		bd.FilterKeyScore, bd.FilterValueScore = scoreFilters(genFilters, ref.Filters)
	}

	filterScore := 0.5*bd.FilterKeyScore + 0.5*bd.FilterValueScore
	total := queryFieldWeight*bd.FieldScore + queryFilterWeight*filterScore
	if total > 1.0 {
		total = 1.0
	}
	bd.Total = total
	return &total, bd
}

func fieldJaccard(generated, reference []string) float64 {
	genSet := make(map[string]bool, len(generated))
	for _, f := range generated {
		genSet[f] = true
	}
	refSet := make(map[string]bool, len(reference))
	for _, f := range reference {
		refSet[f] = true
	}

	if len(genSet) == 0 && len(refSet) == 0 {
		return 1.0
	}

	intersection := 0
	for f := range genSet {
		if refSet[f] {
			intersection++
		}
	}
	union := len(genSet) + len(refSet) - intersection
	return float64(intersection) / float64(union)
}

// scoreFilters matches generated filter keys against reference keys.
// A key matches exactly, or by root equivalence when both keys agree
// after stripping a trailing time-grain suffix; each reference key is
// consumed at most once. Values are only compared across exact key
// matches, since root-equivalent keys express the same constraint at a
// different grain and their values are not comparable.
func scoreFilters(generated []QueryFilter, reference map[string]string) (keyScore, valueScore float64) {
	genValues := make(map[string]string, len(generated))
	for _, f := range generated {
		genValues[strings.TrimSpace(f.Field)] = normFilterValue(f.Value)
	}
	refValues := make(map[string]string, len(reference))
	for k, v := range reference {
		refValues[strings.TrimSpace(k)] = normFilterValue(v)
	}

	refMatched := make(map[string]bool, len(refValues))
	exactKeys := make([]string, 0, len(genValues))

	// First pass: exact key matches.
	for gk := range genValues {
		if _, ok := refValues[gk]; ok && !refMatched[gk] {
			refMatched[gk] = true
			exactKeys = append(exactKeys, gk)
		}
	}

	// Second pass: time-grain root equivalence against the still
	// unmatched reference keys.
	matched := len(exactKeys)
	for gk := range genValues {
		if refMatched[gk] {
			continue
		}
		root := stripTimeGrain(gk)
		for rk := range refValues {
			if refMatched[rk] {
				continue
			}
			if stripTimeGrain(rk) == root {
				refMatched[rk] = true
				matched++
				break
			}
		}
	}

	keyScore = float64(matched) / float64(len(refValues))

	if len(exactKeys) == 0 {
		// No exactly-matching keys: do not penalize filters that only
		// matched through grain equivalence.
		return keyScore, 1.0
	}

	equal := 0
	for _, k := range exactKeys {
		if genValues[k] == refValues[k] {
			equal++
		}
	}
	return keyScore, float64(equal) / float64(len(exactKeys))
}

// normFilterValue lowercases, trims and strips wildcard markers so
// "%Beauty%" and "beauty" compare equal.
func normFilterValue(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.ReplaceAll(v, "%", "")
	v = strings.ReplaceAll(v, "*", "")
	return v
}

func stripTimeGrain(key string) string {
	for _, suffix := range timeGrainSuffixes {
		if trimmed, ok := strings.CutSuffix(key, suffix); ok {
			return trimmed
		}
	}
	return key
}
