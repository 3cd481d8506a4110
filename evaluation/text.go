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
	"unicode"
)

// TextScorer scores the generated free-text answer against the expected
// answer text.
type TextScorer struct{}

// NewTextScorer creates a text scorer.
func NewTextScorer() *TextScorer {
	return &TextScorer{}
}

// Metric implements Scorer.
func (s *TextScorer) Metric() MetricType {
	return MetricTextMatch
}

// Score implements Scorer.
func (s *TextScorer) Score(ctx context.Context, resp *Response, question *Question) (*MetricScore, error) {
	var generated string
	if resp != nil {
		generated = resp.Text
	}
	var expected string
	if question != nil {
		expected = question.ExpectedResultText
	}
	return Scored(MetricTextMatch, RougeL(generated, expected)), nil
}

// RougeL computes the ROUGE-L F-measure between a generated and an
// expected text: recall and precision over the longest common
// subsequence of stemmed tokens, F = 2PR/(P+R). The score is
// order-sensitive at the token-sequence level but tolerant of
// paraphrasing at the word-stem level. Either text empty scores 0.0.
func RougeL(generated, expected string) float64 {
	genTokens := stemTokens(generated)
	expTokens := stemTokens(expected)
	if len(genTokens) == 0 || len(expTokens) == 0 {
		return 0.0
	}

	lcs := lcsLength(expTokens, genTokens)
	precision := float64(lcs) / float64(len(genTokens))
	recall := float64(lcs) / float64(len(expTokens))
	if precision+recall == 0 {
		return 0.0
	}
	return 2 * precision * recall / (precision + recall)
}

// lcsLength computes the longest-common-subsequence length of two token
// sequences with a rolling single-row DP.
func lcsLength(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	row := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prevDiag := 0
		for j := 1; j <= len(b); j++ {
			tmp := row[j]
			if a[i-1] == b[j-1] {
				row[j] = prevDiag + 1
			} else if row[j-1] > row[j] {
				row[j] = row[j-1]
			}
			prevDiag = tmp
		}
	}
	return row[len(b)]
}

func stemTokens(text string) []string {
	tokens := tokenize(text)
	for i, t := range tokens {
		tokens[i] = stem(t)
	}
	return tokens
}

// tokenize lowercases the text and splits it into alphanumeric runs.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// stem applies a Porter-style suffix strip so that plural and inflected
// forms of the same word compare equal ("jumps", "jumping" -> "jump").
// It covers the high-frequency English suffixes; it is not a full
// Porter implementation.
func stem(w string) string {
	if len(w) <= 3 {
		return w
	}

	// Step 1a: plurals.
	switch {
	case strings.HasSuffix(w, "sses"):
		w = strings.TrimSuffix(w, "es")
	case strings.HasSuffix(w, "ies"):
		w = strings.TrimSuffix(w, "es")
	case strings.HasSuffix(w, "ss"):
		// keep
	case strings.HasSuffix(w, "s"):
		w = strings.TrimSuffix(w, "s")
	}

	// Step 1b: -ed / -ing.
	switch {
	case strings.HasSuffix(w, "eed"):
		if len(w) > 4 {
			w = strings.TrimSuffix(w, "d")
		}
	case strings.HasSuffix(w, "ed") && hasVowel(strings.TrimSuffix(w, "ed")):
		w = strings.TrimSuffix(w, "ed")
		w = repairStem(w)
	case strings.HasSuffix(w, "ing") && hasVowel(strings.TrimSuffix(w, "ing")):
		w = strings.TrimSuffix(w, "ing")
		w = repairStem(w)
	}

	// Step 1c: terminal y after a consonant.
	if strings.HasSuffix(w, "y") && len(w) > 2 && !isVowel(rune(w[len(w)-2])) {
		w = strings.TrimSuffix(w, "y") + "i"
	}

	return w
}

// repairStem restores a usable stem after -ed/-ing removal: "hopp" ->
// "hop", "charg" stays, "us" -> "use" style endings.
func repairStem(w string) string {
	switch {
	case strings.HasSuffix(w, "at"), strings.HasSuffix(w, "bl"), strings.HasSuffix(w, "iz"):
		return w + "e"
	case len(w) >= 2 && w[len(w)-1] == w[len(w)-2] && !isVowel(rune(w[len(w)-1])) &&
		!strings.ContainsRune("lsz", rune(w[len(w)-1])):
		return w[:len(w)-1]
	default:
		return w
	}
}

func hasVowel(w string) bool {
	for _, r := range w {
		if isVowel(r) {
			return true
		}
	}
	return false
}

func isVowel(r rune) bool {
	return strings.ContainsRune("aeiou", r)
}
