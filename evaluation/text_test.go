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

import "testing"

func TestRougeL(t *testing.T) {
	tests := []struct {
		name      string
		generated string
		expected  string
		check     func(float64) bool
		desc      string
	}{
		{
			name:      "identical",
			generated: "Total sales were highest in the east region.",
			expected:  "Total sales were highest in the east region.",
			check:     func(s float64) bool { return s > 0.99 },
			desc:      "> 0.99",
		},
		{
			name:      "empty generated",
			generated: "",
			expected:  "Total sales were highest in the east region.",
			check:     func(s float64) bool { return s == 0.0 },
			desc:      "0.0",
		},
		{
			name:      "empty expected",
			generated: "Total sales were highest in the east region.",
			expected:  "",
			check:     func(s float64) bool { return s == 0.0 },
			desc:      "0.0",
		},
		{
			name:      "unrelated",
			generated: "Blue elephants dance under purple moonlight tonight.",
			expected:  "Quarterly revenue grew across every product category.",
			check:     func(s float64) bool { return s < 0.2 },
			desc:      "< 0.2",
		},
		{
			name:      "partial overlap",
			generated: "Sales were highest in the east region during June.",
			expected:  "The east region had the highest sales overall.",
			check:     func(s float64) bool { return s > 0.2 && s < 0.8 },
			desc:      "in (0.2, 0.8)",
		},
		{
			name:      "inflection tolerant",
			generated: "the dog jumps over fences",
			expected:  "the dog jumping over fence",
			check:     func(s float64) bool { return s > 0.99 },
			desc:      "> 0.99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RougeL(tt.generated, tt.expected)
			if !tt.check(got) {
				t.Errorf("RougeL(%q, %q) = %v, want %s", tt.generated, tt.expected, got, tt.desc)
			}
		})
	}
}

func TestRougeLSymmetricF(t *testing.T) {
	// The F-measure swaps precision and recall under argument exchange
	// but keeps the same value.
	a := "total sales increased in the east"
	b := "sales increased everywhere"

	if x, y := RougeL(a, b), RougeL(b, a); !almostEqual(x, y) {
		t.Errorf("RougeL not symmetric: %v vs %v", x, y)
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"jumps", "jump"},
		{"jumping", "jump"},
		{"hopped", "hop"},
		{"agencies", "agenci"},
		{"caress", "caress"},
		{"cats", "cat"},
		{"happy", "happi"},
		{"the", "the"},
	}
	for _, tt := range tests {
		if got := stem(tt.in); got != tt.want {
			t.Errorf("stem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextScorerAlwaysScores(t *testing.T) {
	scorer := NewTextScorer()

	score, err := scorer.Score(t.Context(), &Response{}, &Question{ExpectedResultText: "something"})
	if err != nil {
		t.Fatalf("Score() failed: %v", err)
	}
	if score.Status != ScoreStatusScored || score.Value == nil || *score.Value != 0.0 {
		t.Errorf("Score() = %+v, want scored 0.0", score)
	}
}
