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

package llmjudge

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ResponseParser extracts structured data from LLM judge responses.
type ResponseParser struct {
	ratingPattern      *regexp.Regexp
	explanationPattern *regexp.Regexp
}

// NewResponseParser creates a new response parser.
func NewResponseParser() *ResponseParser {
	return &ResponseParser{
		// Matches "Rating: 1", "rating = -1", "Score: 0"
		ratingPattern: regexp.MustCompile(`(?i)(?:rating|score)[:=\s]+(-?\d)`),

		explanationPattern: regexp.MustCompile(`(?i)explanation[:=\s]+(.+)`),
	}
}

// ParseRating extracts the -1/0/1 rating from the judge response.
func (p *ResponseParser) ParseRating(response string) (int, error) {
	matches := p.ratingPattern.FindStringSubmatch(response)
	if len(matches) < 2 {
		return 0, fmt.Errorf("no rating found in response: %s", response)
	}

	rating, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("failed to parse rating %q: %w", matches[1], err)
	}
	if rating < -1 || rating > 1 {
		return 0, fmt.Errorf("rating %d outside the -1..1 rubric", rating)
	}
	return rating, nil
}

// ParseExplanation extracts the judge's one-line explanation, or an
// empty string when none is present.
func (p *ResponseParser) ParseExplanation(response string) string {
	matches := p.explanationPattern.FindStringSubmatch(response)
	if len(matches) < 2 {
		return ""
	}
	explanation := strings.TrimSpace(matches[1])
	if idx := strings.IndexByte(explanation, '\n'); idx != -1 {
		explanation = explanation[:idx]
	}
	return explanation
}

// NormalizeRating maps the -1..1 rubric onto [0, 1].
func NormalizeRating(rating int) float64 {
	return (float64(rating) + 1) / 2
}
