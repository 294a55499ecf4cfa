// Copyright 2020-2021 Dolthub, Inc.
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

// Package suggest scores candidate identifiers against a misspelled name
// and returns the closest few, for "did you mean" hints attached to
// UNKNOWN_* errors.
package suggest

import (
	"sort"
	"strings"
)

// Suggestions returns up to max candidates from the list that most closely
// resemble search, cheapest first. A candidate that contains search (or is
// contained by it) as a substring scores 0, the best possible score;
// otherwise candidates are ranked by a length-plus-shared-letters
// distance, which is also 0 for a candidate made of exactly the same
// letters. Ties keep the input order. An empty search or candidate list
// returns nil.
func Suggestions(candidates []string, search string, max int) []string {
	if search == "" || len(candidates) == 0 {
		return nil
	}
	type scored struct {
		name  string
		score int
		index int
	}
	needle := strings.ToLower(search)
	ranked := make([]scored, 0, len(candidates))
	for i, c := range candidates {
		ranked = append(ranked, scored{name: c, score: similarity(needle, strings.ToLower(c)), index: i})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		return ranked[i].index < ranked[j].index
	})
	if max <= 0 || max > len(ranked) {
		max = len(ranked)
	}
	out := make([]string, 0, max)
	for i := 0; i < max; i++ {
		out = append(out, ranked[i].name)
	}
	return out
}

// similarity is a cheap distance: a substring match scores 0 (best
// possible); otherwise the score is len(a)+len(b) minus twice the number of
// characters the two strings have in common (by rune, counting
// multiplicity), so names that share more letters score lower/better.
func similarity(a, b string) int {
	if a == b {
		return 0
	}
	if strings.Contains(b, a) || strings.Contains(a, b) {
		return 0
	}
	return len(a) + len(b) - 2*commonChars(a, b)
}

func commonChars(a, b string) int {
	counts := make(map[rune]int)
	for _, r := range a {
		counts[r]++
	}
	common := 0
	for _, r := range b {
		if counts[r] > 0 {
			counts[r]--
			common++
		}
	}
	return common
}
