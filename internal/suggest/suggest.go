// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

// Package suggest ranks command identifiers against a mistyped one.
// All functions are pure; callers supply the candidate list.
package suggest

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Separator splits command identifiers into namespace segments.
const Separator = ":"

// Default result limits.
const (
	DefaultOrderedLimit = 3
	DefaultRelatedLimit = 2
)

var folder = cases.Fold()

// fold canonicalizes a string for comparison: Unicode NFC normalization
// followed by case folding, so "Config" and "config" are equal and
// composed/decomposed accents compare the same.
func fold(s string) string {
	return folder.String(norm.NFC.String(s))
}

// Distance returns the Levenshtein edit distance between a and b after
// canonicalization.
func Distance(a, b string) int {
	ra := []rune(fold(a))
	rb := []rune(fold(b))

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(
				prev[j]+1,      // deletion
				cur[j-1]+1,     // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// Closest returns the candidate with the minimum edit distance to target.
// Ties resolve to the earliest candidate in list order. Returns false when
// candidates is empty.
func Closest(target string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	best := candidates[0]
	bestDist := Distance(target, best)
	for _, c := range candidates[1:] {
		if d := Distance(target, c); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best, true
}

// Ordered returns up to limit candidates ranked ascending by edit distance
// to target. Equal distances keep list order. A non-positive limit falls
// back to DefaultOrderedLimit.
func Ordered(target string, candidates []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultOrderedLimit
	}

	ranked := make([]string, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return Distance(target, ranked[i]) < Distance(target, ranked[j])
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Related returns up to limit candidates sharing a namespace segment with
// target, excluding target itself. This is a substring heuristic, not
// edit-distance based: it surfaces namespace siblings rather than close
// typos. A non-positive limit falls back to DefaultRelatedLimit.
func Related(target string, candidates []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	segments := strings.Split(fold(target), Separator)
	var related []string
	for _, c := range candidates {
		if c == target {
			continue
		}
		cf := fold(c)
		for _, seg := range segments {
			if seg == "" {
				continue
			}
			if strings.Contains(cf, seg) {
				related = append(related, c)
				break
			}
		}
		if len(related) == limit {
			break
		}
	}
	return related
}
