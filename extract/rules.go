// Package extract turns noisy listing text into typed property fields.
//
// Every field has an ordered list of rules. Rules are tried in order and the
// first one producing an accepted value wins; values are never merged across
// rules. Within a rule, occurrences are scanned left to right and the first
// one the rule's parser accepts is used, so a match that fails a plausibility
// range does not hide a later valid one.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

type rule[T any] struct {
	name    string
	pattern *regexp.Regexp
	parse   func(m []string) (T, bool)
	// notAfter lists characters that may not directly precede a match, so a
	// pattern cannot start inside a neighbouring token such as "$89,000".
	notAfter string
}

// Match records which rule produced a value and the text it matched.
type Match[T any] struct {
	Value T
	Rule  string
	Text  string
}

func firstMatch[T any](text string, rules []rule[T]) (Match[T], bool) {
	for _, r := range rules {
		for _, loc := range r.pattern.FindAllStringSubmatchIndex(text, -1) {
			if r.notAfter != "" && loc[0] > 0 && strings.ContainsRune(r.notAfter, rune(text[loc[0]-1])) {
				continue
			}
			m := submatches(text, loc)
			if v, ok := r.parse(m); ok {
				return Match[T]{Value: v, Rule: r.name, Text: m[0]}, true
			}
		}
	}
	var zero Match[T]
	return zero, false
}

func submatches(text string, loc []int) []string {
	m := make([]string, len(loc)/2)
	for i := range m {
		if loc[2*i] >= 0 {
			m[i] = text[loc[2*i]:loc[2*i+1]]
		}
	}
	return m
}

func parseGroupedInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseGroupedFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var multiSpaceRegex = regexp.MustCompile(`\s+`)

func collapseSpace(s string) string {
	return strings.TrimSpace(multiSpaceRegex.ReplaceAllString(s, " "))
}
