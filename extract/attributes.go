package extract

import (
	"regexp"
	"strconv"
)

var bedRules = []rule[int]{
	{
		name:    "number_beds",
		pattern: regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:bd|bds|beds?|bedrooms?|br)\b`),
		parse:   acceptCount(1, 30),
	},
	{
		name:    "beds_label",
		pattern: regexp.MustCompile(`(?i)\bbed(?:room)?s?\s*:\s*(\d{1,2})\b`),
		parse:   acceptCount(1, 30),
	},
}

var bathRules = []rule[float64]{
	{
		name:    "number_baths",
		pattern: regexp.MustCompile(`(?i)\b(\d{1,2}(?:\.\d)?)\s*(?:ba|bas|baths?|bathrooms?)\b`),
		parse:   acceptBaths,
	},
	{
		name:    "baths_label",
		pattern: regexp.MustCompile(`(?i)\bbath(?:room)?s?\s*:\s*(\d{1,2}(?:\.\d)?)\b`),
		parse:   acceptBaths,
	},
}

var sqftRules = []rule[int]{
	{
		name:    "number_sqft",
		pattern: regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})+|\d{3,7})\s*(?:sq\.?\s*ft|sqft|square\s+feet|sf)\b`),
		parse:   acceptCount(100, 1_000_000),
	},
}

func acceptCount(min, max int) func(m []string) (int, bool) {
	return func(m []string) (int, bool) {
		n, ok := parseGroupedInt(m[1])
		if !ok || n < min || n > max {
			return 0, false
		}
		return n, true
	}
}

func acceptBaths(m []string) (float64, bool) {
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil || f < 0.5 || f > 30 {
		return 0, false
	}
	return f, true
}

// Beds, Baths and SqFt are best-effort secondary fields; none of them affect
// whether a candidate is accepted.
func Beds(text string) (Match[int], bool) {
	return firstMatch(text, bedRules)
}

func Baths(text string) (Match[float64], bool) {
	return firstMatch(text, bathRules)
}

func SqFt(text string) (Match[int], bool) {
	return firstMatch(text, sqftRules)
}
