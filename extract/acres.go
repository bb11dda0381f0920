package extract

import "regexp"

// Lot sizes outside (MinAcres, MaxAcres) are treated as extraction noise.
const (
	MinAcres = 0.1
	MaxAcres = 10_000
)

const acreNumber = `(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?|\.\d+)`

var acreRules = []rule[float64]{
	{
		// "2.5 acres", "10-acre"
		name:    "number_acres",
		pattern: regexp.MustCompile(`(?i)` + acreNumber + `\s*-?\s*acres?\b`),
		parse:   acceptAcres,
	},
	{
		// "Lot size: 3.2 ac"
		name:    "lot_size_label",
		pattern: regexp.MustCompile(`(?i)\b(?:lot|property|parcel)\s+size[\s:]*` + acreNumber + `\s*(?:acres?|ac)\b`),
		parse:   acceptAcres,
	},
	{
		// "5 ac"
		name:    "number_ac",
		pattern: regexp.MustCompile(`(?i)` + acreNumber + `\s*ac\b`),
		parse:   acceptAcres,
	},
}

func acceptAcres(m []string) (float64, bool) {
	acres, ok := parseGroupedFloat(m[1])
	if !ok || acres <= MinAcres || acres >= MaxAcres {
		return 0, false
	}
	return acres, true
}

// Acres returns the first plausible lot size, in acres, found in text.
func Acres(text string) (Match[float64], bool) {
	return firstMatch(text, acreRules)
}
