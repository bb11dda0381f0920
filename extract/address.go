package extract

import (
	"regexp"
	"strings"
	"unicode"
)

const minAddressLen = 10

const (
	streetSuffixes    = `street|st|avenue|ave|road|rd|drive|dr|lane|ln|court|ct|boulevard|blvd|way|parkway|pkwy|place|pl|loop|circle|cir`
	streetWord        = `(?:[A-Z][A-Za-z'.-]*|\d{1,3}(?:st|nd|rd|th))`
	anyCaseStreetWord = `(?:[a-z][a-z'.-]*|\d{1,3}(?:st|nd|rd|th))`
	stateAbbrevs      = `AL|AK|AZ|AR|CA|CO|CT|DE|DC|FL|GA|HI|ID|IL|IN|IA|KS|KY|LA|ME|MD|MA|MI|MN|MS|MO|MT|NE|NV|NH|NJ|NM|NY|NC|ND|OH|OK|OR|PA|RI|SC|SD|TN|TX|UT|VT|VA|WA|WV|WI|WY`
	stateNames        = `Alabama|Arizona|Arkansas|California|Colorado|Florida|Georgia|Idaho|Kentucky|Louisiana|Mississippi|Missouri|Montana|Nevada|New Mexico|North Carolina|Oklahoma|Oregon|South Carolina|Tennessee|Texas|Utah|Virginia|Washington|Wyoming`
)

// Characters that put a street number inside a price or decimal.
const numberGlue = ",$."

var addressRules = []rule[string]{
	{
		// "1234 County Road 345", "500 Oak St", "77 N 5th Ave"
		name: "numbered_street",
		pattern: regexp.MustCompile(`\b\d{1,6}\s+` + streetWord + `(?:\s+` + streetWord + `){0,4}\s+(?i:` +
			streetSuffixes + `)\b\.?(?:\s+\d{1,4}\b)?`),
		parse:    acceptStreetAddress,
		notAfter: numberGlue,
	},
	{
		// "120 Pecan Valley, Austin, TX"
		name: "number_city_state",
		pattern: regexp.MustCompile(`\b\d{1,5}\s+[A-Z][A-Za-z]*(?:\s+[A-Za-z]+){0,4},\s*(?:[A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*){0,2},\s*)?(?:` +
			stateAbbrevs + `)\b`),
		parse:    acceptStreetAddress,
		notAfter: numberGlue,
	},
	{
		// "Lot 7 Hidden Ranch, Bastrop County, TX", "Parcel #12 Smith Rd Texas"
		name: "lot_parcel_state",
		pattern: regexp.MustCompile(`\b(?i:lot|parcel|tract)\s*#?\s*[A-Za-z0-9-]*\d[A-Za-z0-9-]*(?:[\s,]+[A-Za-z0-9#'-]+){0,8}?,?\s+(?:` +
			stateAbbrevs + `|` + stateNames + `)\b`),
		parse: acceptAddress,
	},
	{
		// "123 main street", "1234 county road 345": lowercase snippets. The
		// shortest street name is taken since any word may be part of it.
		name: "numbered_street_any_case",
		pattern: regexp.MustCompile(`(?i)\b\d{1,6}\s+` + anyCaseStreetWord + `(?:\s+` + anyCaseStreetWord + `){0,2}?\s+(?:` +
			streetSuffixes + `)\b\.?(?:\s+\d{1,4}\b)?`),
		parse:    acceptStreetAddress,
		notAfter: numberGlue,
	},
}

func acceptAddress(m []string) (string, bool) {
	addr := strings.TrimRight(collapseSpace(m[0]), " ,;:-")
	if len(addr) < minAddressLen {
		return "", false
	}
	return addr, true
}

// listingNoiseRegex catches listing attributes that the street patterns can
// mistake for a street name ("2 Bedroom Home, Austin, TX").
var listingNoiseRegex = regexp.MustCompile(`(?i)\b(?:beds?|bedrooms?|baths?|bathrooms?|acres?|sq\.?\s*ft|sqft|homes?|houses?|lots|listings?|properties)\b`)

func acceptStreetAddress(m []string) (string, bool) {
	if listingNoiseRegex.MatchString(m[0]) {
		return "", false
	}
	return acceptAddress(m)
}

// Address returns the first street-level address found in text.
func Address(text string) (Match[string], bool) {
	return firstMatch(text, addressRules)
}

// addressFromHint accepts the text of a dedicated address element from a known
// listing site. The pattern rules run first; failing those, the element text
// itself is used when it reads like a street address.
func addressFromHint(hint string) (string, bool) {
	hint = collapseSpace(hint)
	if hint == "" {
		return "", false
	}
	if m, ok := Address(hint); ok {
		return m.Value, true
	}
	if len(hint) < minAddressLen || len(hint) > 120 {
		return "", false
	}
	if !unicode.IsDigit(rune(hint[0])) {
		return "", false
	}
	return strings.TrimRight(hint, " ,;:-"), true
}
