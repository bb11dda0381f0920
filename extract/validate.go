package extract

import (
	"regexp"
	"strings"

	"deal_hunter/models"
)

type Verdict string

const (
	Accepted             Verdict = "accepted"
	RejectedNoKeyword    Verdict = "no_property_keyword"
	RejectedAggregate    Verdict = "aggregate_page"
	RejectedInsufficient Verdict = "insufficient_signal"
)

var propertyKeywords = []string{
	"property", "land", "home", "house", "acre", "lot", "listing",
	"for sale", "real estate", "residential", "commercial", "address",
}

// HasPropertyKeyword filters navigational, blog and news results.
func HasPropertyKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range propertyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Category-page labels that are not street addresses even when they carry a
// number ("Land in Bastrop", "120 listings", "under $50,000").
var aggregateAddressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bpropert(?:y|ies)\b.*\bin\b.*\bcounty\b`),
	regexp.MustCompile(`(?i)\bland\s+(?:for\s+sale\s+)?in\b`),
	regexp.MustCompile(`(?i)\b\d[\d,]*\+?\s+(?:listings|properties|homes|results|lots|parcels)\b`),
	regexp.MustCompile(`(?i)\bsearch\b`),
	regexp.MustCompile(`(?i)\bunder\s+\$`),
}

// Title phrasings of search-results pages. Narrower than the address list so
// an individual listing titled "5 Acres of Land for Sale in Bastrop" survives.
var aggregateTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bpropert(?:y|ies)\b.*\bin\b.*\bcounty\b`),
	regexp.MustCompile(`(?i)\b\d[\d,]*\+?\s+(?:listings|properties|homes|results|lots|parcels)\b`),
	regexp.MustCompile(`(?i)\bsearch\s+results?\b`),
	regexp.MustCompile(`(?i)\bunder\s+\$`),
}

// IsAggregateAddress reports whether an address candidate is a category label.
func IsAggregateAddress(addr string) bool {
	return matchesAny(addr, aggregateAddressPatterns)
}

// IsAggregateTitle reports whether a result title reads like a listings index.
func IsAggregateTitle(title string) bool {
	return matchesAny(title, aggregateTitlePatterns)
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// Validate applies the keyword gate, the aggregate-page gate and the minimum
// signal rule: an address, or a price together with a lot size.
func Validate(raw models.RawResult, f Fields) Verdict {
	if !HasPropertyKeyword(raw.Title + " " + raw.Snippet) {
		return RejectedNoKeyword
	}
	if f.Address != nil && IsAggregateAddress(*f.Address) {
		return RejectedAggregate
	}
	if f.Address == nil && IsAggregateTitle(raw.Title) {
		return RejectedAggregate
	}
	if f.Address == nil && !(f.Price > 0 && f.Acres != nil) {
		return RejectedInsufficient
	}
	return Accepted
}
