package extract

import "regexp"

const (
	MinPrice = 1_000
	MaxPrice = 50_000_000
)

var priceRules = []rule[int]{
	{
		// $200,000 or $200,000.00
		name:    "currency_grouped",
		pattern: regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})+)(?:\.\d{2})?\b`),
		parse:   acceptPrice,
	},
	{
		// $200000
		name:    "currency_plain",
		pattern: regexp.MustCompile(`\$\s*(\d{4,9})(?:\.\d{2})?\b`),
		parse:   acceptPrice,
	},
	{
		// 200,000 dollars / 200000 USD
		name:    "amount_dollars",
		pattern: regexp.MustCompile(`\b(\d{1,3}(?:,\d{3})+|\d{4,9})\s*(?i:dollars|usd)\b`),
		parse:   acceptPrice,
	},
}

func acceptPrice(m []string) (int, bool) {
	price, ok := parseGroupedInt(m[1])
	if !ok || price < MinPrice || price > MaxPrice {
		return 0, false
	}
	return price, true
}

// Price returns the first plausible asking price in text.
func Price(text string) (Match[int], bool) {
	return firstMatch(text, priceRules)
}
