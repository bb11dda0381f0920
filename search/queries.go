// Package search runs the structured-search tier: it expands one request into
// diversified query strings and executes them against a Custom Search style
// JSON endpoint with bounded parallelism.
package search

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"deal_hunter/models"
)

const defaultPropertyType = "land"

var printer = message.NewPrinter(language.English)

// BuildQueries expands a request into five query strings: a quoted phrase with
// year qualifiers, a listing-brand disjunction, an availability phrase with the
// price bound, a county qualifier and a quoted property-type phrase. year is
// the current calendar year.
func BuildQueries(q models.SearchQuery, year int) []string {
	loc := strings.TrimSpace(q.Location)
	kind := strings.ToLower(strings.TrimSpace(q.PropertyType))
	if kind == "" {
		kind = defaultPropertyType
	}

	priceSuffix := ""
	if q.MaxPrice > 0 {
		priceSuffix = printer.Sprintf(" under $%d", q.MaxPrice)
	}
	acresSuffix := ""
	if q.MinAcres > 0 {
		acresSuffix = " " + strconv.FormatFloat(q.MinAcres, 'f', -1, 64) + "+ acres"
	}

	return []string{
		fmt.Sprintf(`"%s" %s for sale %d %d`, loc, kind, year-1, year),
		fmt.Sprintf(`%s %s listing mls OR zillow OR realtor OR redfin`, loc, kind),
		fmt.Sprintf(`%s %s available now%s%s`, loc, kind, acresSuffix, priceSuffix),
		fmt.Sprintf(`%s county %s property%s`, loc, kind, priceSuffix),
		fmt.Sprintf(`%s "%s for sale"`, loc, kind),
	}
}
