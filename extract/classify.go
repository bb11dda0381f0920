package extract

import (
	"net/url"
	"regexp"
	"strings"

	"deal_hunter/models"
)

var propertyTypeRules = []struct {
	kind    models.PropertyType
	pattern *regexp.Regexp
}{
	{models.PropertyTypeLand, regexp.MustCompile(`(?i)\b(?:land|vacant|acreage|undeveloped)\b`)},
	{models.PropertyTypeCommercial, regexp.MustCompile(`(?i)\b(?:commercial|retail|office|warehouse|industrial)\b`)},
	{models.PropertyTypeMultifamily, regexp.MustCompile(`(?i)\b(?:apartments?|multi-?family|multi family|duplex|triplex|fourplex|quadplex)\b`)},
}

// PropertyType infers the listing category from surrounding text.
func PropertyType(text string) models.PropertyType {
	for _, r := range propertyTypeRules {
		if r.pattern.MatchString(text) {
			return r.kind
		}
	}
	return models.PropertyTypeResidential
}

// Order matters: "realtor.com" must win over a bare "mls" substring.
var sourceNames = []struct {
	key  string
	name string
}{
	{"zillow", "Zillow"},
	{"realtor.com", "Realtor.com"},
	{"redfin", "Redfin"},
	{"landwatch", "LandWatch"},
	{"land.com", "Land.com"},
	{"landsearch", "LandSearch"},
	{"loopnet", "LoopNet"},
	{"facebook", "Facebook"},
	{"craigslist", "Craigslist"},
	{"trulia", "Trulia"},
	{"mls", "MLS"},
	{"county", "County Records"},
}

// SourceName returns a human-readable brand for a result domain.
func SourceName(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	if d == "" {
		return "Listing"
	}
	for _, s := range sourceNames {
		if strings.Contains(d, s.key) {
			return s.name
		}
	}
	d = strings.TrimPrefix(d, "www.")
	label := strings.SplitN(d, ".", 2)[0]
	if label == "" {
		return domain
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// DomainOf returns the host of a link without a leading "www.".
func DomainOf(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
