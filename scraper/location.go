package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"deal_hunter/config"
	"deal_hunter/models"
)

var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas", "CA": "California",
	"CO": "Colorado", "CT": "Connecticut", "DE": "Delaware", "FL": "Florida", "GA": "Georgia",
	"HI": "Hawaii", "ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi", "MO": "Missouri",
	"MT": "Montana", "NE": "Nebraska", "NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey",
	"NM": "New Mexico", "NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah", "VT": "Vermont",
	"VA": "Virginia", "WA": "Washington", "WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
}

// Location is a free-text location split into city and state.
type Location struct {
	City  string
	State string // two-letter abbreviation, upper case; empty when unknown
}

var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	return strings.Trim(slugRegex.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// ParseLocation accepts "Bastrop, TX", "Bastrop TX" or "Bastrop, Texas".
func ParseLocation(text string) Location {
	text = strings.TrimSpace(text)
	if i := strings.LastIndex(text, ","); i >= 0 {
		city := strings.TrimSpace(text[:i])
		return Location{City: city, State: stateAbbrev(strings.TrimSpace(text[i+1:]))}
	}
	fields := strings.Fields(text)
	if len(fields) > 1 {
		if st := stateAbbrev(fields[len(fields)-1]); st != "" {
			return Location{City: strings.Join(fields[:len(fields)-1], " "), State: st}
		}
	}
	return Location{City: text}
}

func stateAbbrev(s string) string {
	up := strings.ToUpper(s)
	if _, ok := stateNames[up]; ok {
		return up
	}
	for abbrev, name := range stateNames {
		if strings.EqualFold(name, s) {
			return abbrev
		}
	}
	return ""
}

// BuildURL expands a site's url_template for a query. It reports false when
// the template needs a part the location does not have, or when the site lists
// type paths and none matches the requested property type.
func BuildURL(site *config.SiteConfig, q models.SearchQuery) (string, bool) {
	loc := ParseLocation(q.Location)
	if loc.City == "" {
		return "", false
	}

	kind := strings.ToLower(string(models.ParsePropertyType(q.PropertyType)))
	if strings.TrimSpace(q.PropertyType) == "" {
		kind = "land"
	}
	typePath, hasType := site.TypePaths[kind]
	if len(site.TypePaths) > 0 && !hasType {
		return "", false
	}

	needsState := strings.Contains(site.URLTemplate, "{state") ||
		strings.Contains(site.URLTemplate, "{city_state}") ||
		strings.Contains(site.URLTemplate, "{location_slug}")
	if needsState && loc.State == "" {
		return "", false
	}

	maxPrice := ""
	if q.MaxPrice > 0 {
		maxPrice = strconv.Itoa(q.MaxPrice)
	}

	r := strings.NewReplacer(
		"{location_slug}", slugify(loc.City)+"-"+strings.ToLower(loc.State),
		"{city_state}", strings.ReplaceAll(loc.City, " ", "-")+"_"+loc.State,
		"{city_slug}", slugify(loc.City),
		"{state_name}", slugify(stateNames[loc.State]),
		"{state}", strings.ToLower(loc.State),
		"{type_path}", typePath,
		"{max_price}", maxPrice,
	)
	return r.Replace(site.URLTemplate), true
}
