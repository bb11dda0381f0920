package scraper

import (
	"testing"

	"deal_hunter/config"
	"deal_hunter/models"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in   string
		want Location
	}{
		{"Bastrop, TX", Location{"Bastrop", "TX"}},
		{"Bastrop, tx", Location{"Bastrop", "TX"}},
		{"San Marcos Texas", Location{"San Marcos", "TX"}},
		{"Santa Fe, New Mexico", Location{"Santa Fe", "NM"}},
		{"Austin", Location{"Austin", ""}},
	}
	for _, tt := range tests {
		if got := ParseLocation(tt.in); got != tt.want {
			t.Errorf("ParseLocation(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func siteByID(t *testing.T, id string) *config.SiteConfig {
	t.Helper()
	for _, s := range config.DefaultSites() {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("no default site %s", id)
	return nil
}

func TestBuildURL(t *testing.T) {
	land := models.SearchQuery{Location: "San Marcos, TX", PropertyType: "land"}

	tests := []struct {
		site string
		q    models.SearchQuery
		want string
		ok   bool
	}{
		{"zillow", land, "https://www.zillow.com/san-marcos-tx/land/", true},
		{"realtor", land, "https://www.realtor.com/realestateandhomes-search/San-Marcos_TX/type-land", true},
		{"landwatch", land, "https://www.landwatch.com/texas-land-for-sale/san-marcos", true},
		{"realtor", models.SearchQuery{Location: "Bastrop, TX"}, "https://www.realtor.com/realestateandhomes-search/Bastrop_TX/type-land", true},
		{"realtor", models.SearchQuery{Location: "Bastrop, TX", PropertyType: "commercial"}, "", false},
		{"zillow", models.SearchQuery{Location: "Austin", PropertyType: "land"}, "", false},
	}

	for _, tt := range tests {
		got, ok := BuildURL(siteByID(t, tt.site), tt.q)
		if ok != tt.ok || got != tt.want {
			t.Errorf("%s %+v: got (%q, %v), want (%q, %v)", tt.site, tt.q, got, ok, tt.want, tt.ok)
		}
	}
}
