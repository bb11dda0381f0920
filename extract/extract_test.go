package extract

import (
	"strconv"
	"strings"
	"testing"

	"deal_hunter/models"
)

func TestAddress(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		rule string
	}{
		{"county road with route number", "1234 County Road 345, Bastrop, TX — $45,000, 2.5 acres", "1234 County Road 345", "numbered_street"},
		{"short street suffix", "Charming home at 500 Oak St, Austin for sale", "500 Oak St", "numbered_street"},
		{"ordinal street", "Corner lot 77 N 5th Ave available now", "77 N 5th Ave", "numbered_street"},
		{"number city state", "Ranchette at 120 Pecan Valley, Austin, TX 78701", "120 Pecan Valley, Austin, TX", "number_city_state"},
		{"lot with state", "Lot 12 on FM 535 Texas, owner finance", "Lot 12 on FM 535 Texas", "lot_parcel_state"},
		{"upper case street", "123 MAIN ST, Bastrop for sale", "123 MAIN ST", "numbered_street"},
		{"lower case street", "for sale: 123 main street, bastrop tx $45,000", "123 main street", "numbered_street_any_case"},
		{"lower case county road", "land at 1234 county road 345 bastrop", "1234 county road 345", "numbered_street_any_case"},
		{"lower case stops at first suffix", "home at 500 oak st by the main road", "500 oak st", "numbered_street_any_case"},
		{"price before street", "Reduced to $89,000. 412 Lakeview Dr lot", "412 Lakeview Dr", "numbered_street"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Address(tt.text)
			if !ok {
				t.Fatalf("expected address in %q", tt.text)
			}
			if m.Value != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, m.Value)
			}
			if m.Rule != tt.rule {
				t.Fatalf("expected rule %s, got %s", tt.rule, m.Rule)
			}
		})
	}
}

func TestAddress_Rejects(t *testing.T) {
	tests := []string{
		"12 Elm St",
		"3 Bedroom Home, Austin, TX",
		"Properties available in Travis County",
		"$89,000 Lakeview Dr lot",
		"asking $89,000 lakeview dr",
		"2.5 acres on county rd",
		"",
	}
	for _, text := range tests {
		if m, ok := Address(text); ok {
			t.Errorf("expected no address in %q, got %q", text, m.Value)
		}
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		text string
		want int
		ok   bool
	}{
		{"Offered at $200,000.00", 200000, true},
		{"Only $200000 cash", 200000, true},
		{"asking 185,000 dollars firm", 185000, true},
		{"$500 deposit holds it, $75,000 total", 75000, true},
		{"Rent for $500", 0, false},
		{"Portfolio at $60,000,000", 0, false},
		{"Contact seller for price", 0, false},
	}

	for _, tt := range tests {
		m, ok := Price(tt.text)
		if ok != tt.ok {
			t.Fatalf("%q: expected ok=%v, got %v", tt.text, tt.ok, ok)
		}
		if m.Value != tt.want {
			t.Fatalf("%q: expected %d, got %d", tt.text, tt.want, m.Value)
		}
	}
}

func TestAcres(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"$45,000, 2.5 acres", 2.5, true},
		{"Beautiful 10-acre tract", 10, true},
		{"Lot size: 3.2 ac", 3.2, true},
		{"Just .5 acres", 0.5, true},
		{"Ranch of 1,200 acres", 1200, true},
		{"Huge 15,000 acres ranch", 0, false},
		{"15000 acres", 0, false},
		{"0.1 acres", 0, false},
		{"0.05 acre", 0, false},
	}

	for _, tt := range tests {
		m, ok := Acres(tt.text)
		if ok != tt.ok {
			t.Fatalf("%q: expected ok=%v, got %v", tt.text, tt.ok, ok)
		}
		if m.Value != tt.want {
			t.Fatalf("%q: expected %v, got %v", tt.text, tt.want, m.Value)
		}
	}
}

func TestSecondaryAttributes(t *testing.T) {
	text := "3 bds 2.5 ba 1,850 sqft - House for sale"

	beds, ok := Beds(text)
	if !ok || beds.Value != 3 {
		t.Fatalf("expected 3 beds, got %v (ok=%v)", beds.Value, ok)
	}
	baths, ok := Baths(text)
	if !ok || baths.Value != 2.5 {
		t.Fatalf("expected 2.5 baths, got %v (ok=%v)", baths.Value, ok)
	}
	sqft, ok := SqFt(text)
	if !ok || sqft.Value != 1850 {
		t.Fatalf("expected 1850 sqft, got %v (ok=%v)", sqft.Value, ok)
	}

	if _, ok := Beds("Vacant land"); ok {
		t.Fatalf("expected no beds for land")
	}
}

func TestExtract_Idempotent(t *testing.T) {
	raw := models.RawResult{
		Title:   "1234 County Road 345 - LandWatch",
		Snippet: "1234 County Road 345, Bastrop, TX — $45,000, 2.5 acres, 3 beds",
	}

	first := Extract(raw)
	second := Extract(raw)

	if *first.Address != *second.Address || first.Price != second.Price || *first.Acres != *second.Acres {
		t.Fatalf("extraction not idempotent: %+v vs %+v", first, second)
	}
	if first.AddressRule != second.AddressRule || first.PriceRule != second.PriceRule {
		t.Fatalf("rules differ between runs")
	}
}

func TestPropertyType(t *testing.T) {
	tests := []struct {
		text string
		want models.PropertyType
	}{
		{"Vacant land for sale", models.PropertyTypeLand},
		{"Retail space on Main", models.PropertyTypeCommercial},
		{"Duplex with tenants", models.PropertyTypeMultifamily},
		{"Cozy home on Highland Ave", models.PropertyTypeResidential},
	}
	for _, tt := range tests {
		if got := PropertyType(tt.text); got != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.text, tt.want, got)
		}
	}
}

func TestSourceName(t *testing.T) {
	tests := map[string]string{
		"www.zillow.com":       "Zillow",
		"www.realtor.com":      "Realtor.com",
		"www.landwatch.com":    "LandWatch",
		"www.land.com":         "Land.com",
		"bastropcounty.gov":    "County Records",
		"www.austinlandco.com": "Austinlandco",
		"":                     "Listing",
	}
	for domain, want := range tests {
		if got := SourceName(domain); got != want {
			t.Errorf("%q: expected %s, got %s", domain, want, got)
		}
	}
}

func TestDomainOf(t *testing.T) {
	if got := DomainOf("https://www.Zillow.com/homedetails/123"); got != "zillow.com" {
		t.Fatalf("expected zillow.com, got %s", got)
	}
	if got := DomainOf("not a url"); got != "" {
		t.Fatalf("expected empty domain, got %s", got)
	}
}

func TestNoFabrication(t *testing.T) {
	inputs := []models.RawResult{
		{Title: "Land for sale", Snippet: "1234 County Road 345, Bastrop, TX — $45,000, 2.5 acres"},
		{Title: "Home listing", Snippet: "Charming home at 500 Oak St, Austin. Offered at $120,000."},
		{Title: "Acreage listing", Snippet: "Ranch land, 40 acres, $310,000, call today", Domain: "landwatch.com"},
	}

	for _, raw := range inputs {
		f := Extract(raw)
		text := raw.Text()
		if f.Address != nil && !strings.Contains(text, *f.Address) {
			t.Errorf("address %q not present in %q", *f.Address, text)
		}
		if f.Price > 0 {
			digits := strings.ReplaceAll(text, ",", "")
			if !strings.Contains(digits, strconv.Itoa(f.Price)) {
				t.Errorf("price %d not present in %q", f.Price, text)
			}
		}
	}
}
