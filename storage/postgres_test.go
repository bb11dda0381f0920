package storage

import (
	"strings"
	"testing"
)

func TestCatalogSchema_OneRowPerListing(t *testing.T) {
	if strings.Contains(catalogSchema, "property_prices") {
		t.Fatal("catalog schema should not keep a per-property price table")
	}
	if !strings.Contains(catalogSchema, "fingerprint TEXT PRIMARY KEY") {
		t.Fatal("catalog should be keyed by fingerprint")
	}
}

func TestUpsertPropertySQL_KeepsStoredPrice(t *testing.T) {
	_, update, ok := strings.Cut(upsertPropertySQL, "DO UPDATE SET")
	if !ok {
		t.Fatal("upsert should resolve fingerprint conflicts")
	}
	if strings.Contains(update, "price =") {
		t.Fatal("price is part of the fingerprint and should not be rewritten on conflict")
	}
	if !strings.Contains(update, "times_seen = discovered_properties.times_seen + 1") {
		t.Fatal("repeat sightings should bump times_seen")
	}
}
