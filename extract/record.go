package extract

import (
	"time"
	"unicode/utf8"

	"deal_hunter/models"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 200
)

// Fields holds everything recovered from one candidate, with the rule that
// produced each value so a wrong match can be traced back.
type Fields struct {
	Address     *string
	AddressRule string
	Price       int
	PriceRule   string
	Acres       *float64
	AcresRule   string
	Beds        *int
	Baths       *float64
	SqFt        *int
}

// Extract runs every field extractor over a candidate. It has no side effects.
func Extract(raw models.RawResult) Fields {
	var f Fields
	text := raw.Text()

	if addr, ok := addressFromHint(raw.AddressHint); ok {
		f.Address, f.AddressRule = &addr, "address_element"
	} else if m, ok := Address(text); ok {
		addr := m.Value
		f.Address, f.AddressRule = &addr, m.Rule
	}
	if m, ok := Price(text); ok {
		f.Price, f.PriceRule = m.Value, m.Rule
	}
	if m, ok := Acres(text); ok {
		acres := m.Value
		f.Acres, f.AcresRule = &acres, m.Rule
	}
	if m, ok := Beds(text); ok {
		beds := m.Value
		f.Beds = &beds
	}
	if m, ok := Baths(text); ok {
		baths := m.Value
		f.Baths = &baths
	}
	if m, ok := SqFt(text); ok {
		sqft := m.Value
		f.SqFt = &sqft
	}
	return f
}

// Build converts a raw candidate into a graded PropertyRecord. A nil record is
// returned with the rejecting verdict when the candidate fails validation.
func Build(raw models.RawResult, now time.Time) (*models.PropertyRecord, Verdict) {
	f := Extract(raw)
	if v := Validate(raw, f); v != Accepted {
		return nil, v
	}

	domain := raw.Domain
	if domain == "" {
		domain = DomainOf(raw.Link)
	}

	return &models.PropertyRecord{
		Address:      f.Address,
		Price:        f.Price,
		Acres:        f.Acres,
		Beds:         f.Beds,
		Baths:        f.Baths,
		SqFt:         f.SqFt,
		PropertyType: PropertyType(raw.Title + " " + raw.Snippet),
		Title:        truncate(collapseSpace(raw.Title), maxTitleLen),
		Description:  truncate(collapseSpace(raw.Snippet), maxDescriptionLen),
		Source:       SourceName(domain),
		SourceURL:    raw.Link,
		Domain:       domain,
		Confidence:   Grade(Score(f)),
		FoundAt:      now.UTC(),
	}, Accepted
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
