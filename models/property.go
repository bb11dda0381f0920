package models

import (
	"strings"
	"time"
)

type PropertyType string

const (
	PropertyTypeLand        PropertyType = "Land"
	PropertyTypeResidential PropertyType = "Residential"
	PropertyTypeCommercial  PropertyType = "Commercial"
	PropertyTypeMultifamily PropertyType = "Multifamily"
)

// ParsePropertyType maps free-form user input ("land", "multi-family") to a
// PropertyType. Anything unrecognised is Residential.
func ParsePropertyType(s string) PropertyType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "land", "lot", "lots", "acreage", "vacant land":
		return PropertyTypeLand
	case "commercial", "retail", "office", "industrial":
		return PropertyTypeCommercial
	case "multifamily", "multi-family", "multi family", "apartment", "apartments", "duplex":
		return PropertyTypeMultifamily
	default:
		return PropertyTypeResidential
	}
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Rank is higher for better grades; used for ordering results.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// PropertyRecord is one discovered property. Optional fields are nil when the
// source text did not contain them; Price is 0 when unknown.
type PropertyRecord struct {
	Address      *string      `json:"address" db:"address"`
	Price        int          `json:"price" db:"price"`
	Acres        *float64     `json:"acres" db:"acres"`
	Beds         *int         `json:"beds,omitempty" db:"beds"`
	Baths        *float64     `json:"baths,omitempty" db:"baths"`
	SqFt         *int         `json:"sqft,omitempty" db:"sqft"`
	PropertyType PropertyType `json:"property_type" db:"property_type"`
	Title        string       `json:"title" db:"title"`
	Description  string       `json:"description" db:"description"`
	Source       string       `json:"source" db:"source"`
	SourceURL    string       `json:"source_url" db:"source_url"`
	Domain       string       `json:"domain" db:"domain"`
	Confidence   Confidence   `json:"confidence" db:"confidence"`
	FoundAt      time.Time    `json:"found_at" db:"found_at"`
}

// DisplayAddress returns the recovered street address, or a label derived
// from the source domain when none was found.
func (p *PropertyRecord) DisplayAddress() string {
	if p.Address != nil {
		return *p.Address
	}
	if p.Domain != "" {
		return p.Domain + " listing"
	}
	return "Address not provided"
}

// Completeness counts recovered fields; ties in confidence are broken by it.
func (p *PropertyRecord) Completeness() int {
	n := 0
	if p.Address != nil {
		n++
	}
	if p.Price > 0 {
		n++
	}
	if p.Acres != nil {
		n++
	}
	if p.Beds != nil {
		n++
	}
	if p.Baths != nil {
		n++
	}
	if p.SqFt != nil {
		n++
	}
	return n
}

// PricePerAcre is 0 unless both price and acreage are known.
func (p *PropertyRecord) PricePerAcre() float64 {
	if p.Price <= 0 || p.Acres == nil || *p.Acres <= 0 {
		return 0
	}
	return float64(p.Price) / *p.Acres
}
