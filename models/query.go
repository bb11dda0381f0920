package models

// SearchQuery is the immutable request for one engine invocation.
// MaxPrice and MinAcres are 0 when unbounded.
type SearchQuery struct {
	Location     string  `json:"location" yaml:"location"`
	PropertyType string  `json:"property_type" yaml:"property_type"`
	MaxPrice     int     `json:"max_price,omitempty" yaml:"max_price"`
	MinAcres     float64 `json:"min_acres,omitempty" yaml:"min_acres"`
}

// RawResult is an unvalidated candidate: a search hit, a listing card scraped
// from a known site, or a text window from a generic page scan.
type RawResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
	Domain  string `json:"domain"`

	// AddressHint is the text of a dedicated address element when a
	// site-specific rule found one.
	AddressHint string `json:"address_hint,omitempty"`
	// PageText is extra visible text for the candidate, if any.
	PageText string `json:"page_text,omitempty"`
}

// Text joins every text field the extractors should see.
func (r RawResult) Text() string {
	text := r.Title + " " + r.Snippet
	if r.PageText != "" {
		text += " " + r.PageText
	}
	return text
}
