package scraper

import (
	"context"
	"fmt"

	"deal_hunter/config"
	"deal_hunter/httputil"
)

// Fetcher retrieves the HTML of one listing page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// FetchError is a non-200 page response.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

// NewFetcher picks the fetcher for a site's handler. Browser sites share one
// browser instance.
func NewFetcher(siteCfg *config.SiteConfig, clients *httputil.Clients, browser *BrowserFetcher) Fetcher {
	switch siteCfg.Handler {
	case "browser":
		if browser != nil {
			return browser
		}
		return NewHTTPFetcher(clients.Scraping)
	default:
		return NewHTTPFetcher(clients.Scraping)
	}
}
