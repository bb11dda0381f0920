package scraper

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"deal_hunter/extract"
	"deal_hunter/models"
)

// siteRule locates listing cards on a known site's results page.
type siteRule struct {
	card    string
	address string
	price   string
	meta    string
	link    string
}

var siteRules = map[string]siteRule{
	"zillow.com": {
		card:    `article[data-test="property-card"]`,
		address: `address[data-test="property-card-addr"]`,
		price:   `[data-test="property-card-price"]`,
		meta:    `ul li`,
		link:    `a[data-test="property-card-link"]`,
	},
	"realtor.com": {
		card:    `[data-testid="property-card"]`,
		address: `[data-testid="card-address"]`,
		price:   `[data-testid="card-price"]`,
		meta:    `[data-testid="card-meta"] li`,
		link:    `a[href]`,
	},
	"landwatch.com": {
		card:    `[data-testid="property-card"], div.property-card`,
		address: `[data-testid="property-address"], .property-card__address`,
		price:   `[data-testid="property-price"], .property-card__price`,
		meta:    `[data-testid="property-details"], .property-card__details`,
		link:    `a[href]`,
	},
	"land.com": {
		card:    `div.placard, article.placard`,
		address: `.placard-address, [itemprop="streetAddress"]`,
		price:   `.placard-price, [itemprop="price"]`,
		meta:    `.placard-details span`,
		link:    `a[href]`,
	},
}

const (
	windowRadius = 160
	maxWindows   = 30
	maxCardsPage = 60
)

var pagePriceRegex = regexp.MustCompile(`\$\s*(?:\d{1,3}(?:,\d{3})+|\d{4,9})`)

// ParsePage turns a listing page into raw candidates. Known domains use their
// card rules; any page without recognised cards falls back to a scan of the
// visible text around each dollar amount.
func ParsePage(domain, pageURL string, html []byte) ([]models.RawResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	if rule, ok := siteRules[domain]; ok {
		if results := parseCards(doc, rule, domain, pageURL); len(results) > 0 {
			return results, nil
		}
	}
	return scanText(doc, domain, pageURL), nil
}

func parseCards(doc *goquery.Document, rule siteRule, domain, pageURL string) []models.RawResult {
	var results []models.RawResult

	doc.Find(rule.card).EachWithBreak(func(i int, card *goquery.Selection) bool {
		address := cleanText(card.Find(rule.address).First().Text())
		price := cleanText(card.Find(rule.price).First().Text())

		var meta []string
		card.Find(rule.meta).Each(func(_ int, s *goquery.Selection) {
			if t := cleanText(s.Text()); t != "" {
				meta = append(meta, t)
			}
		})

		link := pageURL
		if href, ok := card.Find(rule.link).First().Attr("href"); ok && href != "" {
			link = resolveURL(pageURL, href)
		}

		snippet := strings.TrimSpace(price + " " + strings.Join(meta, " | "))
		results = append(results, models.RawResult{
			Title:       address,
			Snippet:     snippet,
			Link:        link,
			Domain:      domain,
			AddressHint: address,
			PageText:    cleanText(card.Text()),
		})
		return len(results) < maxCardsPage
	})

	return results
}

// blockSelector lists the elements a generic page is split into before
// scanning. A price belongs to the innermost block that contains it.
const blockSelector = "body, article, section, div, li, tr, p"

// scanText builds one candidate per dollar amount in the page's visible text.
// Text is scanned block by block, so a window never reaches into a sibling
// listing.
func scanText(doc *goquery.Document, domain, pageURL string) []models.RawResult {
	doc.Find("script, style, noscript, svg, template").Remove()

	var results []models.RawResult
	doc.Find(blockSelector).EachWithBreak(func(_ int, block *goquery.Selection) bool {
		text := blockText(block)
		for _, window := range priceWindows(text) {
			results = append(results, models.RawResult{
				Snippet: window,
				Link:    pageURL,
				Domain:  domain,
			})
			if len(results) >= maxWindows {
				return false
			}
		}
		return true
	})
	return results
}

func hasPrice(s *goquery.Selection) bool {
	return pagePriceRegex.MatchString(s.Text())
}

// blockText returns a block's visible text minus any nested block that holds
// a price of its own.
func blockText(block *goquery.Selection) string {
	if !hasPrice(block) {
		return ""
	}
	nested := block.Find(blockSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hasPrice(s)
	})
	if nested.Length() == 0 {
		return cleanText(block.Text())
	}
	own := block.Clone()
	own.Find(blockSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hasPrice(s)
	}).Remove()
	return cleanText(own.Text())
}

// priceWindows cuts text into one window per amount, each carrying exactly
// one price. With a single amount the window spans both sides of it. With
// several, the text between two amounts goes to one of them: to the following
// amount when the block reads "details, price" and to the preceding one when it
// reads "price, details". The layout is taken from which end of the block has
// more text outside the amounts.
func priceWindows(text string) []string {
	locs := pagePriceRegex.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	last := len(locs) - 1
	priceFirst := locs[0][0] < len(text)-locs[last][1]

	windows := make([]string, 0, len(locs))
	for i, loc := range locs {
		start := max(loc[0]-windowRadius, 0)
		end := min(loc[1]+windowRadius, len(text))
		if len(locs) > 1 {
			if priceFirst {
				start = loc[0]
				if i < last {
					end = min(end, locs[i+1][0])
				}
			} else {
				end = loc[1]
				if i > 0 {
					start = max(start, locs[i-1][1])
				}
			}
		}
		start, end = runeAlign(text, start), runeAlign(text, end)
		windows = append(windows, strings.TrimSpace(text[start:end]))
	}
	return windows
}

func runeAlign(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

// domainOf mirrors extract.DomainOf for configured site domains.
func domainOf(pageURL, fallback string) string {
	if fallback != "" {
		return strings.TrimPrefix(strings.ToLower(fallback), "www.")
	}
	return extract.DomainOf(pageURL)
}
