package scraper

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"deal_hunter/config"
	"deal_hunter/logging"
	"deal_hunter/models"
)

// PageStats counts page tier outcomes for one run.
type PageStats struct {
	Attempted int
	Fetched   int
	Failed    int
}

type sitePage struct {
	site    *config.SiteConfig
	url     string
	fetcher Fetcher
}

// PageTier fetches category pages on known listing sites and parses them into
// raw candidates.
type PageTier struct {
	sites       []*config.SiteConfig
	fetchers    map[string]Fetcher
	limiter     *rate.Limiter
	concurrency int
	timeout     time.Duration
	logFn       logging.LogFunc
}

func NewPageTier(sites []*config.SiteConfig, fetchers map[string]Fetcher, cfg config.SearchConfig, logFn logging.LogFunc) *PageTier {
	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if logFn == nil {
		logFn = logging.NoOpLogger
	}
	return &PageTier{
		sites:       sites,
		fetchers:    fetchers,
		limiter:     rate.NewLimiter(limit, 1),
		concurrency: concurrency,
		timeout:     cfg.Timeout,
		logFn:       logFn,
	}
}

// Run fetches every applicable site for q. A failed page is logged and
// skipped; results are returned in site order.
func (p *PageTier) Run(ctx context.Context, q models.SearchQuery) ([]models.RawResult, PageStats) {
	var pages []sitePage
	for _, site := range p.sites {
		pageURL, ok := BuildURL(site, q)
		if !ok {
			logging.Emit(p.logFn, models.LogLevelDebug, "pages", "%s: no URL for %q", site.ID, q.Location)
			continue
		}
		fetcher := p.fetchers[site.ID]
		if fetcher == nil {
			continue
		}
		pages = append(pages, sitePage{site: site, url: pageURL, fetcher: fetcher})
	}

	stats := PageStats{Attempted: len(pages)}
	perPage := make([][]models.RawResult, len(pages))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for i, page := range pages {
		g.Go(func() error {
			results, err := p.fetchPage(ctx, page)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.Failed++
				return nil
			}
			stats.Fetched++
			perPage[i] = results
			return nil
		})
	}
	g.Wait()

	var all []models.RawResult
	for _, results := range perPage {
		all = append(all, results...)
	}
	return all, stats
}

func (p *PageTier) fetchPage(ctx context.Context, page sitePage) ([]models.RawResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	fetchCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	html, err := page.fetcher.Fetch(fetchCtx, page.url)
	if err != nil {
		kind := "transient"
		var fe *FetchError
		if errors.As(err, &fe) && fe.Status < 500 {
			kind = "upstream"
		}
		logging.Emit(p.logFn, models.LogLevelWarn, "pages", "%s: %s failed (%s): %v", page.site.ID, page.url, kind, err)
		return nil, err
	}

	results, err := ParsePage(domainOf(page.url, page.site.Domain), page.url, html)
	if err != nil {
		logging.Emit(p.logFn, models.LogLevelWarn, "pages", "%s: %s failed (upstream): %v", page.site.ID, page.url, err)
		return nil, err
	}

	logging.Emit(p.logFn, models.LogLevelInfo, "pages", "%s: %d candidates from %s", page.site.ID, len(results), page.url)
	return results, nil
}
