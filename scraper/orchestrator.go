// Package scraper holds the page-fetch fallback tier and the Orchestrator
// that runs a complete property search.
package scraper

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"deal_hunter/config"
	"deal_hunter/extract"
	"deal_hunter/httputil"
	"deal_hunter/identity"
	"deal_hunter/logging"
	"deal_hunter/models"
	"deal_hunter/search"
)

// Orchestrator runs one search end to end: query expansion, the search tier,
// the page tier when search volume is low, validation, dedup and ranking.
// It holds no state between calls.
type Orchestrator struct {
	cfg      *config.Config
	executor *search.Executor
	pages    *PageTier
	browser  *BrowserFetcher
	logFn    logging.LogFunc
	now      func() time.Time
}

// NewOrchestrator fails only when search credentials are missing.
func NewOrchestrator(cfg *config.Config, clients *httputil.Clients) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:   cfg,
		logFn: logging.NoOpLogger,
		now:   time.Now,
	}

	o.executor = search.NewExecutor(search.NewClient(cfg.Search, clients.API), cfg.Search, o.emit)

	fetchers := make(map[string]Fetcher)
	sites := cfg.EnabledSites()
	for _, site := range sites {
		if site.Handler == "browser" && o.browser == nil {
			o.browser = NewBrowserFetcher()
		}
		fetchers[site.ID] = NewFetcher(site, clients, o.browser)
	}
	o.pages = NewPageTier(sites, fetchers, cfg.Search, o.emit)

	return o, nil
}

// SetLogFunc forwards every engine log line to fn as well as the standard logger.
func (o *Orchestrator) SetLogFunc(fn logging.LogFunc) {
	if fn == nil {
		fn = logging.NoOpLogger
	}
	o.logFn = fn
}

// SetSearcher replaces the search endpoint client.
func (o *Orchestrator) SetSearcher(s search.Searcher) {
	o.executor = search.NewExecutor(s, o.cfg.Search, o.emit)
}

// SetFetchers replaces the page tier's fetchers, keyed by site ID.
func (o *Orchestrator) SetFetchers(fetchers map[string]Fetcher) {
	o.pages = NewPageTier(o.cfg.EnabledSites(), fetchers, o.cfg.Search, o.emit)
}

func (o *Orchestrator) Close() {
	if o.browser != nil {
		o.browser.Close()
	}
}

func (o *Orchestrator) emit(level models.LogLevel, source, message string) {
	o.logFn(level, source, message)
}

func (o *Orchestrator) log(level models.LogLevel, format string, args ...any) {
	logging.Emit(o.logFn, level, "orchestrator", format, args...)
}

// Search is the inbound contract: it always returns a list, possibly empty.
func (o *Orchestrator) Search(ctx context.Context, location, propertyType string, maxPrice int) []models.PropertyRecord {
	run := o.Run(ctx, models.SearchQuery{
		Location:     location,
		PropertyType: propertyType,
		MaxPrice:     maxPrice,
	})
	return run.Records
}

// Run executes a search and returns the ranked records with run statistics.
func (o *Orchestrator) Run(ctx context.Context, q models.SearchQuery) *models.SearchRun {
	now := o.now()
	run := &models.SearchRun{
		ID:        uuid.New(),
		Query:     q,
		StartedAt: now,
		Status:    models.RunStatusRunning,
	}
	stats := &run.Stats

	batchCtx := ctx
	if o.cfg.Search.Deadline > 0 {
		var cancel context.CancelFunc
		batchCtx, cancel = context.WithTimeout(ctx, o.cfg.Search.Deadline)
		defer cancel()
	}

	queries := search.BuildQueries(q, now.Year())
	stats.QueriesBuilt = len(queries)
	o.log(models.LogLevelInfo, "run %s: %d queries for %q (%s)", run.ID, len(queries), q.Location, q.PropertyType)

	qualify := func(r models.RawResult) bool {
		rec, _ := extract.Build(r, now)
		return rec != nil
	}

	var raw []models.RawResult
	for _, b := range o.executor.Run(batchCtx, queries, qualify) {
		switch {
		case b.Skipped:
			stats.QueriesSkipped++
		case b.Err != nil:
			stats.QueriesRun++
			stats.QueriesFailed++
		default:
			stats.QueriesRun++
		}
		raw = append(raw, b.Results...)
	}

	dedup := identity.NewDeduplicator()
	var records []*models.PropertyRecord
	records = o.accept(raw, now, dedup, records, stats)

	if len(records) < o.cfg.Search.MinResults && o.pages != nil {
		if batchCtx.Err() != nil {
			o.log(models.LogLevelWarn, "run %s: deadline reached, skipping page tier", run.ID)
		} else {
			o.log(models.LogLevelInfo, "run %s: %d records below minimum %d, running page tier",
				run.ID, len(records), o.cfg.Search.MinResults)
			stats.PageTierUsed = true
			pageRaw, pageStats := o.pages.Run(batchCtx, q)
			stats.PagesFetched = pageStats.Fetched
			stats.PagesFailed = pageStats.Failed
			raw = append(raw, pageRaw...)
			records = o.accept(pageRaw, now, dedup, records, stats)
		}
	}

	stats.RawItems = len(raw)
	stats.Duplicates = dedup.Dropped()
	if batchCtx.Err() != nil && ctx.Err() == nil {
		stats.DeadlineExceeded = true
	}

	records = o.filterBounds(records, q, stats)
	rank(records)
	if limit := o.cfg.Search.MaxResults; limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	run.Records = make([]models.PropertyRecord, len(records))
	for i, rec := range records {
		run.Records[i] = *rec
	}
	stats.RecordsReturned = len(run.Records)

	run.FinishedAt = o.now()
	run.Status = models.RunStatusCompleted
	if len(run.Records) == 0 {
		run.Status = models.RunStatusEmpty
	}

	o.log(models.LogLevelInfo, "run %s: %s", run.ID, summarize(stats))
	return run
}

// accept validates candidates in order and appends the first occurrence of
// each record.
func (o *Orchestrator) accept(raw []models.RawResult, now time.Time, dedup *identity.Deduplicator, records []*models.PropertyRecord, stats *models.RunStats) []*models.PropertyRecord {
	for _, r := range raw {
		rec, verdict := extract.Build(r, now)
		if rec == nil {
			stats.Rejected++
			o.log(models.LogLevelDebug, "rejected %s (%s)", r.Link, verdict)
			continue
		}
		if dedup.Add(rec) {
			records = append(records, rec)
		}
	}
	return records
}

// filterBounds drops records whose known price or lot size is outside the
// query bounds. Unknown values are kept.
func (o *Orchestrator) filterBounds(records []*models.PropertyRecord, q models.SearchQuery, stats *models.RunStats) []*models.PropertyRecord {
	out := records[:0]
	for _, rec := range records {
		if q.MaxPrice > 0 && rec.Price > q.MaxPrice {
			stats.OutOfBounds++
			continue
		}
		if q.MinAcres > 0 && rec.Acres != nil && *rec.Acres < q.MinAcres {
			stats.OutOfBounds++
			continue
		}
		out = append(out, rec)
	}
	return out
}

// rank orders by confidence, then completeness. The sort is stable so equal
// records keep query order.
func rank(records []*models.PropertyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		ri, rj := records[i].Confidence.Rank(), records[j].Confidence.Rank()
		if ri != rj {
			return ri > rj
		}
		return records[i].Completeness() > records[j].Completeness()
	})
}

func summarize(s *models.RunStats) string {
	return fmt.Sprintf("queries=%d/%d failed=%d skipped=%d raw=%d dupes=%d out_of_bounds=%d pages=%d/%d returned=%d",
		s.QueriesRun, s.QueriesBuilt, s.QueriesFailed, s.QueriesSkipped, s.RawItems,
		s.Duplicates, s.OutOfBounds, s.PagesFetched, s.PagesFetched+s.PagesFailed, s.RecordsReturned)
}
