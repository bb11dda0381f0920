package scraper

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"deal_hunter/config"
	"deal_hunter/httputil"
	"deal_hunter/models"
)

type searcherFunc func(ctx context.Context, q string) ([]models.RawResult, error)

func (f searcherFunc) Query(ctx context.Context, q string) ([]models.RawResult, error) {
	return f(ctx, q)
}

type fakeFetcher struct {
	mu    sync.Mutex
	body  []byte
	err   error
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, pageURL)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Search: config.SearchConfig{
			APIKey:      "key",
			EngineID:    "cx",
			Concurrency: 2,
			Timeout:     time.Second,
			Deadline:    5 * time.Second,
			EarlyStop:   15,
			MinResults:  5,
			MaxResults:  25,
		},
		Sites: map[string]*config.SiteConfig{
			"zillow": {
				ID:          "zillow",
				Domain:      "zillow.com",
				Handler:     "http",
				URLTemplate: "https://www.zillow.com/{location_slug}/{type_path}",
				TypePaths:   map[string]string{"land": "land/", "residential": ""},
				Enabled:     true,
			},
		},
	}
}

func newTestOrchestrator(t *testing.T, cfg *config.Config, s searcherFunc, f Fetcher) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(cfg, httputil.NewClients(&cfg.Proxy, time.Second))
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	o.SetSearcher(s)
	o.SetFetchers(map[string]Fetcher{"zillow": f})
	return o
}

// byQuery answers any query containing a marker with that marker's items.
func byQuery(answers map[string][]models.RawResult) searcherFunc {
	return func(ctx context.Context, q string) ([]models.RawResult, error) {
		for marker, items := range answers {
			if strings.Contains(q, marker) {
				return items, nil
			}
		}
		return nil, nil
	}
}

func TestNewOrchestrator_MissingCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.Search.APIKey = ""
	_, err := NewOrchestrator(cfg, httputil.NewClients(&cfg.Proxy, time.Second))
	if !errors.Is(err, config.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestRun_DeduplicatesAcrossQueries(t *testing.T) {
	s := byQuery(map[string][]models.RawResult{
		"for sale 20": {{
			Title:   "500 Oak St, Bastrop, TX | Zillow",
			Snippet: "Home for sale at 500 Oak St. Listed at $120,000.",
			Link:    "https://www.zillow.com/homedetails/500-Oak-St/1_zpid/",
			Domain:  "zillow.com",
		}},
		"listing mls": {{
			Title:   "500 Oak St - Realtor.com",
			Snippet: "500 Oak St, Bastrop TX home listed for $120,000, 3 beds.",
			Link:    "https://www.realtor.com/realestateandhomes-detail/500-Oak-St",
			Domain:  "realtor.com",
		}},
	})
	f := &fakeFetcher{err: errors.New("connection refused")}
	o := newTestOrchestrator(t, testConfig(), s, f)

	run := o.Run(context.Background(), models.SearchQuery{Location: "Bastrop, TX", PropertyType: "residential"})
	if len(run.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(run.Records))
	}
	if *run.Records[0].Address != "500 Oak St" || run.Records[0].Source != "Zillow" {
		t.Fatalf("expected first occurrence kept, got %s from %s", *run.Records[0].Address, run.Records[0].Source)
	}
	if run.Stats.Duplicates != 1 {
		t.Fatalf("expected 1 duplicate, got %d", run.Stats.Duplicates)
	}
}

func TestRun_PageTierFailureKeepsSearchRecords(t *testing.T) {
	s := byQuery(map[string][]models.RawResult{
		"for sale 20": {
			{Title: "Land for sale", Snippet: "1234 County Road 345, Bastrop, TX — $45,000, 2.5 acres", Domain: "landwatch.com"},
			{Title: "Home for sale", Snippet: "Charming home at 500 Oak St, Bastrop. Offered at $120,000.", Domain: "zillow.com"},
		},
		"available now": {
			{Title: "Acreage listing", Snippet: "Ranch land, 40 acres, $310,000, call today", Domain: "landwatch.com"},
			{Title: "Blog: market update", Snippet: "Prices rose in Bastrop this spring", Domain: "news.example"},
		},
	})
	f := &fakeFetcher{err: &FetchError{URL: "https://www.zillow.com/bastrop-tx/land/", Status: 403}}
	o := newTestOrchestrator(t, testConfig(), s, f)

	run := o.Run(context.Background(), models.SearchQuery{Location: "Bastrop, TX", PropertyType: "land"})
	if len(run.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(run.Records))
	}
	if !run.Stats.PageTierUsed {
		t.Fatalf("expected page tier to run below the minimum")
	}
	if run.Stats.PagesFailed != 1 || run.Stats.PagesFetched != 0 {
		t.Fatalf("unexpected page stats %+v", run.Stats)
	}
	if run.Stats.Rejected != 1 {
		t.Fatalf("expected 1 rejected candidate, got %d", run.Stats.Rejected)
	}
	if run.Status != models.RunStatusCompleted {
		t.Fatalf("expected completed, got %s", run.Status)
	}
	if len(f.calls) != 1 || f.calls[0] != "https://www.zillow.com/bastrop-tx/land/" {
		t.Fatalf("unexpected page fetches %v", f.calls)
	}
}

func TestRun_PageTierAddsRankedRecords(t *testing.T) {
	s := byQuery(map[string][]models.RawResult{
		"for sale 20": {
			{Title: "Acreage listing", Snippet: "Ranch land, 40 acres, $310,000, call today", Domain: "landwatch.com"},
		},
	})
	f := &fakeFetcher{body: loadFixture(t, "zillow_cards.html")}
	o := newTestOrchestrator(t, testConfig(), s, f)

	run := o.Run(context.Background(), models.SearchQuery{Location: "Bastrop, TX", PropertyType: "land"})
	if len(run.Records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(run.Records))
	}
	if run.Stats.PagesFetched != 1 {
		t.Fatalf("expected 1 page fetched, got %d", run.Stats.PagesFetched)
	}

	for i := 1; i < len(run.Records); i++ {
		if run.Records[i-1].Confidence.Rank() < run.Records[i].Confidence.Rank() {
			t.Fatalf("records not ranked by confidence at %d", i)
		}
	}
	if *run.Records[0].Address != "88 Pine Ridge Dr" {
		t.Fatalf("expected the most complete High record first, got %s", run.Records[0].DisplayAddress())
	}
	if run.Records[3].Confidence != models.ConfidenceMedium {
		t.Fatalf("expected Medium records last, got %s", run.Records[3].Confidence)
	}
}

func TestRun_AppliesBoundsAndCap(t *testing.T) {
	s := byQuery(map[string][]models.RawResult{
		"for sale 20": {
			{Title: "Acreage listing", Snippet: "Ranch land, 40 acres, $310,000, call today", Domain: "landwatch.com"},
			{Title: "Land for sale", Snippet: "Lot 12 on FM 535 Texas, $20,000, 0.5 acres", Domain: "landwatch.com"},
		},
	})
	f := &fakeFetcher{body: loadFixture(t, "zillow_cards.html")}
	cfg := testConfig()
	cfg.Search.MaxResults = 2
	o := newTestOrchestrator(t, cfg, s, f)

	run := o.Run(context.Background(), models.SearchQuery{
		Location:     "Bastrop, TX",
		PropertyType: "land",
		MaxPrice:     100000,
		MinAcres:     1,
	})

	// Dropped: the $310,000 ranch, the 0.5 acre lot and the $289,900 house.
	if run.Stats.OutOfBounds != 3 {
		t.Fatalf("expected 3 out of bounds, got %d", run.Stats.OutOfBounds)
	}
	if len(run.Records) != 2 {
		t.Fatalf("expected cap of 2, got %d", len(run.Records))
	}
	for _, r := range run.Records {
		if r.Price > 100000 {
			t.Fatalf("record over max price: %d", r.Price)
		}
	}
}

func TestRun_DeadlineReturnsPartial(t *testing.T) {
	s := searcherFunc(func(ctx context.Context, q string) ([]models.RawResult, error) {
		if strings.Contains(q, "for sale 20") {
			return []models.RawResult{
				{Title: "Land for sale", Snippet: "1234 County Road 345, Bastrop, TX — $45,000, 2.5 acres"},
			}, nil
		}
		<-ctx.Done()
		return nil, ctx.Err()
	})
	f := &fakeFetcher{body: loadFixture(t, "zillow_cards.html")}
	cfg := testConfig()
	cfg.Search.Deadline = 100 * time.Millisecond
	cfg.Search.Concurrency = 5
	o := newTestOrchestrator(t, cfg, s, f)

	start := time.Now()
	run := o.Run(context.Background(), models.SearchQuery{Location: "Bastrop, TX", PropertyType: "land"})
	if time.Since(start) > 3*time.Second {
		t.Fatalf("deadline not honored")
	}
	if len(run.Records) != 1 {
		t.Fatalf("expected the completed query's record, got %d", len(run.Records))
	}
	if !run.Stats.DeadlineExceeded || run.Stats.PageTierUsed {
		t.Fatalf("expected deadline exceeded without page tier, got %+v", run.Stats)
	}
	if len(f.calls) != 0 {
		t.Fatalf("page tier should not fetch after the deadline")
	}
}

func TestSearch_EmptyOnOutage(t *testing.T) {
	s := searcherFunc(func(ctx context.Context, q string) ([]models.RawResult, error) {
		return nil, errors.New("dial tcp: connection refused")
	})
	f := &fakeFetcher{err: errors.New("dial tcp: connection refused")}
	o := newTestOrchestrator(t, testConfig(), s, f)

	records := o.Search(context.Background(), "Bastrop, TX", "land", 50000)
	if records == nil || len(records) != 0 {
		t.Fatalf("expected an empty, non-nil list, got %v", records)
	}
}

func TestRank_StableByConfidenceThenCompleteness(t *testing.T) {
	addr := "500 Oak St"
	acres := 2.0
	beds := 3
	records := []*models.PropertyRecord{
		{Title: "low", Confidence: models.ConfidenceLow, Address: &addr},
		{Title: "medium-sparse", Confidence: models.ConfidenceMedium, Price: 1000, Acres: &acres},
		{Title: "high", Confidence: models.ConfidenceHigh, Address: &addr, Price: 1000},
		{Title: "medium-rich", Confidence: models.ConfidenceMedium, Price: 1000, Acres: &acres, Beds: &beds},
		{Title: "medium-sparse-2", Confidence: models.ConfidenceMedium, Price: 2000, Acres: &acres},
	}
	rank(records)

	want := []string{"high", "medium-rich", "medium-sparse", "medium-sparse-2", "low"}
	for i, w := range want {
		if records[i].Title != w {
			t.Fatalf("position %d: expected %s, got %s", i, w, records[i].Title)
		}
	}
}
