package search

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

// Searcher runs a single query. *Client is the production implementation.
type Searcher interface {
	Query(ctx context.Context, q string) ([]models.RawResult, error)
}

// Batch is the outcome of one query, kept at the query's position.
type Batch struct {
	Query   string
	Results []models.RawResult
	Err     error
	// Skipped is set when early termination made the query unnecessary; any
	// result it produced is discarded.
	Skipped bool
}

type Executor struct {
	searcher    Searcher
	limiter     *rate.Limiter
	concurrency int
	timeout     time.Duration
	earlyStop   int
	logFn       logging.LogFunc
}

func NewExecutor(searcher Searcher, cfg config.SearchConfig, logFn logging.LogFunc) *Executor {
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
	return &Executor{
		searcher:    searcher,
		limiter:     rate.NewLimiter(limit, 1),
		concurrency: concurrency,
		timeout:     cfg.Timeout,
		earlyStop:   cfg.EarlyStop,
		logFn:       logFn,
	}
}

// Run executes queries with bounded parallelism and returns one Batch per
// query in query order. It never fails: a query error is logged and recorded
// on its Batch.
//
// qualify reports whether a raw result would survive validation. Once the
// qualifying results of a contiguous prefix of queries reach the early-stop
// threshold, every later query is cancelled and marked Skipped, so the set of
// returned results does not depend on the order calls complete in.
func (e *Executor) Run(ctx context.Context, queries []string, qualify func(models.RawResult) bool) []Batch {
	n := len(queries)
	batches := make([]Batch, n)
	for i, q := range queries {
		batches[i].Query = q
	}
	if n == 0 {
		return batches
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	var mu sync.Mutex
	done := make([]bool, n)
	counts := make([]int, n)
	cutoff := n

	// advance must be called with mu held.
	advance := func() {
		if e.earlyStop <= 0 {
			return
		}
		total := 0
		for i := 0; i < cutoff && done[i]; i++ {
			total += counts[i]
			if total >= e.earlyStop {
				if i+1 < cutoff {
					cutoff = i + 1
					stop()
					logging.Emit(e.logFn, models.LogLevelInfo, "search",
						"early stop after %d queries: %d qualifying results", cutoff, total)
				}
				return
			}
		}
	}

	skipped := func(i int) bool {
		mu.Lock()
		defer mu.Unlock()
		return i >= cutoff
	}

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i, q := range queries {
		if skipped(i) {
			break
		}
		if err := runCtx.Err(); err != nil {
			mu.Lock()
			for j := i; j < cutoff; j++ {
				batches[j].Err = err
			}
			mu.Unlock()
			break
		}
		g.Go(func() error {
			if skipped(i) {
				return nil
			}
			if err := e.limiter.Wait(runCtx); err != nil {
				mu.Lock()
				batches[i].Err = err
				mu.Unlock()
				return nil
			}

			results, err := e.query(runCtx, q)

			mu.Lock()
			defer mu.Unlock()
			if i >= cutoff {
				return nil
			}
			batches[i].Results = results
			batches[i].Err = err
			done[i] = true
			for _, r := range results {
				if qualify == nil || qualify(r) {
					counts[i]++
				}
			}
			advance()
			return nil
		})
	}
	g.Wait()

	for i := range batches {
		if i >= cutoff {
			batches[i] = Batch{Query: batches[i].Query, Skipped: true}
		}
	}
	return batches
}

func (e *Executor) query(ctx context.Context, q string) ([]models.RawResult, error) {
	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	results, err := e.searcher.Query(callCtx, q)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, err
		}
		logging.Emit(e.logFn, models.LogLevelWarn, "search",
			"query %q failed (%s): %v", q, KindOf(err), err)
		return nil, err
	}

	logging.Emit(e.logFn, models.LogLevelDebug, "search",
		"query %q: %d items in %s", q, len(results), time.Since(start).Round(time.Millisecond))
	return results, nil
}
