package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"deal_hunter/config"
	"deal_hunter/identity"
	"deal_hunter/logging"
	"deal_hunter/models"
	"deal_hunter/report"
	"deal_hunter/storage"
)

// Runner executes one search. *scraper.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, q models.SearchQuery) *models.SearchRun
	SetLogFunc(fn logging.LogFunc)
}

// Catalog receives every finished run; the Postgres store satisfies it.
type Catalog interface {
	UpsertRun(ctx context.Context, run *models.SearchRun) error
}

// Uploader publishes a report and returns where it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, name string, data io.Reader, contentType string) (string, error)
}

// Result is what a caller learns about one persisted run.
type Result struct {
	Run       *models.SearchRun
	NewCount  int
	ReportURL string
}

type Scheduler struct {
	cfg      *config.Config
	runner   Runner
	store    *storage.SQLiteStore
	catalog  Catalog
	uploader Uploader
	cron     *cron.Cron

	// runner's log sink is per run, so runs are serialized
	mu sync.Mutex
}

func New(cfg *config.Config, runner Runner, store *storage.SQLiteStore) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		runner: runner,
		store:  store,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

func (s *Scheduler) SetCatalog(c Catalog) {
	s.catalog = c
}

func (s *Scheduler) SetUploader(u Uploader) {
	s.uploader = u
}

// Start registers one cron job per watch. Watches without a schedule are
// skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	scheduled := 0
	for _, w := range s.cfg.Watches {
		if w.Cron == "" {
			log.Printf("[warn] scheduler: watch %s has no schedule, skipping", w.Name)
			continue
		}
		w := w
		_, err := s.cron.AddFunc(w.Cron, func() {
			if _, err := s.RunWatch(ctx, w); err != nil {
				log.Printf("[error] scheduler: watch %s: %v", w.Name, err)
			}
		})
		if err != nil {
			return fmt.Errorf("watch %s: invalid cron expression: %w", w.Name, err)
		}
		log.Printf("[info] scheduler: watch %s scheduled (%s)", w.Name, w.Cron)
		scheduled++
	}

	if scheduled == 0 {
		log.Println("[info] scheduler: no watches scheduled")
		return nil
	}
	s.cron.Start()
	return nil
}

// Stop waits for any running watch to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// TriggerNow runs every watch once, in order.
func (s *Scheduler) TriggerNow(ctx context.Context) error {
	for _, w := range s.cfg.Watches {
		if _, err := s.RunWatch(ctx, w); err != nil {
			return fmt.Errorf("watch %s: %w", w.Name, err)
		}
	}
	return nil
}

func (s *Scheduler) RunWatch(ctx context.Context, w config.WatchConfig) (*Result, error) {
	q := models.SearchQuery{
		Location:     w.Location,
		PropertyType: w.PropertyType,
		MaxPrice:     w.MaxPrice,
		MinAcres:     w.MinAcres,
	}
	res, err := s.Execute(ctx, q, w.Upload)
	if err != nil {
		return nil, err
	}
	log.Printf("[info] scheduler: watch %s: %d records, %d new", w.Name, len(res.Run.Records), res.NewCount)
	return res, nil
}

// Execute runs one search and persists it: run history and logs locally, the
// shared catalog when configured, and the CSV report when upload is set.
// Catalog and upload failures are logged, not returned.
func (s *Scheduler) Execute(ctx context.Context, q models.SearchQuery, upload bool) (*Result, error) {
	s.mu.Lock()
	recorder := logging.NewRecorder()
	s.runner.SetLogFunc(recorder.LogFunc())
	run := s.runner.Run(ctx, q)
	s.runner.SetLogFunc(nil)
	s.mu.Unlock()

	if err := s.store.SaveRun(run); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}
	if err := s.store.SaveLogs(recorder.Entries(run.ID.String())); err != nil {
		log.Printf("[warn] scheduler: save logs for run %s: %v", run.ID, err)
	}

	res := &Result{Run: run}

	fps := make([]string, len(run.Records))
	for i := range run.Records {
		fps[i] = identity.Fingerprint(&run.Records[i])
	}
	seen, err := s.store.SeenBefore(run.ID, fps)
	if err != nil {
		log.Printf("[warn] scheduler: history lookup for run %s: %v", run.ID, err)
	} else {
		res.NewCount = len(fps) - len(seen)
	}

	if s.catalog != nil {
		if err := s.catalog.UpsertRun(ctx, run); err != nil {
			log.Printf("[warn] scheduler: catalog upsert for run %s: %v", run.ID, err)
		}
	}

	if upload && s.uploader != nil {
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, run.Records); err != nil {
			return res, fmt.Errorf("render report: %w", err)
		}
		url, err := s.uploader.Upload(ctx, report.FileName(run, "csv"), &buf, report.ContentType("csv"))
		if err != nil {
			log.Printf("[warn] scheduler: upload report for run %s: %v", run.ID, err)
		} else {
			res.ReportURL = url
			log.Printf("[info] scheduler: report for run %s at %s", run.ID, url)
		}
	}

	return res, nil
}
