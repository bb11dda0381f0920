package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deal_hunter/config"
	"deal_hunter/httputil"
	"deal_hunter/logging"
	"deal_hunter/models"
	"deal_hunter/report"
	"deal_hunter/scheduler"
	"deal_hunter/scraper"
	"deal_hunter/storage"
)

var (
	location     = flag.String("location", "", "Location to search, e.g. \"Bastrop, TX\"")
	propertyType = flag.String("type", "land", "Property type: land, residential, commercial, multifamily")
	maxPrice     = flag.Int("max-price", 0, "Maximum price (0 = no limit)")
	minAcres     = flag.Float64("min-acres", 0, "Minimum lot size in acres (0 = no limit)")
	format       = flag.String("format", "csv", "Report format: csv or json")
	outPath      = flag.String("out", "", "Write the report to this file instead of stdout")
	upload       = flag.Bool("upload", false, "Upload the CSV report to S3")
	daemon       = flag.Bool("daemon", false, "Run saved searches on their cron schedules")
	runWatches   = flag.Bool("watches", false, "Run every saved search once and exit")
	history      = flag.Int("history", 0, "Print the N most recent runs and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogPath, models.LogLevel(cfg.LogLevel))
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	sqliteStore, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer sqliteStore.Close()

	if *history > 0 {
		if err := printHistory(os.Stdout, sqliteStore, *history); err != nil {
			log.Fatalf("Failed to read history: %v", err)
		}
		return
	}

	log.Printf("Loaded %d site configs, %d watches", len(cfg.Sites), len(cfg.Watches))
	for _, site := range cfg.EnabledSites() {
		log.Printf("  - %s (%s, %s)", site.Name, site.ID, site.Handler)
	}

	clients := httputil.NewClients(&cfg.Proxy, cfg.Search.Timeout)
	if cfg.Proxy.URL != "" {
		log.Printf("Proxy: %s", maskConnectionString(cfg.Proxy.URL))
	}

	orchestrator, err := scraper.NewOrchestrator(cfg, clients)
	if err != nil {
		log.Fatalf("Failed to create search engine: %v", err)
	}
	defer orchestrator.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(cfg, orchestrator, sqliteStore)

	if cfg.Storage.DatabaseURL != "" {
		pgStore, err := storage.NewPostgresStore(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Postgres catalog disabled: %v", err)
		} else {
			defer pgStore.Close()
			sched.SetCatalog(pgStore)
			log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.Storage.DatabaseURL))
		}
	}

	if cfg.S3.Enabled() {
		uploader, err := storage.NewS3Uploader(ctx, cfg.S3)
		if err != nil {
			log.Printf("Warning: report upload disabled: %v", err)
		} else {
			sched.SetUploader(uploader)
		}
	}

	switch {
	case *daemon:
		runDaemon(ctx, sched)
	case *runWatches:
		if err := sched.TriggerNow(ctx); err != nil {
			log.Fatalf("Saved searches failed: %v", err)
		}
	default:
		if *location == "" {
			fmt.Fprintln(os.Stderr, "usage: deal_hunter -location \"City, ST\" [-type land] [-max-price N] [-format csv|json] [-out file]")
			flag.PrintDefaults()
			os.Exit(2)
		}
		if err := runOnce(ctx, sched); err != nil {
			log.Fatalf("Search failed: %v", err)
		}
	}
}

func runOnce(ctx context.Context, sched *scheduler.Scheduler) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	q := models.SearchQuery{
		Location:     *location,
		PropertyType: *propertyType,
		MaxPrice:     *maxPrice,
		MinAcres:     *minAcres,
	}
	res, err := sched.Execute(ctx, q, *upload)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if err := report.Write(out, *format, res.Run); err != nil {
		return err
	}

	log.Printf("Run %s: %d records (%d new) in %s", res.Run.ID, len(res.Run.Records), res.NewCount, res.Run.Duration())
	log.Println(report.Summary(res.Run.Records))
	if res.ReportURL != "" {
		log.Printf("Report uploaded: %s", res.ReportURL)
	}
	return nil
}

func runDaemon(ctx context.Context, sched *scheduler.Scheduler) {
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("Goodbye!")
}

func printHistory(w io.Writer, store *storage.SQLiteStore, n int) error {
	runs, err := store.RecentRuns(n)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs yet.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %-24s %-12s %-9s %3d records  %s\n",
			r.ID.String()[:8], r.StartedAt.Format("2006-01-02 15:04"), r.Query.Location,
			r.Query.PropertyType, r.Status, r.Stats.RecordsReturned, r.Duration().Round(time.Millisecond))
	}
	return nil
}

// maskConnectionString masks password in connection string for logging
func maskConnectionString(connStr string) string {
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
