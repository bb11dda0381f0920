package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"deal_hunter/identity"
	"deal_hunter/models"
)

// SQLiteStore keeps local run history: runs, their logs and the records each
// run returned.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS search_runs (
		id TEXT PRIMARY KEY,
		location TEXT NOT NULL,
		property_type TEXT,
		max_price INTEGER,
		min_acres REAL,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		records_returned INTEGER DEFAULT 0,
		stats JSON
	);

	CREATE TABLE IF NOT EXISTS search_logs (
		id INTEGER PRIMARY KEY,
		run_id TEXT,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		source TEXT
	);

	CREATE TABLE IF NOT EXISTS property_records (
		id INTEGER PRIMARY KEY,
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		fingerprint TEXT NOT NULL,
		address TEXT,
		price INTEGER,
		acres REAL,
		beds INTEGER,
		baths REAL,
		sqft INTEGER,
		property_type TEXT,
		title TEXT,
		description TEXT,
		source TEXT,
		source_url TEXT,
		domain TEXT,
		confidence TEXT,
		found_at DATETIME,
		FOREIGN KEY (run_id) REFERENCES search_runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON search_runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_logs_run ON search_logs(run_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_records_run ON property_records(run_id, position);
	CREATE INDEX IF NOT EXISTS idx_records_fingerprint ON property_records(fingerprint);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores a finished run and its records in one transaction.
func (s *SQLiteStore) SaveRun(run *models.SearchRun) error {
	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO search_runs (id, location, property_type, max_price, min_acres,
			started_at, finished_at, status, records_returned, stats)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			status = excluded.status,
			records_returned = excluded.records_returned,
			stats = excluded.stats`,
		run.ID.String(), run.Query.Location, run.Query.PropertyType, run.Query.MaxPrice, run.Query.MinAcres,
		run.StartedAt, run.FinishedAt, run.Status, len(run.Records), string(stats))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM property_records WHERE run_id = ?`, run.ID.String()); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO property_records (run_id, position, fingerprint, address, price, acres, beds, baths,
			sqft, property_type, title, description, source, source_url, domain, confidence, found_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range run.Records {
		rec := &run.Records[i]
		_, err := stmt.Exec(run.ID.String(), i, identity.Fingerprint(rec), rec.Address, rec.Price, rec.Acres,
			rec.Beds, rec.Baths, rec.SqFt, rec.PropertyType, rec.Title, rec.Description, rec.Source,
			rec.SourceURL, rec.Domain, rec.Confidence, rec.FoundAt)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Log(runID string, level models.LogLevel, message, source string) error {
	_, err := s.db.Exec(`
		INSERT INTO search_logs (run_id, timestamp, level, message, source)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, source)
	return err
}

// SaveLogs stores buffered run log lines in one transaction.
func (s *SQLiteStore) SaveLogs(logs []models.SearchLog) error {
	if len(logs) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO search_logs (run_id, timestamp, level, message, source)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range logs {
		if _, err := stmt.Exec(l.RunID, l.Timestamp, l.Level, l.Message, l.Source); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecentRuns returns the latest runs, newest first, without their records.
func (s *SQLiteStore) RecentRuns(limit int) ([]models.SearchRun, error) {
	rows, err := s.db.Query(`
		SELECT id, location, property_type, max_price, min_acres, started_at, finished_at, status, stats
		FROM search_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.SearchRun
	for rows.Next() {
		var run models.SearchRun
		var id string
		var finished sql.NullTime
		var stats sql.NullString
		if err := rows.Scan(&id, &run.Query.Location, &run.Query.PropertyType, &run.Query.MaxPrice,
			&run.Query.MinAcres, &run.StartedAt, &finished, &run.Status, &stats); err != nil {
			return nil, err
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		if finished.Valid {
			run.FinishedAt = finished.Time
		}
		if stats.Valid {
			json.Unmarshal([]byte(stats.String), &run.Stats)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunRecords returns a run's records in their ranked order.
func (s *SQLiteStore) RunRecords(runID uuid.UUID) ([]models.PropertyRecord, error) {
	rows, err := s.db.Query(`
		SELECT address, price, acres, beds, baths, sqft, property_type, title, description,
			source, source_url, domain, confidence, found_at
		FROM property_records WHERE run_id = ? ORDER BY position`, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.PropertyRecord
	for rows.Next() {
		var rec models.PropertyRecord
		var address sql.NullString
		var acres, baths sql.NullFloat64
		var beds, sqft sql.NullInt64
		if err := rows.Scan(&address, &rec.Price, &acres, &beds, &baths, &sqft, &rec.PropertyType,
			&rec.Title, &rec.Description, &rec.Source, &rec.SourceURL, &rec.Domain, &rec.Confidence,
			&rec.FoundAt); err != nil {
			return nil, err
		}
		if address.Valid {
			rec.Address = &address.String
		}
		if acres.Valid {
			rec.Acres = &acres.Float64
		}
		if baths.Valid {
			rec.Baths = &baths.Float64
		}
		if beds.Valid {
			n := int(beds.Int64)
			rec.Beds = &n
		}
		if sqft.Valid {
			n := int(sqft.Int64)
			rec.SqFt = &n
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) RunLogs(runID string) ([]models.SearchLog, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, timestamp, level, message, source
		FROM search_logs WHERE run_id = ? ORDER BY timestamp, id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.SearchLog
	for rows.Next() {
		var l models.SearchLog
		if err := rows.Scan(&l.ID, &l.RunID, &l.Timestamp, &l.Level, &l.Message, &l.Source); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// SeenBefore reports which fingerprints already appear in an earlier run than
// runID. Saved searches use it to flag new finds.
func (s *SQLiteStore) SeenBefore(runID uuid.UUID, fingerprints []string) (map[string]bool, error) {
	seen := make(map[string]bool)
	if len(fingerprints) == 0 {
		return seen, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(fingerprints)), ",")
	args := make([]any, 0, len(fingerprints)+1)
	args = append(args, runID.String())
	for _, fp := range fingerprints {
		args = append(args, fp)
	}

	rows, err := s.db.Query(`
		SELECT DISTINCT fingerprint FROM property_records
		WHERE run_id != ? AND fingerprint IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, err
		}
		seen[fp] = true
	}
	return seen, rows.Err()
}
