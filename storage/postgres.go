package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"deal_hunter/identity"
	"deal_hunter/models"
)

// PostgresStore is the shared catalog of every property any run has surfaced,
// keyed by fingerprint.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// catalogSchema holds one row per fingerprint. The fingerprint covers the
// price, so a repriced listing is a new row rather than an update.
const catalogSchema = `
	CREATE TABLE IF NOT EXISTS discovered_properties (
		fingerprint TEXT PRIMARY KEY,
		dedup_key TEXT NOT NULL,
		address TEXT,
		price INTEGER,
		acres DOUBLE PRECISION,
		beds INTEGER,
		baths DOUBLE PRECISION,
		sqft INTEGER,
		property_type TEXT,
		title TEXT,
		source TEXT,
		source_url TEXT,
		domain TEXT,
		confidence TEXT,
		location TEXT,
		first_seen TIMESTAMPTZ NOT NULL,
		last_seen TIMESTAMPTZ NOT NULL,
		times_seen INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_discovered_location ON discovered_properties(location, last_seen);`

const upsertPropertySQL = `
	INSERT INTO discovered_properties (
		fingerprint, dedup_key, address, price, acres, beds, baths, sqft, property_type,
		title, source, source_url, domain, confidence, location, first_seen, last_seen
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
	ON CONFLICT (fingerprint) DO UPDATE SET
		acres = COALESCE(EXCLUDED.acres, discovered_properties.acres),
		beds = COALESCE(EXCLUDED.beds, discovered_properties.beds),
		baths = COALESCE(EXCLUDED.baths, discovered_properties.baths),
		sqft = COALESCE(EXCLUDED.sqft, discovered_properties.sqft),
		title = EXCLUDED.title,
		source_url = EXCLUDED.source_url,
		confidence = EXCLUDED.confidence,
		last_seen = EXCLUDED.last_seen,
		times_seen = discovered_properties.times_seen + 1`

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, catalogSchema)
	return err
}

// UpsertRun merges a run's records into the catalog in one batch.
func (s *PostgresStore) UpsertRun(ctx context.Context, run *models.SearchRun) error {
	if len(run.Records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i := range run.Records {
		rec := &run.Records[i]
		batch.Queue(upsertPropertySQL,
			identity.Fingerprint(rec), identity.DedupKey(rec), rec.Address, rec.Price, rec.Acres, rec.Beds, rec.Baths, rec.SqFt,
			rec.PropertyType, rec.Title, rec.Source, rec.SourceURL, rec.Domain, rec.Confidence,
			run.Query.Location, rec.FoundAt)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert records: %w", err)
	}

	return tx.Commit(ctx)
}
