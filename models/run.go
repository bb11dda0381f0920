package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusEmpty     RunStatus = "empty"
)

// SearchRun is the outcome of one engine invocation. Records are already
// validated, deduplicated, ranked and capped.
type SearchRun struct {
	ID         uuid.UUID        `json:"id" db:"id"`
	Query      SearchQuery      `json:"query"`
	StartedAt  time.Time        `json:"started_at" db:"started_at"`
	FinishedAt time.Time        `json:"finished_at" db:"finished_at"`
	Status     RunStatus        `json:"status" db:"status"`
	Stats      RunStats         `json:"stats"`
	Records    []PropertyRecord `json:"records"`
}

type RunStats struct {
	QueriesBuilt     int  `json:"queries_built"`
	QueriesRun       int  `json:"queries_run"`
	QueriesFailed    int  `json:"queries_failed"`
	QueriesSkipped   int  `json:"queries_skipped"`
	RawItems         int  `json:"raw_items"`
	Rejected         int  `json:"rejected"`
	OutOfBounds      int  `json:"out_of_bounds"`
	Duplicates       int  `json:"duplicates"`
	PageTierUsed     bool `json:"page_tier_used"`
	PagesFetched     int  `json:"pages_fetched"`
	PagesFailed      int  `json:"pages_failed"`
	DeadlineExceeded bool `json:"deadline_exceeded"`
	RecordsReturned  int  `json:"records_returned"`
}

func (r *SearchRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
