package logging

import (
	"fmt"
	"log"
	"sync"
	"time"

	"deal_hunter/models"
)

// LogFunc receives engine log lines so the caller can persist them per run.
type LogFunc func(level models.LogLevel, source, message string)

// NoOpLogger does nothing (default)
var NoOpLogger LogFunc = func(level models.LogLevel, source, message string) {}

// Emit writes "[level] source: message" to the standard logger and forwards
// the same line to fn.
func Emit(fn LogFunc, level models.LogLevel, source, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Output(2, fmt.Sprintf("[%s] %s: %s", level, source, msg))
	if fn != nil {
		fn(level, source, msg)
	}
}

// Recorder buffers engine log lines for one run so they can be stored once
// the run has an ID.
type Recorder struct {
	mu      sync.Mutex
	entries []models.SearchLog
	now     func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

func (r *Recorder) LogFunc() LogFunc {
	return func(level models.LogLevel, source, message string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.entries = append(r.entries, models.SearchLog{
			Timestamp: r.now(),
			Level:     level,
			Message:   message,
			Source:    source,
		})
	}
}

// Entries returns the buffered lines stamped with runID.
func (r *Recorder) Entries(runID string) []models.SearchLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.SearchLog, len(r.entries))
	for i, e := range r.entries {
		e.RunID = runID
		out[i] = e
	}
	return out
}
