package identity

import "deal_hunter/models"

// Deduplicator keeps the first record seen for each DedupKey. It is not safe
// for concurrent use; the orchestrator feeds it from a single goroutine.
type Deduplicator struct {
	seen    map[string]struct{}
	dropped int
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Add reports whether rec is new. Repeats are counted and should be dropped.
func (d *Deduplicator) Add(rec *models.PropertyRecord) bool {
	key := DedupKey(rec)
	if _, ok := d.seen[key]; ok {
		d.dropped++
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

func (d *Deduplicator) Dropped() int {
	return d.dropped
}

