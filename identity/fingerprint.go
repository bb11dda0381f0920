package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"deal_hunter/models"
)

var (
	streetReplacements = map[string]string{
		"street":    "st",
		"avenue":    "ave",
		"drive":     "dr",
		"road":      "rd",
		"boulevard": "blvd",
		"lane":      "ln",
		"court":     "ct",
		"place":     "pl",
		"circle":    "cir",
		"parkway":   "pkwy",
		"highway":   "hwy",
		"north":     "n",
		"south":     "s",
		"east":      "e",
		"west":      "w",
		"county":    "co",
	}
	nonAlnumRegex = regexp.MustCompile(`[^a-z0-9\s]`)
)

// NormalizeAddress lowercases an address, strips punctuation, folds common
// street words to their abbreviation and collapses whitespace, so
// "500 Oak Street," and "500  oak st" compare equal.
func NormalizeAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	addr = nonAlnumRegex.ReplaceAllString(addr, " ")
	words := strings.Fields(addr)
	for i, w := range words {
		if abbrev, ok := streetReplacements[w]; ok {
			words[i] = abbrev
		}
	}
	return strings.Join(words, " ")
}

// DedupKey identifies a record within one run: normalized address and price,
// or domain and price when no address was recovered.
func DedupKey(rec *models.PropertyRecord) string {
	if rec.Address != nil {
		if addr := NormalizeAddress(*rec.Address); addr != "" {
			return fmt.Sprintf("%s|%d", addr, rec.Price)
		}
	}
	return fmt.Sprintf("%s|%d", strings.ToLower(rec.Domain), rec.Price)
}

// Fingerprint is a stable short hash of the dedup key, used as the row key
// when records are persisted outside the engine.
func Fingerprint(rec *models.PropertyRecord) string {
	hash := sha256.Sum256([]byte(DedupKey(rec)))
	return hex.EncodeToString(hash[:16])
}
