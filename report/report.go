// Package report renders a run's records as the deal pipeline sheet, in CSV
// or JSON.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"deal_hunter/models"
)

const maxNotes = 3

var Header = []string{"#", "Address", "Price", "Lot Size", "Price/Acre", "Type", "Source", "URL", "Confidence", "Notes"}

var printer = message.NewPrinter(language.English)

// Row is one pipeline sheet line with display-ready values.
type Row struct {
	Number       int    `json:"number"`
	Address      string `json:"address"`
	Price        string `json:"price"`
	LotSize      string `json:"lot_size"`
	PricePerAcre string `json:"price_per_acre"`
	Type         string `json:"type"`
	Source       string `json:"source"`
	URL          string `json:"url"`
	Confidence   string `json:"confidence"`
	Notes        string `json:"notes"`
}

func (r Row) fields() []string {
	return []string{
		strconv.Itoa(r.Number), r.Address, r.Price, r.LotSize, r.PricePerAcre,
		r.Type, r.Source, r.URL, r.Confidence, r.Notes,
	}
}

func NewRow(n int, rec *models.PropertyRecord) Row {
	row := Row{
		Number:     n,
		Address:    rec.DisplayAddress(),
		Price:      "Contact Seller",
		LotSize:    "See listing",
		Type:       string(rec.PropertyType),
		Source:     rec.Source,
		URL:        rec.SourceURL,
		Confidence: string(rec.Confidence),
		Notes:      strings.Join(Gaps(rec), ", "),
	}
	if rec.Price > 0 {
		row.Price = printer.Sprintf("$%d", rec.Price)
	}
	if rec.Acres != nil {
		row.LotSize = strconv.FormatFloat(*rec.Acres, 'f', -1, 64) + " ac"
	}
	if ppa := rec.PricePerAcre(); ppa > 0 {
		row.PricePerAcre = printer.Sprintf("$%.0f", ppa)
	}
	return row
}

func Rows(records []models.PropertyRecord) []Row {
	rows := make([]Row, 0, len(records))
	for i := range records {
		rows = append(rows, NewRow(i+1, &records[i]))
	}
	return rows
}

// Gaps lists what still has to be verified before an offer, most important
// first, capped at three. Zoning and deed checks are always outstanding.
func Gaps(rec *models.PropertyRecord) []string {
	var gaps []string
	if rec.Address == nil {
		gaps = append(gaps, "Full address")
	}
	if rec.Price <= 0 {
		gaps = append(gaps, "Verified price")
	}
	if rec.Acres == nil {
		gaps = append(gaps, "Lot size")
	}
	if rec.Beds == nil && rec.Baths == nil && rec.SqFt == nil {
		gaps = append(gaps, "Property details")
	}
	gaps = append(gaps, "Zoning verification", "Deed review")
	return gaps[:min(len(gaps), maxNotes)]
}

// Summary is the one-line market overview printed under the sheet.
func Summary(records []models.PropertyRecord) string {
	var total, lo, hi, n int
	for _, rec := range records {
		if rec.Price <= 0 {
			continue
		}
		if n == 0 || rec.Price < lo {
			lo = rec.Price
		}
		if rec.Price > hi {
			hi = rec.Price
		}
		total += rec.Price
		n++
	}
	if n == 0 {
		return fmt.Sprintf("Found %d properties | Pricing data pending", len(records))
	}
	return printer.Sprintf("Found %d properties | Avg Price: $%d | Price Range: $%d - $%d",
		len(records), total/n, lo, hi)
}

func WriteCSV(w io.Writer, records []models.PropertyRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, row := range Rows(records) {
		if err := cw.Write(row.fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonReport struct {
	RunID       string             `json:"run_id"`
	Query       models.SearchQuery `json:"query"`
	Status      models.RunStatus   `json:"status"`
	GeneratedAt time.Time          `json:"generated_at"`
	Summary     string             `json:"summary"`
	Stats       models.RunStats    `json:"stats"`
	Rows        []Row              `json:"rows"`
}

func WriteJSON(w io.Writer, run *models.SearchRun) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		RunID:       run.ID.String(),
		Query:       run.Query,
		Status:      run.Status,
		GeneratedAt: run.FinishedAt,
		Summary:     Summary(run.Records),
		Stats:       run.Stats,
		Rows:        Rows(run.Records),
	})
}

// Write renders a run in the named format ("csv" or "json").
func Write(w io.Writer, format string, run *models.SearchRun) error {
	switch strings.ToLower(format) {
	case "", "csv":
		return WriteCSV(w, run.Records)
	case "json":
		return WriteJSON(w, run)
	default:
		return fmt.Errorf("unknown report format: %s", format)
	}
}

// ContentType returns the MIME type for a report format.
func ContentType(format string) string {
	if strings.ToLower(format) == "json" {
		return "application/json"
	}
	return "text/csv"
}

// FileName builds a stable artifact name for a run.
func FileName(run *models.SearchRun, format string) string {
	if format == "" {
		format = "csv"
	}
	slug := strings.ToLower(strings.NewReplacer(",", "", " ", "-").Replace(run.Query.Location))
	return fmt.Sprintf("%s_%s_%s.%s", run.StartedAt.UTC().Format("20060102-150405"), slug,
		run.ID.String()[:8], strings.ToLower(format))
}
