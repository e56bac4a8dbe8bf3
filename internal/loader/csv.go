package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmehra/niftyrank/internal/contracts"
	"github.com/dmehra/niftyrank/internal/universe"
	"github.com/dmehra/niftyrank/pkg/logger"
)

// Loader reads the validated CSV inputs produced by the upstream
// extraction step: the historical price panel and the constituent
// reference list. Field presence and date parseability are guaranteed
// upstream per file; completeness and duplicate dates are not, so
// malformed rows become per-record faults here rather than run
// failures.
type Loader struct {
	logger *logger.Logger
}

// New creates a loader.
func New(log *logger.Logger) *Loader {
	return &Loader{logger: log}
}

const dateLayout = "2006-01-02"

// LoadPrices reads the historical price CSV (columns: isin, date,
// close) into a panel, collapsing multiple rows inside one calendar
// month to the latest-dated observation so the panel holds month-end
// prices only. A missing file or missing column is fatal; a bad row is
// a counted fault.
func (l *Loader) LoadPrices(path string) (*contracts.PricePanel, contracts.QualityReport, error) {
	var quality contracts.QualityReport

	f, err := os.Open(path)
	if err != nil {
		return nil, quality, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, quality, fmt.Errorf("read price header: %w", err)
	}

	idCol, err := findColumn(header, "isin", "security_id")
	if err != nil {
		return nil, quality, fmt.Errorf("price file: %w", err)
	}
	dateCol, err := findColumn(header, "date", "as_of")
	if err != nil {
		return nil, quality, fmt.Errorf("price file: %w", err)
	}
	priceCol, err := findColumn(header, "close", "price")
	if err != nil {
		return nil, quality, fmt.Errorf("price file: %w", err)
	}

	panel := contracts.NewPricePanel()
	line := 1

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			quality.AddFault(contracts.DataQualityFault{
				Reason: contracts.FaultMalformedRow,
				Detail: fmt.Sprintf("line %d: %v", line, err),
			})
			continue
		}

		if len(row) <= idCol || len(row) <= dateCol || len(row) <= priceCol {
			quality.AddFault(contracts.DataQualityFault{
				Reason: contracts.FaultMalformedRow,
				Detail: fmt.Sprintf("line %d: short row", line),
			})
			continue
		}

		id := strings.TrimSpace(row[idCol])
		asOf, dateErr := time.Parse(dateLayout, strings.TrimSpace(row[dateCol]))
		price, priceErr := strconv.ParseFloat(strings.TrimSpace(row[priceCol]), 64)

		if id == "" || dateErr != nil || priceErr != nil {
			quality.AddFault(contracts.DataQualityFault{
				SecurityID: id,
				Reason:     contracts.FaultMalformedRow,
				Detail:     fmt.Sprintf("line %d", line),
			})
			continue
		}

		panel.Append(contracts.PricePoint{
			SecurityID: id,
			AsOf:       asOf,
			Price:      price,
		})
	}

	panel.Normalize()
	collapseToMonthEnds(panel)

	l.logger.WithFields(map[string]interface{}{
		"path":           path,
		"securities":     panel.Securities(),
		"observations":   panel.Observations(),
		"malformed_rows": quality.MalformedRows,
	}).Info("Loaded historical prices")

	return panel, quality, nil
}

// LoadConstituents reads the index reference CSV (columns: isin, name,
// ticker, sector).
func (l *Loader) LoadConstituents(path string) (*universe.Constituents, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open constituent file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read constituent header: %w", err)
	}

	idCol, err := findColumn(header, "isin", "security_id")
	if err != nil {
		return nil, fmt.Errorf("constituent file: %w", err)
	}
	nameCol := optionalColumn(header, "name")
	tickerCol := optionalColumn(header, "ticker")
	sectorCol := optionalColumn(header, "sector")

	var securities []universe.Security
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		if len(row) <= idCol {
			continue
		}

		id := strings.TrimSpace(row[idCol])
		if id == "" {
			continue
		}

		securities = append(securities, universe.Security{
			ID:     id,
			Name:   fieldAt(row, nameCol),
			Ticker: fieldAt(row, tickerCol),
			Sector: fieldAt(row, sectorCol),
		})
	}

	cons := universe.NewConstituents(securities)
	l.logger.WithFields(map[string]interface{}{
		"path":         path,
		"constituents": cons.Len(),
	}).Info("Loaded constituent list")

	return cons, nil
}

// collapseToMonthEnds keeps only the latest-dated point per security
// per calendar month. Rows on the exact same date survive (in input
// order) for the calculator's duplicate handling to flag.
func collapseToMonthEnds(panel *contracts.PricePanel) {
	for _, id := range panel.SecurityIDs() {
		series := panel.Series(id)
		collapsed := make([]contracts.PricePoint, 0, len(series))

		for start := 0; start < len(series); {
			end := start
			for end < len(series) && sameMonth(series[start].AsOf, series[end].AsOf) {
				end++
			}
			// Latest date wins the month; same-date duplicates of that
			// date all survive, in input order.
			latest := series[end-1].AsOf
			for i := start; i < end; i++ {
				if series[i].AsOf.Equal(latest) {
					collapsed = append(collapsed, series[i])
				}
			}
			start = end
		}

		panel.Replace(id, collapsed)
	}
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func findColumn(header []string, names ...string) (int, error) {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range names {
			if h == name {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("missing required column %q", names[0])
}

func optionalColumn(header []string, name string) int {
	for i, h := range header {
		if strings.ToLower(strings.TrimSpace(h)) == name {
			return i
		}
	}
	return -1
}

func fieldAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
