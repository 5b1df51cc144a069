// Package normalizer turns the accumulated raw offer file into the final
// report: a fixed sequence of column transforms applied to immutable table
// snapshots, then a guarded write of the result.
package normalizer

import (
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"faretrack/internal/cities"
	"faretrack/internal/storage"
	"faretrack/pkg/currency"
)

// RawHeader is the canonical 11-column layout assigned to the header-less
// raw file.
var RawHeader = []string{
	"Currency", "Price", "Date", "Stops",
	"IATA_Origin", "IATA_Destination", "Duration",
	"IATA1_Origin", "IATA1_Destination", "Duration1",
	"Total_Duration",
}

// ReportHeader is the final 14-column report layout. IATA1_Origin and
// City1_Origin are dropped on reorder, mirroring the report this replaces.
var ReportHeader = []string{
	"Currency", "Price", "Date", "Stops", "Total_Duration", "Stop_Duration",
	"City_Origin", "IATA_Origin", "City_Destination", "IATA_Destination",
	"Duration", "IATA1_Destination", "City1_Destination", "Duration1",
}

const (
	rawDateLayout    = "2006-01-02T15:04:05"
	reportDateLayout = "2006-01-02 15:04"
)

type Config struct {
	SourceCurrency string
	TargetCurrency string
	ConversionRate float64
}

func DefaultConfig() Config {
	return Config{
		SourceCurrency: "EUR",
		TargetCurrency: "ILS",
		ConversionRate: 4.14,
	}
}

// Normalizer loads the raw file once, processes it in memory and writes the
// report once. A missing raw file leaves it in an empty state in which every
// later step warns and no-ops instead of failing.
type Normalizer struct {
	cities *cities.Map
	config Config
	logger *log.Logger

	table  Table
	loaded bool
}

func New(cityMap *cities.Map, config Config, logger *log.Logger) *Normalizer {
	if config.SourceCurrency == "" || config.TargetCurrency == "" || config.ConversionRate <= 0 {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Normalizer{
		cities: cityMap,
		config: config,
		logger: logger,
	}
}

// Load reads the full raw file into memory. An absent file is a warning, not
// an error: the normalizer simply has nothing to do.
func (n *Normalizer) Load(path string) error {
	rows, err := storage.ReadTable(path)
	if err != nil {
		if os.IsNotExist(err) {
			n.logger.Warn("raw file does not exist", "path", path)
			n.loaded = false
			return nil
		}
		return err
	}

	n.table = NewTable(nil, rows)
	n.loaded = true
	n.logger.Info("raw file loaded", "path", path, "rows", n.table.Len())
	return nil
}

// Process applies the transform steps in fixed order. Each step is a pure
// function over a table snapshot.
func (n *Normalizer) Process() {
	if !n.loaded {
		n.logger.Warn("no table loaded, skipping processing")
		return
	}

	t := NewTable(RawHeader, n.table.rows)
	t = resolveCities(t, n.cities)
	t = formatDurations(t)
	t = formatDates(t)
	t = computeStopDurations(t)

	converted, ok := convertPrices(t, n.config.SourceCurrency, n.config.TargetCurrency, n.config.ConversionRate)
	if !ok {
		n.logger.Warn("not all prices are in the source currency, conversion skipped",
			"source", n.config.SourceCurrency)
	}
	t = converted

	t = roundPrices(t)
	t = t.selectColumns(ReportHeader...)

	n.table = t
}

// Save writes the processed table to a new file. An existing file at path is
// never overwritten; the call warns and returns.
func (n *Normalizer) Save(path string) error {
	if !n.loaded {
		n.logger.Warn("no table loaded, nothing to save")
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		n.logger.Warn("report already exists, not saved", "path", path)
		return nil
	}

	if err := storage.WriteTable(path, n.table.Columns(), n.table.Rows()); err != nil {
		return err
	}
	n.logger.Info("report saved", "path", path, "rows", n.table.Len())
	return nil
}

// Snapshot exposes the current header and rows, and whether a table is
// loaded at all.
func (n *Normalizer) Snapshot() ([]string, [][]string, bool) {
	if !n.loaded {
		return nil, nil, false
	}
	return n.table.Columns(), n.table.Rows(), true
}

// resolveCities appends one city column per identifier column. Unmapped
// identifiers resolve to the empty missing-value marker.
func resolveCities(t Table, m *cities.Map) Table {
	names := []string{"City_Origin", "City_Destination", "City1_Origin", "City1_Destination"}
	sources := []string{"IATA_Origin", "IATA_Destination", "IATA1_Origin", "IATA1_Destination"}

	values := make([][]string, len(names))
	for c, source := range sources {
		column := make([]string, t.Len())
		for r := range column {
			column[r] = m.Resolve(t.value(r, source))
		}
		values[c] = column
	}
	return t.withColumns(names, values)
}

// formatDurations rewrites the three duration columns from the provider
// encoding to "HH:MM", flooring to whole minutes. Unparseable or absent
// values become the missing-value marker.
func formatDurations(t Table) Table {
	for _, name := range []string{"Duration", "Duration1", "Total_Duration"} {
		t = t.mapColumn(name, func(s string) string {
			minutes, ok := ParseMinutes(s)
			if !ok {
				return ""
			}
			return FormatMinutes(minutes)
		})
	}
	return t
}

// formatDates rewrites the departure timestamp to "YYYY-MM-DD HH:MM".
func formatDates(t Table) Table {
	layouts := []string{rawDateLayout, time.RFC3339, "2006-01-02 15:04:05"}
	return t.mapColumn("Date", func(s string) string {
		for _, layout := range layouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.Format(reportDateLayout)
			}
		}
		return ""
	})
}

// computeStopDurations appends Stop_Duration = Total_Duration minus the leg
// durations. A nonstop row's absent second leg counts as zero, so its stop
// duration is 00:00 unless the total disagrees with the single leg; that,
// like anything unparseable or negative, propagates the missing-value marker.
func computeStopDurations(t Table) Table {
	column := make([]string, t.Len())
	for r := range column {
		total, okTotal := ParseMinutes(t.value(r, "Total_Duration"))
		leg1, okLeg1 := ParseMinutes(t.value(r, "Duration"))
		nonstop := t.value(r, "Stops") == "0"

		leg2 := 0
		okLeg2 := true
		if alt := t.value(r, "Duration1"); alt != "" {
			leg2, okLeg2 = ParseMinutes(alt)
		} else if !nonstop {
			okLeg2 = false
		}

		stop := total - leg1 - leg2
		if !okTotal || !okLeg1 || !okLeg2 || stop < 0 || (nonstop && stop != 0) {
			column[r] = ""
			continue
		}
		column[r] = FormatMinutes(stop)
	}
	return t.withColumns([]string{"Stop_Duration"}, [][]string{column})
}

// convertPrices multiplies every price by the fixed rate and relabels the
// currency column, but only when every row is in the expected source
// currency. Otherwise it returns the table unchanged and reports false.
func convertPrices(t Table, source, target string, rate float64) (Table, bool) {
	for r := 0; r < t.Len(); r++ {
		if t.value(r, "Currency") != source {
			return t, false
		}
	}

	t = t.mapColumn("Price", func(s string) string {
		price, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return s
		}
		return strconv.FormatFloat(currency.Convert(price, rate), 'f', -1, 64)
	})
	t = t.mapColumn("Currency", func(string) string { return target })
	return t, true
}

// roundPrices rounds every price to the nearest whole unit.
func roundPrices(t Table) Table {
	return t.mapColumn("Price", func(s string) string {
		price, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return s
		}
		return strconv.FormatFloat(currency.Round(price), 'f', -1, 64)
	})
}
