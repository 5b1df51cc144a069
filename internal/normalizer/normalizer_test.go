package normalizer

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"faretrack/internal/cities"
	"faretrack/internal/models"
	"faretrack/internal/storage"
)

func testCities() *cities.Map {
	return cities.FromMap(map[string]string{
		"JFK": "New York",
		"CDG": "Paris",
		"TLV": "Tel Aviv",
	})
}

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	return New(testCities(), DefaultConfig(), log.New(io.Discard))
}

// writeRaw appends rows to a raw file in a temp dir and returns its path.
func writeRaw(t *testing.T, rows []models.RawRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.csv")
	if err := storage.AppendRawRows(path, rows); err != nil {
		t.Fatalf("write raw file: %v", err)
	}
	return path
}

func oneStopRow() models.RawRow {
	return models.RawRow{
		Currency:       "EUR",
		Price:          100,
		Date:           "2025-01-03T14:25:00",
		Stops:          1,
		Origin:         "JFK",
		Destination:    "CDG",
		Duration:       "PT2H30M",
		AltOrigin:      "CDG",
		AltDestination: "TLV",
		AltDuration:    "PT4H15M",
		TotalDuration:  "PT9H45M",
	}
}

func nonstopRow() models.RawRow {
	return models.RawRow{
		Currency:      "EUR",
		Price:         250,
		Date:          "2025-01-04T08:00:00",
		Stops:         0,
		Origin:        "JFK",
		Destination:   "TLV",
		Duration:      "PT9H45M",
		TotalDuration: "PT9H45M",
	}
}

func cell(t *testing.T, header []string, row []string, name string) string {
	t.Helper()
	for i, column := range header {
		if column == name {
			if i >= len(row) {
				t.Fatalf("row too short for column %s", name)
			}
			return row[i]
		}
	}
	t.Fatalf("column %s not found in %v", name, header)
	return ""
}

func TestProcessEndToEnd(t *testing.T) {
	n := newTestNormalizer(t)
	if err := n.Load(writeRaw(t, []models.RawRow{oneStopRow()})); err != nil {
		t.Fatalf("Load: %v", err)
	}
	n.Process()

	header, rows, ok := n.Snapshot()
	if !ok {
		t.Fatal("normalizer has no table after Load")
	}
	if len(header) != len(ReportHeader) {
		t.Fatalf("header has %d columns, want %d", len(header), len(ReportHeader))
	}
	for i, name := range ReportHeader {
		if header[i] != name {
			t.Fatalf("header[%d] = %s, want %s", i, header[i], name)
		}
	}
	if len(rows) != 1 {
		t.Fatalf("table has %d rows, want 1", len(rows))
	}

	row := rows[0]
	want := map[string]string{
		"Currency":          "ILS",
		"Price":             "414",
		"Date":              "2025-01-03 14:25",
		"Stops":             "1",
		"Total_Duration":    "09:45",
		"Stop_Duration":     "03:00",
		"City_Origin":       "New York",
		"IATA_Origin":       "JFK",
		"City_Destination":  "Paris",
		"IATA_Destination":  "CDG",
		"Duration":          "02:30",
		"IATA1_Destination": "TLV",
		"City1_Destination": "Tel Aviv",
		"Duration1":         "04:15",
	}
	for name, value := range want {
		if got := cell(t, header, row, name); got != value {
			t.Errorf("%s = %q, want %q", name, got, value)
		}
	}

	for _, dropped := range []string{"IATA1_Origin", "City1_Origin"} {
		for _, name := range header {
			if name == dropped {
				t.Errorf("column %s should be dropped from the report", dropped)
			}
		}
	}
}

func TestProcessNonstopRow(t *testing.T) {
	n := newTestNormalizer(t)
	if err := n.Load(writeRaw(t, []models.RawRow{nonstopRow()})); err != nil {
		t.Fatalf("Load: %v", err)
	}
	n.Process()

	header, rows, _ := n.Snapshot()
	row := rows[0]

	if got := cell(t, header, row, "Stop_Duration"); got != "00:00" {
		t.Errorf("Stop_Duration = %q, want 00:00 for a consistent nonstop row", got)
	}
	for _, name := range []string{"IATA1_Destination", "City1_Destination", "Duration1"} {
		if got := cell(t, header, row, name); got != "" {
			t.Errorf("%s = %q, want empty for nonstop row", name, got)
		}
	}
}

func TestProcessNonstopInconsistentTotal(t *testing.T) {
	row := nonstopRow()
	row.TotalDuration = "PT12H" // disagrees with the single leg

	n := newTestNormalizer(t)
	if err := n.Load(writeRaw(t, []models.RawRow{row})); err != nil {
		t.Fatalf("Load: %v", err)
	}
	n.Process()

	header, rows, _ := n.Snapshot()
	if got := cell(t, header, rows[0], "Stop_Duration"); got != "" {
		t.Errorf("Stop_Duration = %q, want missing for inconsistent nonstop row", got)
	}
}

func TestProcessUnparseableDuration(t *testing.T) {
	row := oneStopRow()
	row.AltDuration = "bogus"

	n := newTestNormalizer(t)
	if err := n.Load(writeRaw(t, []models.RawRow{row})); err != nil {
		t.Fatalf("Load: %v", err)
	}
	n.Process()

	header, rows, _ := n.Snapshot()
	if got := cell(t, header, rows[0], "Duration1"); got != "" {
		t.Errorf("Duration1 = %q, want missing marker", got)
	}
	if got := cell(t, header, rows[0], "Stop_Duration"); got != "" {
		t.Errorf("Stop_Duration = %q, want missing when a leg duration is missing", got)
	}
}

func TestProcessUnmappedIdentifier(t *testing.T) {
	row := oneStopRow()
	row.Origin = "XXX"

	n := newTestNormalizer(t)
	if err := n.Load(writeRaw(t, []models.RawRow{row})); err != nil {
		t.Fatalf("Load: %v", err)
	}
	n.Process()

	header, rows, _ := n.Snapshot()
	if got := cell(t, header, rows[0], "City_Origin"); got != "" {
		t.Errorf("City_Origin = %q, want missing for unmapped identifier", got)
	}
}

func TestProcessCurrencyMismatchSkipsConversion(t *testing.T) {
	other := oneStopRow()
	other.Currency = "USD"
	other.Price = 200

	n := newTestNormalizer(t)
	if err := n.Load(writeRaw(t, []models.RawRow{oneStopRow(), other})); err != nil {
		t.Fatalf("Load: %v", err)
	}
	n.Process()

	header, rows, _ := n.Snapshot()
	if got := cell(t, header, rows[0], "Currency"); got != "EUR" {
		t.Errorf("row 0 currency = %q, want unchanged EUR", got)
	}
	if got := cell(t, header, rows[0], "Price"); got != "100" {
		t.Errorf("row 0 price = %q, want unconverted 100", got)
	}
	if got := cell(t, header, rows[1], "Currency"); got != "USD" {
		t.Errorf("row 1 currency = %q, want unchanged USD", got)
	}
}

func TestLoadMissingFileIsSafe(t *testing.T) {
	n := newTestNormalizer(t)
	if err := n.Load(filepath.Join(t.TempDir(), "absent.csv")); err != nil {
		t.Fatalf("Load of missing file must warn, not fail: %v", err)
	}

	n.Process() // must no-op

	out := filepath.Join(t.TempDir(), "report.csv")
	if err := n.Save(out); err != nil {
		t.Fatalf("Save in empty state must no-op: %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("Save created a report despite the empty state")
	}
}

func TestSaveNeverOverwrites(t *testing.T) {
	n := newTestNormalizer(t)
	if err := n.Load(writeRaw(t, []models.RawRow{oneStopRow()})); err != nil {
		t.Fatalf("Load: %v", err)
	}
	n.Process()

	out := filepath.Join(t.TempDir(), "report.csv")
	if err := n.Save(out); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	first, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	// A second Save, even from a normalizer holding different data, must
	// leave the file untouched.
	other := newTestNormalizer(t)
	if err := other.Load(writeRaw(t, []models.RawRow{nonstopRow()})); err != nil {
		t.Fatalf("Load: %v", err)
	}
	other.Process()
	if err := other.Save(out); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	second, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("re-read report: %v", err)
	}
	if string(first) != string(second) {
		t.Error("second Save modified the existing report")
	}
}

func TestProcessConversionOnEmptyFileHeaderOnlySave(t *testing.T) {
	// An existing-but-empty raw file loads as zero rows; Process and Save
	// still run and produce a header-only report.
	path := filepath.Join(t.TempDir(), "raw.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	n := newTestNormalizer(t)
	if err := n.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	n.Process()

	out := filepath.Join(t.TempDir(), "report.csv")
	if err := n.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	table, err := storage.ReadTable(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if len(table) != 1 {
		t.Fatalf("report has %d lines, want header only", len(table))
	}
}
