// Package report prints a terminal summary of a finished report file.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"faretrack/pkg/currency"
)

// Summary is an excerpt of the report: total row count plus the cheapest
// offers in ascending price order.
type Summary struct {
	TotalRows int
	Cheapest  []Line
}

// Line is one offer as shown in the summary.
type Line struct {
	Price         float64
	Currency      string
	Date          string
	OriginCity    string
	Origin        string
	Destination   string
	TotalDuration string
	Stops         string
}

// Build derives a summary from a report table (header row first), keeping
// the limit cheapest rows. Rows whose price fails to parse are ignored.
func Build(header []string, rows [][]string, limit int) Summary {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var lines []Line
	for _, row := range rows {
		price, err := strconv.ParseFloat(cell(row, "Price"), 64)
		if err != nil {
			continue
		}
		lines = append(lines, Line{
			Price:         price,
			Currency:      cell(row, "Currency"),
			Date:          cell(row, "Date"),
			OriginCity:    cell(row, "City_Origin"),
			Origin:        cell(row, "IATA_Origin"),
			Destination:   cell(row, "IATA_Destination"),
			TotalDuration: cell(row, "Total_Duration"),
			Stops:         cell(row, "Stops"),
		})
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Price < lines[j].Price
	})
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}

	return Summary{TotalRows: len(rows), Cheapest: lines}
}

// Print writes the summary as an aligned table. Column widths account for
// the display width of city names, not their byte length.
func Print(w io.Writer, s Summary) {
	fmt.Fprintf(w, "%d offers in report\n", s.TotalRows)
	if len(s.Cheapest) == 0 {
		return
	}

	headers := []string{"PRICE", "DATE", "ROUTE", "DURATION", "STOPS"}
	table := make([][]string, 0, len(s.Cheapest)+1)
	table = append(table, headers)
	for _, line := range s.Cheapest {
		route := line.Origin + " -> " + line.Destination
		if line.OriginCity != "" {
			route = line.OriginCity + " (" + route + ")"
		}
		table = append(table, []string{
			currency.Format(line.Currency, line.Price),
			line.Date,
			route,
			line.TotalDuration,
			line.Stops,
		})
	}

	widths := make([]int, len(headers))
	for _, row := range table {
		for c, cell := range row {
			if width := runewidth.StringWidth(cell); width > widths[c] {
				widths[c] = width
			}
		}
	}

	for _, row := range table {
		parts := make([]string, len(row))
		for c, cell := range row {
			parts[c] = runewidth.FillRight(cell, widths[c])
		}
		fmt.Fprintln(w, "  "+strings.TrimRight(strings.Join(parts, "  "), " "))
	}
}
