package models

import "strconv"

// RawRow is the flattened, persisted form of one accepted offer. Columns are
// positional and the raw file carries no header; the normalizer assigns one
// later. The three Alt fields stay empty when Stops is zero.
type RawRow struct {
	Currency       string
	Price          float64
	Date           string
	Stops          int
	Origin         string
	Destination    string
	Duration       string
	AltOrigin      string
	AltDestination string
	AltDuration    string
	TotalDuration  string
}

// Fields returns the row in raw-file column order.
func (r RawRow) Fields() []string {
	return []string{
		r.Currency,
		strconv.FormatFloat(r.Price, 'f', -1, 64),
		r.Date,
		strconv.Itoa(r.Stops),
		r.Origin,
		r.Destination,
		r.Duration,
		r.AltOrigin,
		r.AltDestination,
		r.AltDuration,
		r.TotalDuration,
	}
}
