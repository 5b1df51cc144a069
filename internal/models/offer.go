package models

// SearchQuery identifies one provider search: a route, a departure day and a
// passenger count.
type SearchQuery struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
	Adults        int    `json:"adults"`
}

// Segment is one flown leg between two airports.
type Segment struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DepartureAt string `json:"departure_at"`
	Duration    string `json:"duration"`
}

// Offer is one priced itinerary option returned by the provider. Total is
// kept as received; the fetcher parses it while filtering so that a malformed
// price skips a single offer instead of failing the search.
type Offer struct {
	Currency string    `json:"currency"`
	Total    string    `json:"total"`
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

// Stops returns the number of segments minus one.
func (o Offer) Stops() int {
	return len(o.Segments) - 1
}
