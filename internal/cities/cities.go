// Package cities resolves airport identifiers to city names using a static
// side file loaded once at startup.
package cities

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Map is an immutable identifier-to-city lookup. Lookups never fail; codes
// without an entry resolve to the empty string.
type Map struct {
	byCode map[string]string
}

// Load reads a JSON object of {"IATA": "City"} pairs from path.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cities: read %s: %w", path, err)
	}

	var byCode map[string]string
	if err := json.Unmarshal(data, &byCode); err != nil {
		return nil, fmt.Errorf("cities: parse %s: %w", path, err)
	}

	return &Map{byCode: byCode}, nil
}

// FromMap builds a Map from an in-memory table. The input is copied.
func FromMap(byCode map[string]string) *Map {
	copied := make(map[string]string, len(byCode))
	for code, city := range byCode {
		copied[code] = city
	}
	return &Map{byCode: copied}
}

// Resolve returns the city for code, or "" when the code is unmapped.
func (m *Map) Resolve(code string) string {
	if m == nil {
		return ""
	}
	return m.byCode[code]
}

// Codes returns every known identifier in sorted order. Batch drivers use
// this to enumerate origins from a destinations side file.
func (m *Map) Codes() []string {
	if m == nil {
		return nil
	}
	codes := make([]string, 0, len(m.byCode))
	for code := range m.byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of mapped identifiers.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.byCode)
}
