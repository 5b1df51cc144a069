package cities

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeSideFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "iata_codes.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndResolve(t *testing.T) {
	path := writeSideFile(t, `{"TLV": "Tel Aviv", "JFK": "New York", "CDG": "Paris"}`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Len() != 3 {
		t.Fatalf("Len = %d, want 3", m.Len())
	}
	if got := m.Resolve("TLV"); got != "Tel Aviv" {
		t.Errorf("Resolve(TLV) = %q, want Tel Aviv", got)
	}
	if got := m.Resolve("XXX"); got != "" {
		t.Errorf("Resolve(XXX) = %q, want empty", got)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	m := FromMap(map[string]string{"TLV": "Tel Aviv"})

	for _, code := range []string{"TLV", "XXX"} {
		first := m.Resolve(code)
		second := m.Resolve(code)
		if first != second {
			t.Errorf("Resolve(%s) = %q then %q, want identical results", code, first, second)
		}
	}
}

func TestCodesSorted(t *testing.T) {
	m := FromMap(map[string]string{"TLV": "Tel Aviv", "ATH": "Athens", "JFK": "New York"})

	codes := m.Codes()
	if len(codes) != 3 {
		t.Fatalf("Codes returned %d entries, want 3", len(codes))
	}
	if !sort.StringsAreSorted(codes) {
		t.Errorf("Codes = %v, want sorted order", codes)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Load of a missing side file must fail")
	}
}

func TestNilMapIsSafe(t *testing.T) {
	var m *Map
	if got := m.Resolve("TLV"); got != "" {
		t.Errorf("nil map Resolve = %q, want empty", got)
	}
	if m.Len() != 0 || m.Codes() != nil {
		t.Error("nil map must behave as empty")
	}
}
