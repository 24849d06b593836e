package data

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_LoadNetwork_BuiltIn(t *testing.T) {
	d, fares, err := LoadNetwork("")
	if err != nil {
		t.Fatal(err)
	}

	if got := len(d.Line(LineBlue)); got != 26 {
		t.Errorf("blue line: expected 26 stations, got %d", got)
	}
	if got := len(d.Line(LineGreen)); got != 17 {
		t.Errorf("green line: expected 17 stations, got %d", got)
	}
	if err := ValidateFares(fares); err != nil {
		t.Errorf("built-in fares: %v", err)
	}

	for _, ic := range d.Interchanges() {
		for _, tag := range []string{LineBlue, LineGreen} {
			if d.Line(tag).Index(ic) == -1 {
				t.Errorf("interchange %q missing on %s", ic, tag)
			}
		}
	}
}

func Test_DecodeNetwork_JSON(t *testing.T) {
	doc := `{
		"interchanges": ["Hub"],
		"lines": [
			{"name": "Blue", "prefix": "B", "stations": [{"id": "B1", "name": "North"}, {"id": "B2", "name": "Hub"}]},
			{"name": "Green", "prefix": "G", "stations": [{"id": "G1", "name": "Hub"}, {"id": "G2", "name": "East", "hasParking": true}]}
		],
		"fares": [{"minStops": 0, "maxStops": 9, "fare": 15}]
	}`

	d, fares, err := DecodeNetwork([]byte(doc), "json")
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 4 {
		t.Errorf("expected 4 stations, got %d", d.Len())
	}
	if s, _ := d.Find("East"); !s.HasParking || s.Line != LineGreen {
		t.Errorf("unexpected station %+v", s)
	}
	if fares.Fare(3) != 15 {
		t.Errorf("expected fare 15, got %d", fares.Fare(3))
	}
}

func Test_DecodeNetwork_BadFaresAreDropped(t *testing.T) {
	doc := `
interchanges: []
lines:
  - name: Blue
    prefix: B
    stations:
      - {id: B1, name: North}
      - {id: B2, name: South}
fares:
  - {minStops: 2, maxStops: 5, fare: 10}
`
	d, fares, err := DecodeNetwork([]byte(doc), "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 2 {
		t.Errorf("expected 2 stations, got %d", d.Len())
	}
	if len(fares) != 0 {
		t.Errorf("expected empty fare table, got %v", fares)
	}
	if fares.Fare(3) != NoFare {
		t.Errorf("expected NoFare, got %d", fares.Fare(3))
	}
}

func Test_DecodeNetwork_Rejects(t *testing.T) {
	docs := map[string]string{
		"unknown line":  `{"lines": [{"name": "Red", "prefix": "R", "stations": []}]}`,
		"no lines":      `{"lines": []}`,
		"long prefix":   `{"lines": [{"name": "Blue", "prefix": "BL", "stations": []}]}`,
		"malformed":     `{"lines": [`,
		"bad station":   `{"lines": [{"name": "Blue", "prefix": "B", "stations": [{"id": "X1", "name": "North"}]}]}`,
		"empty station": `{"lines": [{"name": "Blue", "prefix": "B", "stations": [{"id": "B1", "name": ""}]}]}`,
	}

	for name, doc := range docs {
		if _, _, err := DecodeNetwork([]byte(doc), "json"); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	if _, _, err := DecodeNetwork([]byte("{}"), "toml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func Test_SaveNetwork_RoundTrip(t *testing.T) {
	d, fares, err := LoadNetwork("")
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"network.yaml", "network.json"} {
		path := filepath.Join(t.TempDir(), name)
		if err := SaveNetwork(path, d, fares); err != nil {
			t.Fatalf("%s: %v", name, err)
		}

		d2, fares2, err := LoadNetwork(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if d2.Len() != d.Len() || len(fares2) != len(fares) {
			t.Errorf("%s: expected %d stations and %d fares, got %d and %d", name, d.Len(), len(fares), d2.Len(), len(fares2))
		}

		entries, _ := os.ReadDir(filepath.Dir(path))
		if len(entries) != 1 {
			t.Errorf("%s: temp file left behind: %d entries", name, len(entries))
		}
	}
}
