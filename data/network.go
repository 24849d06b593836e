package data

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed network.yaml
var defaultNetwork []byte

// NetworkFile is the persisted form of the station directory and fare table.
type NetworkFile struct {
	Interchanges []string   `json:"interchanges" yaml:"interchanges" validate:"dive,required"`
	Lines        []LineFile `json:"lines" yaml:"lines" validate:"required,min=1,dive"`
	Fares        []FareRule `json:"fares" yaml:"fares"`
}

type LineFile struct {
	Name     string    `json:"name" yaml:"name" validate:"required,oneof=Blue Green"`
	Prefix   string    `json:"prefix" yaml:"prefix" validate:"required,len=1,alpha"`
	Stations []Station `json:"stations" yaml:"stations" validate:"dive"`
}

var validate = validator.New()

// DecodeNetwork parses a network file. format is "json" or "yaml".
//
// Station errors are fatal. If the fares section is invalid, it is logged and
// an empty fare table is returned instead, so every fare lookup yields NoFare.
func DecodeNetwork(b []byte, format string) (*Directory, FareTable, error) {
	var nf NetworkFile
	var err error
	switch strings.ToLower(format) {
	case "json":
		err = json.Unmarshal(b, &nf)
	case "yaml", "yml":
		err = yaml.Unmarshal(b, &nf)
	default:
		return nil, nil, fmt.Errorf("unsupported network format %q", format)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("decode network: %w", err)
	}

	if err := validate.Struct(nf); err != nil {
		return nil, nil, fmt.Errorf("validate network: %w", err)
	}

	lines := make([]NamedLine, len(nf.Lines))
	for i, lf := range nf.Lines {
		lines[i] = NamedLine{Name: lf.Name, Prefix: lf.Prefix, Line: lf.Stations}
	}

	dir, err := NewDirectory(lines, nf.Interchanges)
	if err != nil {
		return nil, nil, err
	}

	fares := FareTable(nf.Fares)
	if err := validateFareRules(nf.Fares); err != nil {
		log.Printf("error: fare rules rejected, no journeys can be priced: %v", err)
		fares = FareTable{}
	}

	return dir, fares, nil
}

func validateFareRules(rules []FareRule) error {
	for _, r := range rules {
		if err := validate.Struct(r); err != nil {
			return err
		}
	}
	return ValidateFares(rules)
}

// LoadNetwork reads a network file from disk. An empty path loads the
// built-in network.
func LoadNetwork(path string) (*Directory, FareTable, error) {
	if path == "" {
		return DecodeNetwork(defaultNetwork, "yaml")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return DecodeNetwork(b, formatOf(path))
}

// EncodeNetwork is the inverse of DecodeNetwork.
func EncodeNetwork(d *Directory, fares FareTable, format string) ([]byte, error) {
	nf := NetworkFile{
		Interchanges: d.Interchanges(),
		Fares:        []FareRule(fares),
	}
	for _, nl := range d.Lines() {
		nf.Lines = append(nf.Lines, LineFile{Name: nl.Name, Prefix: nl.Prefix, Stations: nl.Line})
	}

	switch strings.ToLower(format) {
	case "json":
		return json.MarshalIndent(nf, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(nf)
	default:
		return nil, fmt.Errorf("unsupported network format %q", format)
	}
}

// SaveNetwork writes the network next to path and renames it into place.
func SaveNetwork(path string, d *Directory, fares FareTable) error {
	b, err := EncodeNetwork(d, fares, formatOf(path))
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}
