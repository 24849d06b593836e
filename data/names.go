package data

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	ErrUnknownStation   = errors.New("unknown station")
	ErrDuplicateStation = errors.New("duplicate station")
)

// ValidationError is returned for malformed input supplied by a user or admin.
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

var (
	stationNameRe = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)
	stationNumRe  = regexp.MustCompile(`^\d+$`)
)

// NamedLine is a line together with its tag and station ID prefix.
type NamedLine struct {
	Name   string
	Prefix string
	Line   Line
}

// Directory is an immutable snapshot of the station network. It is safe for
// concurrent use; nothing mutates it after NewDirectory returns.
type Directory struct {
	lines        []NamedLine
	stations     []Station
	interchanges []string
}

// NewDirectory validates the lines and builds a directory from them. Every
// station's Line field is overwritten with the tag of the line it appears on.
func NewDirectory(lines []NamedLine, interchanges []string) (*Directory, error) {
	d := &Directory{
		interchanges: slices.Clone(interchanges),
	}

	seen := make(map[string]string)
	ids := make(map[string]struct{})
	for _, nl := range lines {
		if !IsLine(nl.Name) {
			return nil, ValidationError(fmt.Sprintf("invalid line %q", nl.Name))
		}

		line := make(Line, len(nl.Line))
		for i, s := range nl.Line {
			s.Line = nl.Name
			if err := ValidateStationName(s.Name); err != nil {
				return nil, err
			}
			if err := ValidateStationID(s.ID, nl.Prefix); err != nil {
				return nil, err
			}

			// Interchanges are the only names allowed on more than one line,
			// and at most once per line.
			key := strings.ToLower(s.Name)
			if other, ok := seen[key]; ok && (other == nl.Name || !d.isInterchange(s.Name)) {
				return nil, fmt.Errorf("%w: %q on %s and %s", ErrDuplicateStation, s.Name, other, nl.Name)
			}
			seen[key] = nl.Name

			if _, ok := ids[strings.ToUpper(s.ID)]; ok {
				return nil, fmt.Errorf("%w: id %s", ErrDuplicateStation, s.ID)
			}
			ids[strings.ToUpper(s.ID)] = struct{}{}

			line[i] = s
		}

		d.lines = append(d.lines, NamedLine{Name: nl.Name, Prefix: nl.Prefix, Line: line})
		d.stations = append(d.stations, line...)
	}

	return d, nil
}

func (d *Directory) isInterchange(name string) bool {
	for _, ic := range d.interchanges {
		if strings.EqualFold(ic, name) {
			return true
		}
	}
	return false
}

// IsLine reports whether tag names one of the known lines.
func IsLine(tag string) bool {
	return strings.EqualFold(tag, LineBlue) || strings.EqualFold(tag, LineGreen)
}

func ValidateStationName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError("station name cannot be empty")
	}
	if !stationNameRe.MatchString(name) {
		return ValidationError(fmt.Sprintf("station name %q may only contain letters, numbers and spaces", name))
	}
	return nil
}

func ValidateStationID(id, prefix string) error {
	if id == "" {
		return ValidationError("station id cannot be empty")
	}
	if !strings.HasPrefix(strings.ToUpper(id), strings.ToUpper(prefix)) {
		return ValidationError(fmt.Sprintf("station id %q must start with %q", id, prefix))
	}
	if !stationNumRe.MatchString(id[len(prefix):]) {
		return ValidationError(fmt.Sprintf("station id %q must be %s followed by a number", id, prefix))
	}
	return nil
}

// Stations returns every station, line by line in declared order.
func (d *Directory) Stations() []Station {
	return slices.Clone(d.stations)
}

func (d *Directory) Len() int {
	return len(d.stations)
}

// Interchanges returns the configured interchange station names in priority order.
func (d *Directory) Interchanges() []string {
	return slices.Clone(d.interchanges)
}

func (d *Directory) Lines() []NamedLine {
	out := make([]NamedLine, len(d.lines))
	for i, nl := range d.lines {
		out[i] = NamedLine{Name: nl.Name, Prefix: nl.Prefix, Line: slices.Clone(nl.Line)}
	}
	return out
}

// Line returns the stations of the line tagged tag, or nil.
func (d *Directory) Line(tag string) Line {
	for _, nl := range d.lines {
		if strings.EqualFold(nl.Name, tag) {
			return slices.Clone(nl.Line)
		}
	}
	return nil
}

// Find looks a station up by name, ignoring case.
func (d *Directory) Find(name string) (Station, bool) {
	name = strings.TrimSpace(name)
	for _, s := range d.stations {
		if s.SameName(name) {
			return s, true
		}
	}
	return Station{}, false
}

// findOn looks a station up by name on one line only.
func (d *Directory) findOn(name, line string) (Station, bool) {
	for _, s := range d.stations {
		if strings.EqualFold(s.Line, line) && s.SameName(name) {
			return s, true
		}
	}
	return Station{}, false
}

func (d *Directory) FindByID(id string) (Station, bool) {
	for _, s := range d.stations {
		if strings.EqualFold(s.ID, id) {
			return s, true
		}
	}
	return Station{}, false
}

// Pair resolves user-entered origin and destination names. It rejects empty,
// malformed and identical names, and names that are not in the directory.
// When one end is an interchange, the copy on the other end's line is used,
// so a trip that can stay on one line is never routed through a change.
func (d *Directory) Pair(from, to string) (Station, Station, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	for _, name := range []string{from, to} {
		if err := ValidateStationName(name); err != nil {
			return Station{}, Station{}, err
		}
	}
	if strings.EqualFold(from, to) {
		return Station{}, Station{}, ValidationError("origin and destination cannot be the same")
	}

	start, ok := d.Find(from)
	if !ok {
		return Station{}, Station{}, fmt.Errorf("%w: %s", ErrUnknownStation, from)
	}
	end, ok := d.Find(to)
	if !ok {
		return Station{}, Station{}, fmt.Errorf("%w: %s", ErrUnknownStation, to)
	}

	if !strings.EqualFold(start.Line, end.Line) {
		if s, ok := d.findOn(end.Name, start.Line); ok {
			end = s
		} else if s, ok := d.findOn(start.Name, end.Line); ok {
			start = s
		}
	}
	return start, end, nil
}
