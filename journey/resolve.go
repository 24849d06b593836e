// Package journey plans trips across the metro network: the ordered path
// between two stations, the number of stops, and the fare and travel time
// derived from them.
//
// The network is two linear lines joined at named interchanges, so a trip is
// either a slice of one line, or a slice of the origin's line up to an
// interchange followed by a slice of the destination's line from it.
package journey

import (
	"strings"

	"go.lepak.sg/metro-planner/data"
)

// Result is a resolved trip. An empty Path means no route exists.
type Result struct {
	// Origin to destination, both inclusive
	Path  []data.Station
	Stops int
	// Name of the station where the rider changes lines, empty if none
	Interchange string
}

func (r Result) Reachable() bool {
	return len(r.Path) > 0
}

func (r Result) HasInterchange() bool {
	return r.Interchange != ""
}

// Resolve finds the path from start to end. interchanges lists the stations
// where lines meet, in tie-break order. start and end must be distinct
// members of stations; looking them up is the caller's job.
//
// Resolve never fails loudly. When the lines differ and no interchange
// connects them, it returns a Result with an empty path.
func Resolve(stations []data.Station, interchanges []string, start, end data.Station) Result {
	if strings.EqualFold(start.Line, end.Line) {
		return newResult(segment(lineOf(stations, start.Line), start, end), "")
	}

	startLine := lineOf(stations, start.Line)
	endLine := lineOf(stations, end.Line)

	ic, ok := nearestInterchange(startLine, start, interchanges)
	if !ok {
		return Result{}
	}

	icStart := startLine.Index(ic)
	icEnd := endLine.Index(ic)
	if icStart == -1 || icEnd == -1 {
		return Result{}
	}

	path := segment(startLine, start, startLine[icStart])
	rest := segment(endLine, endLine[icEnd], end)
	if len(rest) > 0 {
		// the interchange already ends the first half
		rest = rest[1:]
	}
	path = append(path, rest...)

	return newResult(path, ic)
}

func newResult(path data.Line, interchange string) Result {
	stops := len(path) - 1
	if stops < 0 {
		stops = 0
	}
	return Result{Path: path, Stops: stops, Interchange: interchange}
}

// lineOf filters stations down to those on the line tagged tag, keeping order.
func lineOf(stations []data.Station, tag string) data.Line {
	var line data.Line
	for _, s := range stations {
		if strings.EqualFold(s.Line, tag) {
			line = append(line, s)
		}
	}
	return line
}

// nearestInterchange picks the interchange closest to start along line,
// counted in stations. Ties go to the one listed first.
func nearestInterchange(line data.Line, start data.Station, interchanges []string) (string, bool) {
	from := line.Index(start.Name)
	if from == -1 {
		return "", false
	}

	best, bestDist := "", -1
	for _, ic := range interchanges {
		i := line.Index(ic)
		if i == -1 {
			continue
		}
		dist := i - from
		if dist < 0 {
			dist = -dist
		}
		if bestDist == -1 || dist < bestDist {
			best, bestDist = ic, dist
		}
	}

	return best, bestDist != -1
}

// segment returns the stations between start and end on line, inclusive, in
// travel order. It is empty if either station is not on the line.
func segment(line data.Line, start, end data.Station) data.Line {
	i, j := line.Index(start.Name), line.Index(end.Name)
	if i == -1 || j == -1 {
		return data.Line{}
	}

	if i <= j {
		out := make(data.Line, j-i+1)
		copy(out, line[i:j+1])
		return out
	}

	out := make(data.Line, 0, i-j+1)
	for k := i; k >= j; k-- {
		out = append(out, line[k])
	}
	return out
}
