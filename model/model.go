package model

import (
	"strings"

	"go.lepak.sg/metro-planner/data"
)

// Position is a route drawn over one line. Index i*2 is the i-th station of
// the line, index i*2+1 is the track between station i and i+1.
type Position []bool

// RouteMap marks the stations of path that lie on line, and the track between
// any two of them that follow each other in path. Stations are matched by
// name, so an interchange visited on one line is drawn on both.
func RouteMap(line data.Line, path []data.Station) Position {
	if len(line) == 0 {
		return Position{}
	}
	pos := make(Position, len(line)*2-1)

	index := make(map[string]int, len(line))
	for i, s := range line {
		index[strings.ToLower(s.Name)] = i
	}

	prev := -1
	for _, s := range path {
		i, ok := index[strings.ToLower(s.Name)]
		if !ok {
			prev = -1
			continue
		}
		pos[i*2] = true

		if prev != -1 {
			switch i - prev {
			case 1:
				pos[i*2-1] = true
			case -1:
				pos[i*2+1] = true
			}
		}
		prev = i
	}
	return pos
}

// RouteMaps draws path over every line in dir, keyed by line tag.
func RouteMaps(dir *data.Directory, path []data.Station) map[string]Position {
	out := make(map[string]Position)
	for _, nl := range dir.Lines() {
		out[nl.Name] = RouteMap(nl.Line, path)
	}
	return out
}

// Stations returns the number of stations marked.
func (p Position) Stations() int {
	n := 0
	for i := 0; i < len(p); i += 2 {
		if p[i] {
			n++
		}
	}
	return n
}

func (p Position) ToString() string {
	s := make([]byte, len(p))

	for i := range p {
		if p[i] {
			s[i] = '*'
		} else {
			s[i] = '_'
		}
	}

	return string(s)
}

func (p Position) Reverse() Position {
	rev := make(Position, len(p))

	for i := range rev {
		rev[i] = p[len(p)-1-i]
	}

	return rev
}
